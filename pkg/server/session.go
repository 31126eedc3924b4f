package server

import (
	"context"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/matst80/slask-refine/pkg/helper"
	"github.com/matst80/slask-refine/pkg/instantsearch"
	"github.com/matst80/slask-refine/pkg/view"
	"github.com/matst80/slask-refine/pkg/widget"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slaskrefine_sessions_active",
		Help: "The number of live widget sessions",
	})
	noEvictedSessions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskrefine_sessions_evicted_total",
		Help: "The total number of idle sessions evicted",
	})
)

// PageFactory creates the widgets of one page, mounted in doc.
type PageFactory func(doc *view.Document) ([]widget.Widget, error)

// Session is the page state of one visitor. Requests on a session are
// serialized through Lock.
type Session struct {
	sync.Mutex
	Id       string
	Document *view.Document
	Search   *instantsearch.InstantSearch
	lastSeen time.Time
}

type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	backend  helper.Backend
	pages    PageFactory
	options  instantsearch.Options
	now      func() time.Time
}

func NewSessionStore(backend helper.Backend, pages PageFactory, options instantsearch.Options, ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		backend:  backend,
		pages:    pages,
		options:  options,
		now:      time.Now,
	}
}

// Get returns the live session with id, touching it.
func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if ok {
		session.lastSeen = s.now()
	}
	return session, ok
}

// Create builds the page for a new session and runs its first search with
// the url state in values. A failing first search still yields a session.
func (s *SessionStore) Create(ctx context.Context, id string, values url.Values) (*Session, error) {
	doc := view.NewDocument()
	widgets, err := s.pages(doc)
	if err != nil {
		return nil, err
	}
	is := instantsearch.New(s.backend, s.options)
	for _, w := range widgets {
		if err := is.AddWidget(w); err != nil {
			return nil, err
		}
	}
	if err := is.Start(ctx, values); err != nil {
		log.Printf("first search for session %s failed: %v", id, err)
	}

	session := &Session{Id: id, Document: doc, Search: is}
	s.mu.Lock()
	defer s.mu.Unlock()
	session.lastSeen = s.now()
	s.sessions[id] = session
	activeSessions.Set(float64(len(s.sessions)))
	return session, nil
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Evict drops sessions idle for longer than the ttl.
func (s *SessionStore) Evict() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	deadline := s.now().Add(-s.ttl)
	evicted := 0
	for id, session := range s.sessions {
		if session.lastSeen.Before(deadline) {
			delete(s.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		noEvictedSessions.Add(float64(evicted))
		activeSessions.Set(float64(len(s.sessions)))
	}
	return evicted
}

// RunEviction evicts idle sessions every interval until ctx is done.
func (s *SessionStore) RunEviction(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Evict(); n > 0 {
				log.Printf("evicted %d idle sessions", n)
			}
		}
	}
}
