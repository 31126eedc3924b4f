package helper

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/matst80/slask-refine/pkg/facet"
	"github.com/matst80/slask-refine/pkg/state"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	noSearches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskrefine_searches_total",
		Help: "The total number of searches sent to the backend",
	})
	noStaleResults = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskrefine_stale_results_total",
		Help: "The total number of search responses dropped because a newer search was started",
	})
	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "slaskrefine_search_duration_seconds",
		Help:    "Backend search duration",
		Buckets: prometheus.DefBuckets,
	})
)

// ErrStale is returned by SearchContext when a newer search replaced it.
var ErrStale = errors.New("search superseded by a newer one")

type Backend interface {
	Search(ctx context.Context, params *state.SearchParameters) (*facet.Results, error)
}

// ResultHandler receives every result set in the order searches were started.
type ResultHandler func(results *facet.Results, params *state.SearchParameters) error

type ErrorHandler func(err error)

// Helper owns the query state of one search session and runs searches
// against the backend.
type Helper struct {
	mu            sync.Mutex
	dispatchMu    sync.Mutex
	inFlight      sync.WaitGroup
	backend       Backend
	state         *state.SearchParameters
	lastResults   *facet.Results
	seq           uint64
	cancel        context.CancelFunc
	resultHandler []ResultHandler
	errorHandler  []ErrorHandler
}

func New(backend Backend, params *state.SearchParameters) *Helper {
	if params == nil {
		params = state.New()
	}
	return &Helper{
		backend: backend,
		state:   params,
	}
}

func (h *Helper) OnResult(fn ResultHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resultHandler = append(h.resultHandler, fn)
}

func (h *Helper) OnError(fn ErrorHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errorHandler = append(h.errorHandler, fn)
}

func (h *Helper) State() *state.SearchParameters {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *Helper) LastResults() *facet.Results {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastResults
}

func (h *Helper) SetState(params *state.SearchParameters) *Helper {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = params
	return h
}

func (h *Helper) ToggleRefinement(facetName, value string) *Helper {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = h.state.ToggleRefinement(facetName, value)
	return h
}

func (h *Helper) SetQuery(query string) *Helper {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = h.state.SetQuery(query)
	return h
}

// begin cancels the running search and registers a new one.
func (h *Helper) begin(parent context.Context) (context.Context, uint64, *state.SearchParameters) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	h.cancel = cancel
	h.seq++
	return ctx, h.seq, h.state
}

func (h *Helper) run(ctx context.Context, seq uint64, params *state.SearchParameters) (*facet.Results, error) {
	go noSearches.Inc()
	start := time.Now()
	res, err := h.backend.Search(ctx, params)
	searchDuration.Observe(time.Since(start).Seconds())

	h.dispatchMu.Lock()
	defer h.dispatchMu.Unlock()

	h.mu.Lock()
	if seq != h.seq {
		h.mu.Unlock()
		noStaleResults.Inc()
		return nil, ErrStale
	}
	if err == nil {
		if res.State == nil {
			res.State = params
		}
		h.lastResults = res
	}
	resultHandlers := append([]ResultHandler(nil), h.resultHandler...)
	errorHandlers := append([]ErrorHandler(nil), h.errorHandler...)
	h.mu.Unlock()

	if err != nil {
		for _, fn := range errorHandlers {
			fn(err)
		}
		return nil, err
	}
	var errs []error
	for _, fn := range resultHandlers {
		if herr := fn(res, params); herr != nil {
			errs = append(errs, herr)
		}
	}
	return res, errors.Join(errs...)
}

// Search starts a search with the current state and returns immediately.
// Results reach the result handlers, a search started later wins over this one.
func (h *Helper) Search() *Helper {
	ctx, seq, params := h.begin(context.Background())
	h.inFlight.Add(1)
	go func() {
		defer h.inFlight.Done()
		_, err := h.run(ctx, seq, params)
		if err != nil && !errors.Is(err, ErrStale) && !errors.Is(err, context.Canceled) {
			log.Printf("search failed: %v", err)
		}
	}()
	return h
}

// SearchContext runs a search with the current state and waits for it and
// its result handlers to finish.
func (h *Helper) SearchContext(ctx context.Context) (*facet.Results, error) {
	sctx, seq, params := h.begin(ctx)
	h.inFlight.Add(1)
	defer h.inFlight.Done()
	return h.run(sctx, seq, params)
}

// Wait blocks until no search is running.
func (h *Helper) Wait() {
	h.inFlight.Wait()
}
