package server

import (
	"bytes"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/matst80/slask-refine/pkg/common"
	"github.com/matst80/slask-refine/pkg/helper"
	"github.com/matst80/slask-refine/pkg/instantsearch"
	"github.com/matst80/slask-refine/pkg/tracking"
	"github.com/matst80/slask-refine/pkg/view"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	noPageViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskrefine_page_views_total",
		Help: "The total number of rendered pages",
	})
	noWidgetActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slaskrefine_widget_requests_total",
		Help: "The total number of widget action requests",
	}, []string{"action", "status"})
)

const htmxScript = "https://unpkg.com/htmx.org@2.0.4"

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.Script}}"></script>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// Suggester completes a search word from its prefix.
type Suggester interface {
	Suggest(prefix string, limit int) []string
}

type Options struct {
	Title           string
	SessionTTL      time.Duration
	TemplatesConfig *view.TemplatesConfig
	Suggester       Suggester
}

type WebServer struct {
	Sessions  *SessionStore
	Tracking  tracking.Tracking
	Title     string
	Suggester Suggester
}

func NewWebServer(backend helper.Backend, pages PageFactory, trk tracking.Tracking, opts Options) *WebServer {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}
	if opts.Title == "" {
		opts.Title = "Search"
	}
	if trk == nil {
		trk = tracking.NoTracking{}
	}
	return &WebServer{
		Sessions: NewSessionStore(backend, pages, instantsearch.Options{
			TemplatesConfig: opts.TemplatesConfig,
			BaseURL:         "/",
		}, opts.SessionTTL),
		Tracking:  trk,
		Title:     opts.Title,
		Suggester: opts.Suggester,
	}
}

func isHtmx(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func (ws *WebServer) session(w http.ResponseWriter, r *http.Request) (string, *Session) {
	sessionId, isNew := common.HandleSessionCookie(w, r)
	if isNew {
		if err := ws.Tracking.TrackSession(sessionId, r); err != nil {
			log.Printf("failed to track session: %v", err)
		}
		return sessionId, nil
	}
	session, _ := ws.Sessions.Get(sessionId)
	return sessionId, session
}

func (ws *WebServer) trackSearch(session *Session) {
	res := session.Search.Helper().LastResults()
	if res == nil {
		return
	}
	if err := ws.Tracking.TrackSearch(session.Id, res.State, res.NbHits); err != nil {
		log.Printf("failed to track search: %v", err)
	}
}

// Page renders every widget container of the session for the url state.
func (ws *WebServer) Page(w http.ResponseWriter, r *http.Request) {
	sessionId, session := ws.session(w, r)
	values := r.URL.Query()

	if session == nil {
		var err error
		session, err = ws.Sessions.Create(r.Context(), sessionId, values)
		if err != nil {
			log.Printf("failed to create page: %v", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		session.Lock()
		defer session.Unlock()
	} else {
		session.Lock()
		defer session.Unlock()
		session.Search.SetURLState(values)
		if err := session.Search.Refresh(r.Context()); err != nil {
			log.Printf("refresh failed: %v", err)
		}
	}
	go noPageViews.Inc()
	ws.trackSearch(session)

	var buf bytes.Buffer
	err := pageTmpl.Execute(&buf, struct {
		Title  string
		Script string
		Body   template.HTML
	}{ws.Title, htmxScript, session.Document.HTML(false)})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func redirect(w http.ResponseWriter, r *http.Request, location string) {
	if isHtmx(r) {
		w.Header().Set("HX-Redirect", location)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// Action dispatches a widget interaction and answers with every container
// for out of band swapping.
func (ws *WebServer) Action(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	action := r.PathValue("action")
	status := func(s string) {
		go noWidgetActions.WithLabelValues(action, s).Inc()
	}

	_, session := ws.session(w, r)
	if session == nil {
		status("expired")
		redirect(w, r, "/")
		return
	}
	if err := r.ParseForm(); err != nil {
		status("bad_request")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	value := r.PostForm.Get("value")

	session.Lock()
	defer session.Unlock()

	container, err := session.Document.Query(id)
	if err != nil {
		status("not_found")
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err = container.Dispatch(action, value); err != nil {
		status("bad_request")
		code := http.StatusInternalServerError
		if errors.Is(err, view.ErrUnknownAction) {
			code = http.StatusBadRequest
		}
		http.Error(w, err.Error(), code)
		return
	}
	session.Search.Wait()
	status("ok")

	if err = ws.Tracking.TrackRefinement(session.Id, tracking.RefinementEvent{Widget: id, Action: action, Value: value}); err != nil {
		log.Printf("failed to track refinement: %v", err)
	}
	ws.trackSearch(session)

	location := session.Search.URL()
	if !isHtmx(r) {
		http.Redirect(w, r, location, http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("HX-Push-Url", location)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(session.Document.HTML(true)))
}

// Results returns the last results of the session as json.
func (ws *WebServer) Results(w http.ResponseWriter, r *http.Request) {
	_, session := ws.session(w, r)
	if session == nil {
		http.Error(w, "no session", http.StatusNotFound)
		return
	}
	session.Lock()
	res := session.Search.Helper().LastResults()
	session.Unlock()
	if res == nil {
		http.Error(w, "no results", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(http.StatusOK)
	if err := sonic.ConfigDefault.NewEncoder(w).Encode(res); err != nil {
		log.Printf("failed to encode results: %v", err)
	}
}

// Suggest lists completions for the q parameter.
func (ws *WebServer) Suggest(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	words := ws.Suggester.Suggest(r.URL.Query().Get("q"), limit)
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.Header().Set("Cache-Control", "public, max-age=60")
	w.WriteHeader(http.StatusOK)
	if err := sonic.ConfigDefault.NewEncoder(w).Encode(words); err != nil {
		log.Printf("failed to encode suggestions: %v", err)
	}
}

func (ws *WebServer) Handler() *http.ServeMux {
	srv := http.NewServeMux()
	srv.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	srv.HandleFunc("GET /{$}", ws.Page)
	srv.HandleFunc("GET /results", ws.Results)
	if ws.Suggester != nil {
		srv.HandleFunc("GET /suggest", ws.Suggest)
	}
	srv.HandleFunc("POST "+view.DefaultActionPath+"/{id}/{action}", ws.Action)
	return srv
}
