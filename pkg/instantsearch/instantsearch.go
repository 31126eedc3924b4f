// Package instantsearch ties widgets to a search helper: it builds the
// initial query from the widgets and renders all of them on every result.
package instantsearch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync"

	"github.com/matst80/slask-refine/pkg/facet"
	"github.com/matst80/slask-refine/pkg/helper"
	"github.com/matst80/slask-refine/pkg/state"
	"github.com/matst80/slask-refine/pkg/view"
	"github.com/matst80/slask-refine/pkg/widget"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	noRenderCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskrefine_render_cycles_total",
		Help: "The total number of result sets rendered to all widgets",
	})
	noWidgetErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskrefine_widget_errors_total",
		Help: "The total number of widget render failures",
	})
)

var (
	ErrStarted    = errors.New("instantsearch already started")
	ErrNotStarted = errors.New("instantsearch not started")
)

// defaultTemplatesConfig is shared by every search created without one,
// compiled templates are cached per config.
var defaultTemplatesConfig = &view.TemplatesConfig{}

type Options struct {
	TemplatesConfig *view.TemplatesConfig
	// BaseURL prefixes every generated url, "/" when empty.
	BaseURL string
}

type InstantSearch struct {
	mu              sync.Mutex
	helper          *helper.Helper
	widgets         []widget.Widget
	templatesConfig *view.TemplatesConfig
	baseURL         string
	started         bool
}

func New(backend helper.Backend, opts Options) *InstantSearch {
	is := &InstantSearch{
		helper:          helper.New(backend, state.New()),
		templatesConfig: opts.TemplatesConfig,
		baseURL:         opts.BaseURL,
	}
	if is.baseURL == "" {
		is.baseURL = "/"
	}
	if is.templatesConfig == nil {
		is.templatesConfig = defaultTemplatesConfig
	}
	is.helper.OnResult(is.render)
	is.helper.OnError(func(err error) {
		log.Printf("search error: %v", err)
	})
	return is
}

// AddWidget registers a widget. Widgets can only be added before Start.
func (is *InstantSearch) AddWidget(w widget.Widget) error {
	is.mu.Lock()
	defer is.mu.Unlock()
	if is.started {
		return ErrStarted
	}
	is.widgets = append(is.widgets, w)
	return nil
}

func (is *InstantSearch) Helper() *helper.Helper {
	return is.helper
}

// Start folds the widget configurations into the initial state, applies the
// refinements found in values and runs the first search.
func (is *InstantSearch) Start(ctx context.Context, values url.Values) error {
	is.mu.Lock()
	if is.started {
		is.mu.Unlock()
		return ErrStarted
	}
	is.started = true
	widgets := append([]widget.Widget(nil), is.widgets...)
	is.mu.Unlock()

	params := state.New()
	for _, w := range widgets {
		params = params.Apply(w.GetConfiguration(params))
	}
	is.helper.SetState(is.decode(params, values))
	_, err := is.helper.SearchContext(ctx)
	return err
}

func (is *InstantSearch) decode(base *state.SearchParameters, values url.Values) *state.SearchParameters {
	if len(values) == 0 {
		return base
	}
	params, err := state.Decode(base, values)
	if err != nil {
		log.Printf("ignoring url state: %v", err)
		return base
	}
	return params
}

// SetURLState replaces query, page and refinements with the ones in values.
// It does not search.
func (is *InstantSearch) SetURLState(values url.Values) {
	is.helper.SetState(is.decode(is.helper.State().ClearRefinements().SetQuery("").SetPage(0), values))
}

// Refresh searches with the current state and renders the widgets.
func (is *InstantSearch) Refresh(ctx context.Context) error {
	is.mu.Lock()
	started := is.started
	is.mu.Unlock()
	if !started {
		return ErrNotStarted
	}
	_, err := is.helper.SearchContext(ctx)
	return err
}

// Wait blocks until searches started by widget actions are rendered.
func (is *InstantSearch) Wait() {
	is.helper.Wait()
}

// CreateURL returns the shareable url of a state.
func (is *InstantSearch) CreateURL(params *state.SearchParameters) string {
	query := params.Encode().Encode()
	if query == "" {
		return is.baseURL
	}
	return is.baseURL + "?" + query
}

// URL is the shareable url of the current state.
func (is *InstantSearch) URL() string {
	return is.CreateURL(is.helper.State())
}

func (is *InstantSearch) render(results *facet.Results, params *state.SearchParameters) error {
	is.mu.Lock()
	widgets := append([]widget.Widget(nil), is.widgets...)
	is.mu.Unlock()

	go noRenderCycles.Inc()
	opts := &widget.RenderOptions{
		Results:         results,
		Helper:          is.helper,
		TemplatesConfig: is.templatesConfig,
		State:           params,
		CreateURL:       is.CreateURL,
	}
	var errs []error
	for i, w := range widgets {
		if err := w.Render(opts); err != nil {
			go noWidgetErrors.Inc()
			errs = append(errs, fmt.Errorf("widget %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
