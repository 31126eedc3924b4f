package instantsearch

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/matst80/slask-refine/pkg/facet"
	"github.com/matst80/slask-refine/pkg/state"
	"github.com/matst80/slask-refine/pkg/view"
	"github.com/matst80/slask-refine/pkg/widget"
	"github.com/matst80/slask-refine/pkg/widget/refinementlist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIndex() *facet.Index {
	idx := facet.NewIndex()
	idx.UpsertItem(&facet.Item{Id: 1, Title: "Sony Bravia", Fields: map[string][]string{"brand": {"Sony"}, "type": {"tv"}}})
	idx.UpsertItem(&facet.Item{Id: 2, Title: "Sony Walkman", Fields: map[string][]string{"brand": {"Sony"}, "type": {"audio"}}})
	idx.UpsertItem(&facet.Item{Id: 3, Title: "Apple TV", Fields: map[string][]string{"brand": {"Apple"}, "type": {"tv"}}})
	idx.UpsertItem(&facet.Item{Id: 4, Title: "Apple iPod", Fields: map[string][]string{"brand": {"Apple"}, "type": {"audio"}}})
	idx.UpsertItem(&facet.Item{Id: 5, Title: "Apple HomePod", Fields: map[string][]string{"brand": {"Apple"}, "type": {"audio"}}})
	return idx
}

type page struct {
	is    *InstantSearch
	brand *view.Container
	kind  *view.Container
}

func newPage(t *testing.T) *page {
	doc := view.NewDocument()
	p := &page{
		is:    New(testIndex(), Options{}),
		brand: doc.Container("#brand"),
		kind:  doc.Container("#type"),
	}
	brand, err := refinementlist.New(refinementlist.Options{Container: p.brand, FacetName: "brand", Limit: 10})
	require.NoError(t, err)
	kind, err := refinementlist.New(refinementlist.Options{Container: p.kind, FacetName: "type", Operator: "and", Limit: 5})
	require.NoError(t, err)
	require.NoError(t, p.is.AddWidget(brand))
	require.NoError(t, p.is.AddWidget(kind))
	return p
}

func TestStartRendersAllWidgets(t *testing.T) {
	p := newPage(t)
	require.NoError(t, p.is.Start(context.Background(), nil))

	params := p.is.Helper().State()
	assert.Equal(t, []string{"brand"}, params.DisjunctiveFacets)
	assert.Equal(t, []string{"type"}, params.Facets)
	assert.Equal(t, 10, params.MaxValuesPerFacet)

	brand := string(p.brand.HTML())
	assert.Less(t, strings.Index(brand, "Apple"), strings.Index(brand, "Sony"))
	assert.Contains(t, brand, `<span class="ais-refinement-list--count">3</span>`)
	assert.Contains(t, string(p.kind.HTML()), "audio")
	assert.Equal(t, 1, p.brand.Renders())
	assert.Equal(t, 1, p.kind.Renders())
}

func TestStartAppliesURLState(t *testing.T) {
	p := newPage(t)
	values := url.Values{"r": {"brand:Sony"}}
	require.NoError(t, p.is.Start(context.Background(), values))

	assert.True(t, p.is.Helper().State().IsRefined("brand", "Sony"))
	assert.Equal(t, "/?r=brand%3ASony", p.is.URL())
	assert.Equal(t, 2, p.is.Helper().LastResults().NbHits)
	assert.Contains(t, string(p.brand.HTML()), "ais-refinement-list--item__active")
}

func TestStartTwiceAndLateWidget(t *testing.T) {
	p := newPage(t)
	require.NoError(t, p.is.Start(context.Background(), nil))
	assert.ErrorIs(t, p.is.Start(context.Background(), nil), ErrStarted)

	w, err := refinementlist.New(refinementlist.Options{Container: view.NewDocument().Container("#x"), FacetName: "brand"})
	require.NoError(t, err)
	assert.ErrorIs(t, p.is.AddWidget(w), ErrStarted)
}

func TestRefreshBeforeStart(t *testing.T) {
	assert.ErrorIs(t, New(testIndex(), Options{}).Refresh(context.Background()), ErrNotStarted)
}

func TestToggleRerendersEveryWidget(t *testing.T) {
	p := newPage(t)
	require.NoError(t, p.is.Start(context.Background(), nil))

	require.NoError(t, p.brand.Dispatch(view.ToggleAction, "Sony"))
	p.is.Wait()

	assert.Equal(t, 2, p.brand.Renders())
	assert.Equal(t, 2, p.kind.Renders())
	assert.Equal(t, "/?r=brand%3ASony", p.is.URL())
	// type counts follow the brand refinement
	assert.Contains(t, string(p.kind.HTML()), `<span class="ais-refinement-list--count">1</span>`)
	assert.NotContains(t, string(p.kind.HTML()), `<span class="ais-refinement-list--count">3</span>`)
}

func TestSetURLState(t *testing.T) {
	p := newPage(t)
	require.NoError(t, p.is.Start(context.Background(), url.Values{"r": {"brand:Sony"}, "q": {"tv"}}))

	p.is.SetURLState(url.Values{"r": {"type:audio"}})
	params := p.is.Helper().State()
	assert.False(t, params.IsRefined("brand", "Sony"))
	assert.True(t, params.IsRefined("type", "audio"))
	assert.Empty(t, params.Query)
	assert.Equal(t, []string{"brand"}, params.DisjunctiveFacets)

	require.NoError(t, p.is.Refresh(context.Background()))
	assert.Equal(t, 2, p.brand.Renders())
}

func TestCreateURL(t *testing.T) {
	is := New(testIndex(), Options{BaseURL: "/search"})
	assert.Equal(t, "/search", is.CreateURL(state.New()))
	assert.Equal(t, "/search?q=tv", is.CreateURL(state.New().SetQuery("tv")))
}

type failingWidget struct{}

func (failingWidget) GetConfiguration(*state.SearchParameters) *state.Fragment {
	return &state.Fragment{}
}

func (failingWidget) Render(*widget.RenderOptions) error {
	return errors.New("broken widget")
}

func TestRenderErrorsAreJoined(t *testing.T) {
	p := newPage(t)
	require.NoError(t, p.is.AddWidget(failingWidget{}))
	err := p.is.Start(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken widget")
	assert.Equal(t, 1, p.brand.Renders())
	assert.Equal(t, 1, p.kind.Renders())
}

func TestSearchesShareDefaultTemplatesConfig(t *testing.T) {
	a := New(testIndex(), Options{})
	b := New(testIndex(), Options{})
	assert.Same(t, a.templatesConfig, b.templatesConfig)

	custom := &view.TemplatesConfig{}
	assert.Same(t, custom, New(testIndex(), Options{TemplatesConfig: custom}).templatesConfig)
}
