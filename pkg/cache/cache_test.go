package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matst80/slask-refine/pkg/facet"
	"github.com/matst80/slask-refine/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localCache() *Cache {
	return &Cache{memCache: make(map[string]localEntry)}
}

type countingBackend struct {
	calls int
}

func (b *countingBackend) Search(_ context.Context, p *state.SearchParameters) (*facet.Results, error) {
	b.calls++
	r := facet.NewResults(p)
	r.NbHits = 3
	r.DisjunctiveFacets["brand"] = map[string]int{"Apple": 2, "Sony": 1}
	return r, nil
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string, any) error {
	return errors.New("connection refused")
}

func (brokenStore) Set(context.Context, string, any, time.Duration) error {
	return errors.New("connection refused")
}

func brandState() *state.SearchParameters {
	return state.New().Apply(&state.Fragment{DisjunctiveFacets: []string{"brand"}})
}

func TestLocalLayer(t *testing.T) {
	c := localCache()
	ctx := context.Background()

	var out map[string]int
	assert.ErrorIs(t, c.Get(ctx, "k", &out), ErrMiss)

	require.NoError(t, c.Set(ctx, "k", map[string]int{"a": 1}, time.Hour))
	require.NoError(t, c.Get(ctx, "k", &out))
	assert.Equal(t, map[string]int{"a": 1}, out)

	c.setLocal("old", []byte(`1`), -time.Second)
	var n int
	assert.ErrorIs(t, c.Get(ctx, "old", &n), ErrMiss)
	assert.NotContains(t, c.memCache, "old")
	assert.NoError(t, c.Close())
}

func TestBackendCachesByState(t *testing.T) {
	next := &countingBackend{}
	b := Backend(next, localCache(), time.Minute)
	ctx := context.Background()

	p := brandState().ToggleRefinement("brand", "Sony")
	first, err := b.Search(ctx, p)
	require.NoError(t, err)
	second, err := b.Search(ctx, p.Clone())
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, first.NbHits, second.NbHits)
	assert.Equal(t, first.DisjunctiveFacets, second.DisjunctiveFacets)
	assert.True(t, second.State.IsRefined("brand", "Sony"))

	_, err = b.Search(ctx, brandState())
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestBackendFallsThroughOnCacheErrors(t *testing.T) {
	next := &countingBackend{}
	b := Backend(next, brokenStore{}, time.Minute)

	res, err := b.Search(context.Background(), brandState())
	require.NoError(t, err)
	assert.Equal(t, 3, res.NbHits)
	_, err = b.Search(context.Background(), brandState())
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}
