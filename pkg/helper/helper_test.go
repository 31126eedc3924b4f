package helper

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/matst80/slask-refine/pkg/facet"
	"github.com/matst80/slask-refine/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBackend struct {
	mu    sync.Mutex
	calls []*state.SearchParameters
	block chan struct{}
	err   error
}

func (b *recordingBackend) Search(ctx context.Context, params *state.SearchParameters) (*facet.Results, error) {
	b.mu.Lock()
	b.calls = append(b.calls, params)
	block := b.block
	b.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if b.err != nil {
		return nil, b.err
	}
	return facet.NewResults(params), nil
}

func baseState() *state.SearchParameters {
	return state.New().Apply(&state.Fragment{DisjunctiveFacets: []string{"brand"}})
}

func TestToggleRefinementAndSearch(t *testing.T) {
	b := &recordingBackend{}
	h := New(b, baseState())

	var got []*state.SearchParameters
	h.OnResult(func(res *facet.Results, params *state.SearchParameters) error {
		got = append(got, params)
		return nil
	})

	h.ToggleRefinement("brand", "Sony").Search().Wait()

	require.Len(t, b.calls, 1)
	assert.True(t, b.calls[0].IsRefined("brand", "Sony"))
	require.Len(t, got, 1)
	assert.Same(t, b.calls[0], got[0])
	assert.NotNil(t, h.LastResults())
	assert.True(t, h.State().IsRefined("brand", "Sony"))
}

func TestNewerSearchWins(t *testing.T) {
	b := &recordingBackend{block: make(chan struct{})}
	h := New(b, baseState())

	var mu sync.Mutex
	delivered := 0
	h.OnResult(func(res *facet.Results, params *state.SearchParameters) error {
		mu.Lock()
		defer mu.Unlock()
		delivered++
		assert.True(t, params.IsRefined("brand", "LG"))
		return nil
	})

	h.ToggleRefinement("brand", "Sony").Search()
	h.ToggleRefinement("brand", "LG").Search()
	close(b.block)
	h.Wait()

	assert.Equal(t, 1, delivered)
	assert.Len(t, b.calls, 2)
}

func TestSearchContextReturnsHandlerErrors(t *testing.T) {
	h := New(&recordingBackend{}, baseState())
	renderErr := errors.New("template failed")
	h.OnResult(func(res *facet.Results, params *state.SearchParameters) error {
		return renderErr
	})
	res, err := h.SearchContext(context.Background())
	assert.NotNil(t, res)
	assert.ErrorIs(t, err, renderErr)
}

func TestBackendErrorGoesToErrorHandlers(t *testing.T) {
	backendErr := errors.New("backend down")
	h := New(&recordingBackend{err: backendErr}, baseState())
	var got error
	h.OnError(func(err error) { got = err })
	h.OnResult(func(res *facet.Results, params *state.SearchParameters) error {
		t.Error("result handler should not be called")
		return nil
	})
	_, err := h.SearchContext(context.Background())
	assert.ErrorIs(t, err, backendErr)
	assert.ErrorIs(t, got, backendErr)
	assert.Nil(t, h.LastResults())
}
