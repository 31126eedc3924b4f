package cache

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/matst80/slask-refine/pkg/facet"
	"github.com/matst80/slask-refine/pkg/helper"
	"github.com/matst80/slask-refine/pkg/state"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	noHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskrefine_cache_hits_total",
		Help: "The total number of searches answered from the cache",
	})
	noMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskrefine_cache_misses_total",
		Help: "The total number of searches passed to the index",
	})
)

type cachedBackend struct {
	next  helper.Backend
	store Store
	ttl   time.Duration
}

// Backend caches the results of next keyed by the search parameters.
// Cache failures are logged and the search falls through to next.
func Backend(next helper.Backend, store Store, ttl time.Duration) helper.Backend {
	return &cachedBackend{next: next, store: store, ttl: ttl}
}

func (b *cachedBackend) Search(ctx context.Context, params *state.SearchParameters) (*facet.Results, error) {
	key, err := params.Key()
	if err != nil {
		log.Printf("unable to create cache key: %v", err)
		return b.next.Search(ctx, params)
	}

	var cached facet.Results
	err = b.store.Get(ctx, key, &cached)
	if err == nil {
		go noHits.Inc()
		cached.State = params
		return &cached, nil
	}
	if !errors.Is(err, ErrMiss) {
		log.Printf("cache get %s: %v", key, err)
	}
	go noMisses.Inc()

	res, err := b.next.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	if err := b.store.Set(ctx, key, res, b.ttl); err != nil {
		log.Printf("cache set %s: %v", key, err)
	}
	return res, nil
}
