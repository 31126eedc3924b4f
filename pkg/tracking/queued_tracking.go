package tracking

import (
	"log"
	"net/http"
	"time"

	"github.com/matst80/slask-refine/pkg/common"
	"github.com/matst80/slask-refine/pkg/state"
)

type trackCall func(Tracking) error

// QueuedTracking moves tracking off the request path. Events are sent in
// batches from a background queue.
type QueuedTracking struct {
	inner Tracking
	queue *common.QueueHandler[trackCall]
}

func NewQueuedTracking(inner Tracking, chunkSize int, interval time.Duration) *QueuedTracking {
	t := &QueuedTracking{inner: inner}
	t.queue = common.NewQueueHandler(func(calls []trackCall) {
		for _, call := range calls {
			if err := call(t.inner); err != nil {
				log.Printf("tracking failed: %v", err)
			}
		}
	}, chunkSize, interval)
	return t
}

func (t *QueuedTracking) TrackSession(sessionId string, r *http.Request) error {
	// the request is not valid after the handler returns
	ev := r.Clone(r.Context())
	t.queue.Add(func(inner Tracking) error {
		return inner.TrackSession(sessionId, ev)
	})
	return nil
}

func (t *QueuedTracking) TrackRefinement(sessionId string, event RefinementEvent) error {
	t.queue.Add(func(inner Tracking) error {
		return inner.TrackRefinement(sessionId, event)
	})
	return nil
}

func (t *QueuedTracking) TrackSearch(sessionId string, params *state.SearchParameters, nbHits int) error {
	t.queue.Add(func(inner Tracking) error {
		return inner.TrackSearch(sessionId, params, nbHits)
	})
	return nil
}

// Close sends the queued events and closes the wrapped tracking.
func (t *QueuedTracking) Close() error {
	t.queue.Close()
	return t.inner.Close()
}
