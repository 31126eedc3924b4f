package tracking

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/matst80/slask-refine/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionEventPrefersRealIp(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Forwarded-For", "10.0.0.2")
	r.Header.Set("Accept-Language", "sv")
	assert.Equal(t, "10.0.0.2", newSessionEvent(&BaseEvent{}, r).Ip)

	r.Header.Set("X-Real-Ip", "10.0.0.1")
	ev := newSessionEvent(&BaseEvent{}, r)
	assert.Equal(t, "10.0.0.1", ev.Ip)
	assert.Equal(t, "sv", ev.Language)
}

func TestSearchEventEncoding(t *testing.T) {
	rt := &RabbitTracking{country: "se"}
	params := state.New().Apply(&state.Fragment{DisjunctiveFacets: []string{"brand"}}).
		ToggleRefinement("brand", "Sony").
		SetQuery("tv")

	data, err := sonic.Marshal(newSearchEvent(rt.base("abc", eventSearch), params, 4))
	require.NoError(t, err)
	assert.JSONEq(t, `{"session_id":"abc","country":"se","context":"b2c","event":1,"noi":4,"query":"tv","page":0,"refinements":["brand:Sony"]}`, string(data))

	data, err = sonic.Marshal(&RefinementEventData{
		BaseEvent:       rt.base("abc", eventRefinement),
		RefinementEvent: RefinementEvent{Widget: "brand", Action: "toggle", Value: "Sony"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"session_id":"abc","country":"se","context":"b2c","event":6,"widget":"brand","action":"toggle","value":"Sony"}`, string(data))
}

func TestNoTracking(t *testing.T) {
	var tr Tracking = NoTracking{}
	assert.NoError(t, tr.TrackRefinement("abc", RefinementEvent{}))
	assert.NoError(t, tr.TrackSearch("abc", state.New(), 0))
	assert.NoError(t, tr.Close())
}

type recordingTracking struct {
	NoTracking
	events []RefinementEvent
	closed bool
}

func (r *recordingTracking) TrackRefinement(_ string, event RefinementEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *recordingTracking) Close() error {
	r.closed = true
	return nil
}

func TestQueuedTrackingFlushesOnClose(t *testing.T) {
	inner := &recordingTracking{}
	q := NewQueuedTracking(inner, 10, time.Hour)
	require.NoError(t, q.TrackRefinement("abc", RefinementEvent{Widget: "brand", Value: "Sony"}))
	require.NoError(t, q.TrackRefinement("abc", RefinementEvent{Widget: "brand", Value: "Apple"}))
	require.NoError(t, q.TrackSearch("abc", state.New(), 1))
	require.NoError(t, q.Close())

	assert.True(t, inner.closed)
	require.Len(t, inner.events, 2)
	assert.Equal(t, []string{"Sony", "Apple"}, []string{inner.events[0].Value, inner.events[1].Value})
}
