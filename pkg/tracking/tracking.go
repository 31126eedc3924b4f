package tracking

import (
	"net/http"

	"github.com/matst80/slask-refine/pkg/state"
)

// RefinementEvent is a click on a widget action.
type RefinementEvent struct {
	Widget string `json:"widget"`
	Action string `json:"action"`
	Value  string `json:"value"`
}

type Tracking interface {
	TrackSession(sessionId string, r *http.Request) error
	TrackRefinement(sessionId string, event RefinementEvent) error
	TrackSearch(sessionId string, params *state.SearchParameters, nbHits int) error
	Close() error
}

// NoTracking is used when no broker is configured.
type NoTracking struct{}

func (NoTracking) TrackSession(string, *http.Request) error {
	return nil
}

func (NoTracking) TrackRefinement(string, RefinementEvent) error {
	return nil
}

func (NoTracking) TrackSearch(string, *state.SearchParameters, int) error {
	return nil
}

func (NoTracking) Close() error {
	return nil
}
