package facet

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/matst80/slask-refine/pkg/state"
)

var ErrFacetNotRetrieved = errors.New("facet not retrieved")

type Hit struct {
	Id    uint32 `json:"id"`
	Title string `json:"title"`
}

// Results is the answer to one search. State is the parameters it was
// produced for and is not serialized.
type Results struct {
	Query             string                    `json:"query"`
	Page              int                       `json:"page"`
	NbHits            int                       `json:"nbHits"`
	Hits              []Hit                     `json:"hits"`
	Facets            map[string]map[string]int `json:"facets"`
	DisjunctiveFacets map[string]map[string]int `json:"disjunctiveFacets"`
	State             *state.SearchParameters   `json:"-"`
}

func NewResults(params *state.SearchParameters) *Results {
	return &Results{
		Query:             params.Query,
		Page:              params.Page,
		Hits:              []Hit{},
		Facets:            map[string]map[string]int{},
		DisjunctiveFacets: map[string]map[string]int{},
		State:             params,
	}
}

type ValuesOptions struct {
	SortBy []string
}

// Value is one facet value as shown to the user.
type Value struct {
	Name      string `json:"name"`
	Count     int    `json:"count"`
	IsRefined bool   `json:"isRefined"`
}

func (r *Results) counts(name string) (map[string]int, bool) {
	if counts, ok := r.DisjunctiveFacets[name]; ok {
		return counts, true
	}
	counts, ok := r.Facets[name]
	return counts, ok
}

// GetFacetValues returns the values of a retrieved facet ordered by
// opts.SortBy. Refined values are always present, with a zero count when the
// backend did not return them.
func (r *Results) GetFacetValues(name string, opts ValuesOptions) ([]Value, error) {
	counts, ok := r.counts(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFacetNotRetrieved, name)
	}
	criteria, err := parseSortBy(opts.SortBy)
	if err != nil {
		return nil, err
	}

	values := make([]Value, 0, len(counts))
	for value, count := range counts {
		values = append(values, Value{
			Name:      value,
			Count:     count,
			IsRefined: r.State.IsRefined(name, value),
		})
	}
	for _, refined := range r.State.Refinements(name) {
		if _, found := counts[refined]; !found {
			values = append(values, Value{Name: refined, IsRefined: true})
		}
	}

	slices.SortFunc(values, func(a, b Value) int {
		return strings.Compare(a.Name, b.Name)
	})
	slices.SortStableFunc(values, criteria.compare)
	return values, nil
}
