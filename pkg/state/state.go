package state

import (
	"log"
	"slices"
)

// SearchParameters is the query state sent to the search backend. Values are
// treated as immutable, every mutation returns a modified copy.
type SearchParameters struct {
	Query                        string              `json:"query,omitempty"`
	Page                         int                 `json:"page,omitempty"`
	Facets                       []string            `json:"facets,omitempty"`
	DisjunctiveFacets            []string            `json:"disjunctiveFacets,omitempty"`
	MaxValuesPerFacet            int                 `json:"maxValuesPerFacet,omitempty"`
	FacetsRefinements            map[string][]string `json:"facetsRefinements,omitempty"`
	DisjunctiveFacetsRefinements map[string][]string `json:"disjunctiveFacetsRefinements,omitempty"`
}

// Fragment is the partial configuration a widget contributes before the
// first search. A zero MaxValuesPerFacet means no contribution.
type Fragment struct {
	Facets            []string
	DisjunctiveFacets []string
	MaxValuesPerFacet int
}

// MaxPage is the highest page a query state can ask for.
const MaxPage = 1000

func New() *SearchParameters {
	return &SearchParameters{
		FacetsRefinements:            map[string][]string{},
		DisjunctiveFacetsRefinements: map[string][]string{},
	}
}

func cloneRefinements(src map[string][]string) map[string][]string {
	ret := make(map[string][]string, len(src))
	for k, v := range src {
		ret[k] = slices.Clone(v)
	}
	return ret
}

func (s *SearchParameters) Clone() *SearchParameters {
	if s == nil {
		return New()
	}
	return &SearchParameters{
		Query:                        s.Query,
		Page:                         s.Page,
		Facets:                       slices.Clone(s.Facets),
		DisjunctiveFacets:            slices.Clone(s.DisjunctiveFacets),
		MaxValuesPerFacet:            s.MaxValuesPerFacet,
		FacetsRefinements:            cloneRefinements(s.FacetsRefinements),
		DisjunctiveFacetsRefinements: cloneRefinements(s.DisjunctiveFacetsRefinements),
	}
}

func (s *SearchParameters) IsDisjunctiveFacet(name string) bool {
	return slices.Contains(s.DisjunctiveFacets, name)
}

func (s *SearchParameters) IsConjunctiveFacet(name string) bool {
	return slices.Contains(s.Facets, name)
}

func (s *SearchParameters) refinementsFor(name string) map[string][]string {
	if s.IsDisjunctiveFacet(name) {
		return s.DisjunctiveFacetsRefinements
	}
	return s.FacetsRefinements
}

// IsRefined reports whether value is an active refinement of the facet.
func (s *SearchParameters) IsRefined(name, value string) bool {
	if s == nil {
		return false
	}
	return slices.Contains(s.refinementsFor(name)[name], value)
}

// Refinements returns the active values for a facet in the group it belongs to.
func (s *SearchParameters) Refinements(name string) []string {
	if s == nil {
		return nil
	}
	return s.refinementsFor(name)[name]
}

// ToggleRefinement adds the value when absent and removes it otherwise. The
// receiver is left untouched and the page is reset.
func (s *SearchParameters) ToggleRefinement(name, value string) *SearchParameters {
	ret := s.Clone()
	ret.Page = 0
	refinements := ret.refinementsFor(name)
	current := refinements[name]
	if idx := slices.Index(current, value); idx >= 0 {
		current = slices.Delete(current, idx, idx+1)
	} else {
		current = append(current, value)
	}
	if len(current) == 0 {
		delete(refinements, name)
	} else {
		refinements[name] = current
	}
	return ret
}

// ClearRefinements drops every active refinement while keeping the declared facets.
func (s *SearchParameters) ClearRefinements() *SearchParameters {
	ret := s.Clone()
	ret.Page = 0
	ret.FacetsRefinements = map[string][]string{}
	ret.DisjunctiveFacetsRefinements = map[string][]string{}
	return ret
}

func (s *SearchParameters) SetQuery(query string) *SearchParameters {
	ret := s.Clone()
	ret.Query = query
	ret.Page = 0
	return ret
}

func (s *SearchParameters) SetPage(page int) *SearchParameters {
	ret := s.Clone()
	ret.Page = min(max(page, 0), MaxPage)
	return ret
}

// Apply merges a widget fragment. A facet keeps the group it was first
// declared in.
func (s *SearchParameters) Apply(f *Fragment) *SearchParameters {
	ret := s.Clone()
	if f == nil {
		return ret
	}
	for _, name := range f.Facets {
		if ret.IsDisjunctiveFacet(name) {
			log.Printf("facet %s already declared disjunctive, ignoring conjunctive declaration", name)
			continue
		}
		if !ret.IsConjunctiveFacet(name) {
			ret.Facets = append(ret.Facets, name)
		}
	}
	for _, name := range f.DisjunctiveFacets {
		if ret.IsConjunctiveFacet(name) {
			log.Printf("facet %s already declared conjunctive, ignoring disjunctive declaration", name)
			continue
		}
		if !ret.IsDisjunctiveFacet(name) {
			ret.DisjunctiveFacets = append(ret.DisjunctiveFacets, name)
		}
	}
	if f.MaxValuesPerFacet > 0 {
		ret.MaxValuesPerFacet = f.MaxValuesPerFacet
	}
	return ret
}

// AllFacets lists conjunctive then disjunctive facet names.
func (s *SearchParameters) AllFacets() []string {
	return slices.Concat(s.Facets, s.DisjunctiveFacets)
}

// normalized returns a copy with sorted slices, used for stable keys.
func (s *SearchParameters) normalized() *SearchParameters {
	ret := s.Clone()
	slices.Sort(ret.Facets)
	slices.Sort(ret.DisjunctiveFacets)
	for _, m := range []map[string][]string{ret.FacetsRefinements, ret.DisjunctiveFacetsRefinements} {
		for _, values := range m {
			slices.Sort(values)
		}
	}
	return ret
}
