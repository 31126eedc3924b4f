package state

import (
	"fmt"
	"hash/fnv"
	"log"
	"net/url"
	"slices"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gorilla/schema"
)

// urlParams is the shareable part of the query state. Refinements are stored
// as facet:value pairs, the group is decided by the configured base state.
type urlParams struct {
	Query       string   `schema:"q,omitempty"`
	Page        int      `schema:"page,omitempty"`
	Refinements []string `schema:"r,omitempty"`
}

var (
	encoder = schema.NewEncoder()
	decoder = newDecoder()
)

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

// Encode serializes query, page and refinements into sorted url values.
func (s *SearchParameters) Encode() url.Values {
	p := urlParams{
		Query: s.Query,
		Page:  s.Page,
	}
	for _, m := range []map[string][]string{s.FacetsRefinements, s.DisjunctiveFacetsRefinements} {
		for name, values := range m {
			for _, v := range values {
				p.Refinements = append(p.Refinements, name+":"+v)
			}
		}
	}
	slices.Sort(p.Refinements)
	values := url.Values{}
	if err := encoder.Encode(&p, values); err != nil {
		log.Printf("failed to encode query state: %v", err)
	}
	return values
}

// Decode applies url values on top of base. Refinements already active on base
// are replaced by the ones found in the values, refinements on facets base
// does not declare are dropped.
func Decode(base *SearchParameters, values url.Values) (*SearchParameters, error) {
	var p urlParams
	if err := decoder.Decode(&p, values); err != nil {
		return nil, fmt.Errorf("decode query state: %w", err)
	}
	ret := base.ClearRefinements()
	ret.Query = p.Query
	for _, r := range p.Refinements {
		name, value, found := strings.Cut(r, ":")
		if !found || name == "" || value == "" {
			continue
		}
		if !ret.IsConjunctiveFacet(name) && !ret.IsDisjunctiveFacet(name) {
			log.Printf("ignoring refinement on undeclared facet %s", name)
			continue
		}
		if ret.IsRefined(name, value) {
			continue
		}
		ret = ret.ToggleRefinement(name, value)
	}
	ret.Page = min(max(p.Page, 0), MaxPage)
	return ret, nil
}

// Key returns a stable identifier for the parameters, used as cache key.
func (s *SearchParameters) Key() (string, error) {
	data, err := sonic.ConfigStd.Marshal(s.normalized())
	if err != nil {
		return "", err
	}
	h := fnv.New64a()
	h.Write(data)
	return fmt.Sprintf("refine:%x", h.Sum64()), nil
}
