package facet

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/matst80/slask-refine/pkg/search"
	"github.com/matst80/slask-refine/pkg/state"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	totalItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slaskrefine_items_total",
		Help: "The total number of items in the facet index",
	})
)

const (
	DefaultMaxValuesPerFacet = 100
	HitsPerPage              = 20
)

type Item struct {
	Id     uint32              `json:"id"`
	Title  string              `json:"title"`
	Fields map[string][]string `json:"fields"`
}

// Index is an in-memory facet index answering searches for the helper.
type Index struct {
	mu     sync.RWMutex
	fields map[string]*KeyField
	tokens map[string]*roaring.Bitmap
	items  map[uint32]*Item
	all    *roaring.Bitmap
	words  *search.Trie
}

func NewIndex() *Index {
	return &Index{
		fields: make(map[string]*KeyField),
		tokens: make(map[string]*roaring.Bitmap),
		items:  make(map[uint32]*Item),
		all:    roaring.New(),
		words:  search.NewTrie(),
	}
}

func (i *Index) AddKeyField(name string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.fields[name]; !ok {
		i.fields[name] = EmptyKeyField(name)
	}
}

func tokenize(text string) []string {
	tokens := search.DefaultTokenizer.Tokenize(text)
	ret := make([]string, len(tokens))
	for idx, token := range tokens {
		ret[idx] = string(token)
	}
	return ret
}

func (i *Index) UpsertItem(item *Item) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.removeUnsafe(item.Id)
	for name, values := range item.Fields {
		f, ok := i.fields[name]
		if !ok {
			f = EmptyKeyField(name)
			i.fields[name] = f
		}
		for _, v := range values {
			f.AddValueLink(v, item.Id)
		}
	}
	for _, token := range tokenize(item.Title) {
		if bm, ok := i.tokens[token]; ok {
			bm.Add(item.Id)
		} else {
			i.tokens[token] = roaring.BitmapOf(item.Id)
			i.words.Insert(token)
		}
	}
	i.items[item.Id] = item
	i.all.Add(item.Id)
	totalItems.Set(float64(len(i.items)))
}

func (i *Index) DeleteItem(id uint32) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.removeUnsafe(id)
	totalItems.Set(float64(len(i.items)))
}

func (i *Index) removeUnsafe(id uint32) {
	existing, ok := i.items[id]
	if !ok {
		return
	}
	for name, values := range existing.Fields {
		if f, ok := i.fields[name]; ok {
			for _, v := range values {
				f.RemoveValueLink(v, id)
			}
		}
	}
	for _, token := range tokenize(existing.Title) {
		if bm, ok := i.tokens[token]; ok {
			bm.Remove(id)
			if bm.IsEmpty() {
				delete(i.tokens, token)
			}
		}
	}
	delete(i.items, id)
	i.all.Remove(id)
}

func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.items)
}

// Items returns the indexed items ordered by id.
func (i *Index) Items() []*Item {
	i.mu.RLock()
	defer i.mu.RUnlock()
	ret := make([]*Item, 0, len(i.items))
	for _, item := range i.items {
		ret = append(ret, item)
	}
	slices.SortFunc(ret, func(a, b *Item) int {
		return cmp.Compare(a.Id, b.Id)
	})
	return ret
}

// Suggest returns indexed title words starting with prefix, most frequent
// first.
func (i *Index) Suggest(prefix string, limit int) []string {
	normalized := string(search.NormalizeWord(prefix))
	if normalized == "" || limit <= 0 {
		return []string{}
	}
	i.mu.RLock()
	defer i.mu.RUnlock()
	type entry struct {
		word  string
		count uint64
	}
	entries := []entry{}
	for _, word := range i.words.FindMatches(normalized) {
		if bm, ok := i.tokens[word]; ok {
			entries = append(entries, entry{word, bm.GetCardinality()})
		}
	}
	slices.SortStableFunc(entries, func(a, b entry) int {
		return cmp.Compare(b.count, a.count)
	})
	ret := make([]string, 0, min(limit, len(entries)))
	for _, e := range entries[:min(limit, len(entries))] {
		ret = append(ret, e.word)
	}
	return ret
}

func (i *Index) queryMatch(query string) *roaring.Bitmap {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return i.all.Clone()
	}
	bms := make([]*roaring.Bitmap, 0, len(tokens))
	for _, token := range tokens {
		bm, ok := i.tokens[token]
		if !ok {
			return roaring.New()
		}
		bms = append(bms, bm)
	}
	return roaring.FastAnd(bms...)
}

// refinementFilters builds one bitmap per refined facet. Conjunctive values
// must all match, disjunctive values match if any does.
func (i *Index) refinementFilters(params *state.SearchParameters) map[string]*roaring.Bitmap {
	filters := make(map[string]*roaring.Bitmap)
	add := func(name string, bm *roaring.Bitmap) {
		if existing, ok := filters[name]; ok {
			existing.And(bm)
		} else {
			filters[name] = bm
		}
	}
	for name, values := range params.FacetsRefinements {
		if len(values) == 0 {
			continue
		}
		if f, ok := i.fields[name]; ok {
			add(name, f.MatchAll(values...))
		} else {
			add(name, roaring.New())
		}
	}
	for name, values := range params.DisjunctiveFacetsRefinements {
		if len(values) == 0 {
			continue
		}
		if f, ok := i.fields[name]; ok {
			add(name, f.Match(values...))
		} else {
			add(name, roaring.New())
		}
	}
	return filters
}

func applyFilters(base *roaring.Bitmap, filters map[string]*roaring.Bitmap, except string) *roaring.Bitmap {
	ret := base.Clone()
	for name, bm := range filters {
		if name == except {
			continue
		}
		ret.And(bm)
	}
	return ret
}

// truncateCounts keeps the limit values with the highest counts.
func truncateCounts(counts map[string]int, limit int) map[string]int {
	if len(counts) <= limit {
		return counts
	}
	type entry struct {
		value string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for v, c := range counts {
		entries = append(entries, entry{v, c})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return strings.Compare(a.value, b.value)
	})
	ret := make(map[string]int, limit)
	for _, e := range entries[:limit] {
		ret[e.value] = e.count
	}
	return ret
}

func (i *Index) facetCounts(name string, filter *roaring.Bitmap, limit int) map[string]int {
	f, ok := i.fields[name]
	if !ok {
		return map[string]int{}
	}
	return truncateCounts(f.Counts(filter), limit)
}

// Search matches the query and refinements. Conjunctive facets are counted on
// the matching items, disjunctive facets are counted as if their own
// refinements were not applied.
func (i *Index) Search(ctx context.Context, params *state.SearchParameters) (*Results, error) {
	if params == nil {
		params = state.New()
	}
	i.mu.RLock()
	defer i.mu.RUnlock()

	limit := params.MaxValuesPerFacet
	if limit <= 0 {
		limit = DefaultMaxValuesPerFacet
	}

	base := i.queryMatch(params.Query)
	filters := i.refinementFilters(params)
	matching := applyFilters(base, filters, "")

	res := NewResults(params)
	res.NbHits = int(matching.GetCardinality())

	ids := matching.ToArray()
	start := len(ids)
	if pages := (len(ids) + HitsPerPage - 1) / HitsPerPage; params.Page >= 0 && params.Page < pages {
		start = params.Page * HitsPerPage
	}
	end := min(start+HitsPerPage, len(ids))
	for _, id := range ids[start:end] {
		res.Hits = append(res.Hits, Hit{Id: id, Title: i.items[id].Title})
	}

	for _, name := range params.Facets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Facets[name] = i.facetCounts(name, matching, limit)
	}
	for _, name := range params.DisjunctiveFacets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.DisjunctiveFacets[name] = i.facetCounts(name, applyFilters(base, filters, name), limit)
	}
	return res, nil
}
