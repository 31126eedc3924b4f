package facet

import (
	"cmp"
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownSortKey = errors.New("unknown facet sort key")

var defaultSortBy = []string{"isRefined:desc", "count:desc", "name:asc"}

type sortCriterion struct {
	key  string
	desc bool
}

type sortCriteria []sortCriterion

// parseSortBy accepts count, isRefined and name, optionally suffixed with
// :asc or :desc. Missing direction means ascending.
func parseSortBy(sortBy []string) (sortCriteria, error) {
	if len(sortBy) == 0 {
		sortBy = defaultSortBy
	}
	ret := make(sortCriteria, 0, len(sortBy))
	for _, s := range sortBy {
		key, dir, _ := strings.Cut(s, ":")
		c := sortCriterion{key: key}
		switch dir {
		case "", "asc":
		case "desc":
			c.desc = true
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownSortKey, s)
		}
		switch key {
		case "count", "isRefined", "name":
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownSortKey, s)
		}
		ret = append(ret, c)
	}
	return ret, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (c sortCriterion) compare(a, b Value) int {
	r := 0
	switch c.key {
	case "count":
		r = cmp.Compare(a.Count, b.Count)
	case "isRefined":
		r = cmp.Compare(boolToInt(a.IsRefined), boolToInt(b.IsRefined))
	case "name":
		r = strings.Compare(a.Name, b.Name)
	}
	if c.desc {
		return -r
	}
	return r
}

func (s sortCriteria) compare(a, b Value) int {
	for _, c := range s {
		if r := c.compare(a, b); r != 0 {
			return r
		}
	}
	return 0
}
