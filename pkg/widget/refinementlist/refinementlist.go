// Package refinementlist implements a widget listing the values of one facet
// as selectable filters.
package refinementlist

import (
	"fmt"
	"strings"

	"github.com/matst80/slask-refine/pkg/facet"
	"github.com/matst80/slask-refine/pkg/helper"
	"github.com/matst80/slask-refine/pkg/state"
	"github.com/matst80/slask-refine/pkg/view"
	"github.com/matst80/slask-refine/pkg/widget"
)

const usage = "Usage: refinementlist.New(Options{Container, FacetName, [Operator, SortBy, Limit, " +
	"CSSClasses.{Root,Header,Body,Footer,List,Item,Active,Label,Checkbox,Count}, " +
	"Templates.{header,item,footer}, TransformData, HideWhenNoResults]})"

const DefaultLimit = 1000

var DefaultSortBy = []string{"count:desc"}

var bem = widget.BemHelper("ais-refinement-list")

// Operator selects how refinements of the facet combine.
type Operator int

const (
	// Or refines with any of the selected values, counted as a disjunctive facet.
	Or Operator = iota
	// And refines with all of the selected values, counted as a conjunctive facet.
	And
)

func (o Operator) String() string {
	if o == And {
		return "and"
	}
	return "or"
}

func ParseOperator(s string) (Operator, error) {
	switch strings.ToLower(s) {
	case "", "or":
		return Or, nil
	case "and":
		return And, nil
	}
	return Or, fmt.Errorf("unknown operator %q", s)
}

// CSSClasses are added to the base class of each element.
type CSSClasses struct {
	Root     []string
	Header   []string
	Body     []string
	Footer   []string
	List     []string
	Item     []string
	Active   []string
	Label    []string
	Checkbox []string
	Count    []string
}

type Options struct {
	// Container is a *view.Container or a selector in view.DefaultDocument.
	Container any
	FacetName string
	// Operator is "or" (default) or "and", case insensitive.
	Operator string
	// SortBy defaults to count:desc.
	SortBy []string
	// Limit is the maximum number of values shown, 1000 when zero.
	Limit      int
	CSSClasses CSSClasses
	// Templates overrides the header, item and footer templates.
	Templates     map[string]view.Template
	TransformData func(data any) any
	// HideWhenNoResults defaults to true.
	HideWhenNoResults *bool
}

type RefinementList struct {
	container         *view.Container
	facetName         string
	operator          Operator
	sortBy            []string
	limit             int
	cssClasses        CSSClasses
	templates         map[string]view.Template
	transformData     func(data any) any
	hideWhenNoResults bool
}

func isEmptyContainer(c any) bool {
	switch typed := c.(type) {
	case nil:
		return true
	case string:
		return typed == ""
	case *view.Container:
		return typed == nil
	}
	return false
}

func New(opts Options) (*RefinementList, error) {
	if isEmptyContainer(opts.Container) || opts.FacetName == "" {
		return nil, &widget.UsageError{Usage: usage}
	}
	container, err := widget.GetContainerNode(opts.Container)
	if err != nil {
		return nil, &widget.UsageError{Usage: usage, Err: err}
	}
	operator, err := ParseOperator(opts.Operator)
	if err != nil {
		return nil, &widget.UsageError{Usage: usage, Err: err}
	}

	r := &RefinementList{
		container:         container,
		facetName:         opts.FacetName,
		operator:          operator,
		sortBy:            opts.SortBy,
		limit:             opts.Limit,
		cssClasses:        opts.CSSClasses,
		templates:         opts.Templates,
		transformData:     opts.TransformData,
		hideWhenNoResults: true,
	}
	if len(r.sortBy) == 0 {
		r.sortBy = DefaultSortBy
	}
	if r.limit <= 0 {
		r.limit = DefaultLimit
	}
	if opts.HideWhenNoResults != nil {
		r.hideWhenNoResults = *opts.HideWhenNoResults
	}
	return r, nil
}

func (r *RefinementList) FacetName() string {
	return r.facetName
}

func (r *RefinementList) Container() *view.Container {
	return r.container
}

// GetConfiguration declares the facet in the group matching the operator and
// raises the max values per facet to the widget limit.
func (r *RefinementList) GetConfiguration(current *state.SearchParameters) *state.Fragment {
	ret := &state.Fragment{}
	switch r.operator {
	case And:
		ret.Facets = []string{r.facetName}
	case Or:
		ret.DisjunctiveFacets = []string{r.facetName}
	}
	if current == nil || current.MaxValuesPerFacet == 0 || r.limit > current.MaxValuesPerFacet {
		ret.MaxValuesPerFacet = r.limit
	}
	return ret
}

func (r *RefinementList) classes() view.RefinementListClasses {
	c := r.cssClasses
	slot := func(base string, extra []string) string {
		return view.Cx(append([]string{base}, extra...)...)
	}
	return view.RefinementListClasses{
		Root:     slot(bem("", ""), c.Root),
		Header:   slot(bem("header", ""), c.Header),
		Body:     slot(bem("body", ""), c.Body),
		Footer:   slot(bem("footer", ""), c.Footer),
		List:     slot(bem("list", ""), c.List),
		Item:     slot(bem("item", ""), c.Item),
		Active:   slot(bem("item", "active"), c.Active),
		Label:    slot(bem("label", ""), c.Label),
		Checkbox: slot(bem("checkbox", ""), c.Checkbox),
		Count:    slot(bem("count", ""), c.Count),
	}
}

func (r *RefinementList) Render(opts *widget.RenderOptions) error {
	templateProps := widget.PrepareTemplateProps(widget.TemplateOptions{
		TransformData:    r.transformData,
		DefaultTemplates: DefaultTemplates,
		TemplatesConfig:  opts.TemplatesConfig,
		Templates:        r.templates,
	})

	facetValues, err := opts.Results.GetFacetValues(r.facetName, facet.ValuesOptions{SortBy: r.sortBy})
	if err != nil {
		return err
	}
	if len(facetValues) > r.limit {
		facetValues = facetValues[:r.limit]
	}

	var createURL func(string) string
	if opts.CreateURL != nil {
		createURL = func(value string) string {
			return opts.CreateURL(opts.State.ToggleRefinement(r.facetName, value))
		}
	}
	props := &view.RefinementListProps{
		CreateURL:         createURL,
		CSSClasses:        r.classes(),
		FacetValues:       facetValues,
		HasResults:        len(facetValues) > 0,
		HideWhenNoResults: r.hideWhenNoResults,
		Templates:         templateProps,
		ToggleRefinement: func(value string) {
			toggleRefinement(opts.Helper, r.facetName, value)
		},
	}
	return view.Render(view.RefinementList, props, r.container)
}

func toggleRefinement(h *helper.Helper, facetName, value string) {
	h.ToggleRefinement(facetName, value).Search()
}
