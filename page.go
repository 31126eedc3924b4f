package main

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/matst80/slask-refine/pkg/server"
	"github.com/matst80/slask-refine/pkg/storage"
	"github.com/matst80/slask-refine/pkg/view"
	"github.com/matst80/slask-refine/pkg/widget"
	"github.com/matst80/slask-refine/pkg/widget/refinementlist"
)

// parseFacets reads "name:operator" pairs separated by commas.
func parseFacets(value string) ([]storage.FacetSetting, error) {
	ret := []storage.FacetSetting{}
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, operator, _ := strings.Cut(part, ":")
		if name == "" {
			return nil, fmt.Errorf("invalid facet %q", part)
		}
		ret = append(ret, storage.FacetSetting{Name: name, Operator: operator})
	}
	return ret, nil
}

func titleTemplate(title string) view.Template {
	return view.TemplateFunc(func(any) (template.HTML, error) {
		return template.HTML("<h3>" + template.HTMLEscapeString(title) + "</h3>"), nil
	})
}

// refinementPage mounts one refinement list per facet setting.
func refinementPage(facets []storage.FacetSetting) server.PageFactory {
	return func(doc *view.Document) ([]widget.Widget, error) {
		ret := make([]widget.Widget, 0, len(facets))
		for _, f := range facets {
			opts := refinementlist.Options{
				Container: doc.Container("#" + f.Name),
				FacetName: f.Name,
				Operator:  f.Operator,
				SortBy:    f.SortBy,
				Limit:     f.Limit,
			}
			if f.Title != "" {
				opts.Templates = map[string]view.Template{"header": titleTemplate(f.Title)}
			}
			w, err := refinementlist.New(opts)
			if err != nil {
				return nil, fmt.Errorf("facet %s: %w", f.Name, err)
			}
			ret = append(ret, w)
		}
		return ret, nil
	}
}
