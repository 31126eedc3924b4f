package view

import (
	"bytes"
	"html/template"

	"github.com/bytedance/sonic"
	"github.com/matst80/slask-refine/pkg/facet"
)

const ToggleAction = "toggle"

type RefinementListClasses struct {
	Root     string
	Header   string
	Body     string
	Footer   string
	List     string
	Item     string
	Active   string
	Label    string
	Checkbox string
	Count    string
}

type RefinementListProps struct {
	CreateURL         func(value string) string
	CSSClasses        RefinementListClasses
	FacetValues       []facet.Value
	HasResults        bool
	HideWhenNoResults bool
	Templates         *TemplateProps
	ToggleRefinement  func(value string)
}

func (p *RefinementListProps) ShouldAutoHide() bool {
	return p.HideWhenNoResults && !p.HasResults
}

func (p *RefinementListProps) HeaderFooterClasses() HeaderFooterClasses {
	return HeaderFooterClasses{
		Root:   p.CSSClasses.Root,
		Header: p.CSSClasses.Header,
		Body:   p.CSSClasses.Body,
		Footer: p.CSSClasses.Footer,
	}
}

func (p *RefinementListProps) TemplateProps() *TemplateProps {
	return p.Templates
}

// ItemData is handed to the item template, after the transform hook.
type ItemData struct {
	Name       string
	Count      int
	IsRefined  bool
	CSSClasses RefinementListClasses
}

var refinementListTmpl = template.Must(template.New("list").Parse(
	`<div class="{{.Class}}">{{range .Items}}` +
		`<a class="{{.Class}}" href="{{.URL}}" hx-post="{{.Action}}" hx-vals="{{.Vals}}" hx-swap="none">{{.Body}}</a>` +
		`{{end}}</div>`,
))

type listItem struct {
	Class  string
	URL    string
	Action string
	Vals   string
	Body   template.HTML
}

func refinementList(m *Mount, p *RefinementListProps) (template.HTML, error) {
	m.Bind(ToggleAction, p.ToggleRefinement)

	items := make([]listItem, 0, len(p.FacetValues))
	for _, v := range p.FacetValues {
		url := "#"
		if p.CreateURL != nil {
			url = p.CreateURL(v.Name)
		}
		vals, err := sonic.Marshal(map[string]string{"value": v.Name})
		if err != nil {
			return "", err
		}
		class := p.CSSClasses.Item
		if v.IsRefined {
			class = Cx(p.CSSClasses.Item, p.CSSClasses.Active)
		}
		body, err := p.Templates.Render("item", p.Templates.Transform(ItemData{
			Name:       v.Name,
			Count:      v.Count,
			IsRefined:  v.IsRefined,
			CSSClasses: p.CSSClasses,
		}))
		if err != nil {
			return "", err
		}
		items = append(items, listItem{
			Class:  class,
			URL:    url,
			Action: m.ActionURL(ToggleAction),
			Vals:   string(vals),
			Body:   body,
		})
	}

	var buf bytes.Buffer
	err := refinementListTmpl.Execute(&buf, struct {
		Class string
		Items []listItem
	}{p.CSSClasses.List, items})
	if err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// RefinementList renders a list of selectable facet values, wrapped in the
// header and footer and hidden when empty if requested.
var RefinementList = AutoHide(HeaderFooter(Component[*RefinementListProps](refinementList)))
