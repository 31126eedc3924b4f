package view

import (
	"bytes"
	"html/template"
	"strings"
)

// Cx joins class names, dropping empty entries and duplicates while keeping
// the first occurrence order.
func Cx(classes ...string) string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(classes))
	for _, c := range classes {
		for _, name := range strings.Fields(c) {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return strings.Join(out, " ")
}

type AutoHideProps interface {
	ShouldAutoHide() bool
}

// AutoHide hides the container instead of rendering when the props ask for it.
func AutoHide[P AutoHideProps](component Component[P]) Component[P] {
	return func(m *Mount, props P) (template.HTML, error) {
		if props.ShouldAutoHide() {
			m.Hide()
			return "", nil
		}
		return component(m, props)
	}
}

type HeaderFooterClasses struct {
	Root   string
	Header string
	Body   string
	Footer string
}

type HeaderFooterProps interface {
	HeaderFooterClasses() HeaderFooterClasses
	TemplateProps() *TemplateProps
}

var headerFooterTmpl = template.Must(template.New("headerFooter").Parse(
	`<div class="{{.Classes.Root}}">` +
		`<div class="{{.Classes.Header}}">{{.Header}}</div>` +
		`<div class="{{.Classes.Body}}">{{.Body}}</div>` +
		`<div class="{{.Classes.Footer}}">{{.Footer}}</div>` +
		`</div>`,
))

// HeaderFooter wraps the component body between the header and footer templates.
func HeaderFooter[P HeaderFooterProps](component Component[P]) Component[P] {
	return func(m *Mount, props P) (template.HTML, error) {
		tp := props.TemplateProps()
		header, err := tp.Render("header", nil)
		if err != nil {
			return "", err
		}
		body, err := component(m, props)
		if err != nil {
			return "", err
		}
		footer, err := tp.Render("footer", nil)
		if err != nil {
			return "", err
		}
		var buf bytes.Buffer
		err = headerFooterTmpl.Execute(&buf, struct {
			Classes HeaderFooterClasses
			Header  template.HTML
			Body    template.HTML
			Footer  template.HTML
		}{props.HeaderFooterClasses(), header, body, footer})
		if err != nil {
			return "", err
		}
		return template.HTML(buf.String()), nil
	}
}
