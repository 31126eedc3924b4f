package view

import (
	"errors"
	"html/template"
	"strings"
	"testing"

	"github.com/matst80/slask-refine/pkg/facet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCx(t *testing.T) {
	assert.Equal(t, "a b c", Cx("a", "b a", "", " c  b"))
	assert.Equal(t, "", Cx())
}

func TestDocumentContainers(t *testing.T) {
	d := NewDocument()
	a := d.Container("#brand")
	assert.Same(t, a, d.Container("brand"))
	d.Container("#type")

	found, err := d.Query("#brand")
	require.NoError(t, err)
	assert.Same(t, a, found)

	_, err = d.Query("#missing")
	assert.ErrorIs(t, err, ErrContainerNotFound)

	ids := []string{}
	for _, c := range d.Containers() {
		ids = append(ids, c.ID())
	}
	assert.Equal(t, []string{"brand", "type"}, ids)
	assert.Equal(t, "/widgets/brand/toggle", a.ActionURL(ToggleAction))
}

func TestRenderReplacesContentAndActions(t *testing.T) {
	c := NewDocument().Container("#c")
	var got []string
	var first Component[string] = func(m *Mount, props string) (template.HTML, error) {
		m.Bind("first", func(v string) { got = append(got, "first:"+v) })
		return template.HTML(props), nil
	}
	var second Component[string] = func(m *Mount, props string) (template.HTML, error) {
		m.Bind("second", func(v string) { got = append(got, "second:"+v) })
		m.Hide()
		return template.HTML(props), nil
	}

	require.NoError(t, Render(first, "<p>one</p>", c))
	assert.Equal(t, template.HTML("<p>one</p>"), c.HTML())
	require.NoError(t, c.Dispatch("first", "x"))

	require.NoError(t, Render(second, "<p>two</p>", c))
	assert.Equal(t, template.HTML("<p>two</p>"), c.HTML())
	assert.True(t, c.Hidden())
	assert.ErrorIs(t, c.Dispatch("first", "y"), ErrUnknownAction)
	require.NoError(t, c.Dispatch("second", "z"))

	assert.Equal(t, []string{"first:x", "second:z"}, got)
	assert.Equal(t, 2, c.Renders())
	assert.Contains(t, string(c.OuterHTML(true)), `style="display: none"`)
	assert.Contains(t, string(c.OuterHTML(true)), `hx-swap-oob="true"`)
}

func TestRenderErrorKeepsPreviousContent(t *testing.T) {
	c := NewDocument().Container("#c")
	var ok Component[string] = func(m *Mount, props string) (template.HTML, error) { return "ok", nil }
	var failing Component[string] = func(m *Mount, props string) (template.HTML, error) { return "", errors.New("boom") }

	require.NoError(t, Render(ok, "", c))
	assert.Error(t, Render(failing, "", c))
	assert.Equal(t, template.HTML("ok"), c.HTML())
}

func TestStaticTemplateCompileOptions(t *testing.T) {
	cfg := &TemplatesConfig{
		Helpers:        template.FuncMap{"upper": strings.ToUpper},
		CompileOptions: CompileOptions{LeftDelim: "[[", RightDelim: "]]"},
	}
	props := &TemplateProps{
		Templates: map[string]Template{
			"default": Static(`{{upper .}}`),
			"custom":  Static(`[[upper .]] {{`),
			"func": TemplateFunc(func(data any) (template.HTML, error) {
				return template.HTML("<b>" + data.(string) + "</b>"), nil
			}),
		},
		UseCustomCompileOptions: map[string]bool{"custom": true},
		TemplatesConfig:         cfg,
	}

	out, err := props.Render("default", "sony")
	require.NoError(t, err)
	assert.Equal(t, template.HTML("SONY"), out)

	out, err = props.Render("custom", "sony")
	require.NoError(t, err)
	assert.Equal(t, template.HTML("SONY {{"), out)

	out, err = props.Render("func", "sony")
	require.NoError(t, err)
	assert.Equal(t, template.HTML("<b>sony</b>"), out)

	out, err = props.Render("missing", "sony")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = (&TemplateProps{Templates: map[string]Template{"bad": Static("{{.Missing")}}).Render("bad", nil)
	assert.Error(t, err)
}

func listProps(values []facet.Value) *RefinementListProps {
	return &RefinementListProps{
		CreateURL: func(value string) string { return "?r=brand%3A" + value },
		CSSClasses: RefinementListClasses{
			Root: "root", Header: "header", Body: "body", Footer: "footer",
			List: "list", Item: "item", Active: "item active", Label: "label",
			Checkbox: "checkbox", Count: "count",
		},
		FacetValues:       values,
		HasResults:        len(values) > 0,
		HideWhenNoResults: true,
		Templates: &TemplateProps{
			Templates: map[string]Template{
				"header": Static(`<h3>Brand</h3>`),
				"item":   Static(`{{.Name}} ({{.Count}}){{if .IsRefined}} *{{end}}`),
				"footer": Static(``),
			},
		},
	}
}

func TestRefinementListRender(t *testing.T) {
	c := NewDocument().Container("#brand")
	var toggled []string
	p := listProps([]facet.Value{{Name: "Apple", Count: 25}, {Name: "Sony", Count: 10, IsRefined: true}})
	p.ToggleRefinement = func(v string) { toggled = append(toggled, v) }

	require.NoError(t, Render(RefinementList, p, c))
	html := string(c.HTML())
	assert.False(t, c.Hidden())
	assert.True(t, strings.HasPrefix(html, `<div class="root"><div class="header"><h3>Brand</h3></div><div class="body"><div class="list">`))
	assert.Contains(t, html, `<a class="item" href="?r=brand%3AApple"`)
	assert.Contains(t, html, `<a class="item active" href="?r=brand%3ASony"`)
	assert.Contains(t, html, `hx-post="/widgets/brand/toggle"`)
	assert.Contains(t, html, `Sony (10) *`)
	assert.Less(t, strings.Index(html, "Apple"), strings.Index(html, "Sony"))

	require.NoError(t, c.Dispatch(ToggleAction, "Sony"))
	assert.Equal(t, []string{"Sony"}, toggled)
}

func TestRefinementListTransformData(t *testing.T) {
	c := NewDocument().Container("#brand")
	p := listProps([]facet.Value{{Name: "Apple", Count: 25}})
	p.Templates.TransformData = func(data any) any {
		item := data.(ItemData)
		item.Name = strings.ToUpper(item.Name)
		return item
	}
	require.NoError(t, Render(RefinementList, p, c))
	assert.Contains(t, string(c.HTML()), "APPLE (25)")
}

func TestRefinementListAutoHide(t *testing.T) {
	c := NewDocument().Container("#brand")
	p := listProps(nil)
	require.NoError(t, Render(RefinementList, p, c))
	assert.True(t, c.Hidden())
	assert.Empty(t, c.HTML())

	p.HideWhenNoResults = false
	require.NoError(t, Render(RefinementList, p, c))
	assert.False(t, c.Hidden())
	assert.Contains(t, string(c.HTML()), `<div class="list"></div>`)
}
