package view

import (
	"bytes"
	"html/template"
	"sync"
)

// CompileOptions apply to templates supplied by the user. Empty delimiters
// mean the html/template defaults.
type CompileOptions struct {
	LeftDelim  string
	RightDelim string
}

// TemplatesConfig is shared by every widget of a search.
type TemplatesConfig struct {
	Helpers        template.FuncMap
	CompileOptions CompileOptions
}

// Template renders a named slot of a widget.
type Template interface {
	Execute(data any, cfg *TemplatesConfig, custom bool) (template.HTML, error)
}

// Static is html/template source text.
type Static string

// TemplateFunc produces the markup directly.
type TemplateFunc func(data any) (template.HTML, error)

func (f TemplateFunc) Execute(data any, _ *TemplatesConfig, _ bool) (template.HTML, error) {
	return f(data)
}

type compiledKey struct {
	cfg    *TemplatesConfig
	custom bool
	text   string
}

var compiled sync.Map

func (s Static) compile(cfg *TemplatesConfig, custom bool) (*template.Template, error) {
	key := compiledKey{cfg, custom, string(s)}
	if t, ok := compiled.Load(key); ok {
		return t.(*template.Template), nil
	}
	t := template.New("tmpl")
	if cfg != nil {
		if custom {
			t = t.Delims(cfg.CompileOptions.LeftDelim, cfg.CompileOptions.RightDelim)
		}
		if cfg.Helpers != nil {
			t = t.Funcs(cfg.Helpers)
		}
	}
	t, err := t.Parse(string(s))
	if err != nil {
		return nil, err
	}
	compiled.Store(key, t)
	return t, nil
}

func (s Static) Execute(data any, cfg *TemplatesConfig, custom bool) (template.HTML, error) {
	if s == "" {
		return "", nil
	}
	t, err := s.compile(cfg, custom)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// TemplateProps is the resolved template setup of one widget render.
type TemplateProps struct {
	Templates               map[string]Template
	UseCustomCompileOptions map[string]bool
	TemplatesConfig         *TemplatesConfig
	TransformData           func(data any) any
}

// Transform applies the transform hook, if any.
func (p *TemplateProps) Transform(data any) any {
	if p == nil || p.TransformData == nil {
		return data
	}
	return p.TransformData(data)
}

// Render executes the template registered under key. Unknown keys render nothing.
func (p *TemplateProps) Render(key string, data any) (template.HTML, error) {
	if p == nil {
		return "", nil
	}
	t, ok := p.Templates[key]
	if !ok || t == nil {
		return "", nil
	}
	return t.Execute(data, p.TemplatesConfig, p.UseCustomCompileOptions[key])
}
