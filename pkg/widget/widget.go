// Package widget holds the contract between widgets and the render cycle,
// and the helpers shared by widget implementations.
package widget

import (
	"fmt"

	"github.com/matst80/slask-refine/pkg/facet"
	"github.com/matst80/slask-refine/pkg/helper"
	"github.com/matst80/slask-refine/pkg/state"
	"github.com/matst80/slask-refine/pkg/view"
)

// RenderOptions is handed to every widget after each search response.
type RenderOptions struct {
	Results         *facet.Results
	Helper          *helper.Helper
	TemplatesConfig *view.TemplatesConfig
	State           *state.SearchParameters
	CreateURL       func(*state.SearchParameters) string
}

type Widget interface {
	// GetConfiguration returns what the widget needs from the backend, given
	// what was accumulated from previously registered widgets.
	GetConfiguration(current *state.SearchParameters) *state.Fragment
	Render(opts *RenderOptions) error
}

// UsageError reports an invalid widget configuration.
type UsageError struct {
	Usage string
	Err   error
}

func (e *UsageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Usage, e.Err)
	}
	return e.Usage
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// GetContainerNode resolves a container handle or a selector looked up in
// view.DefaultDocument.
func GetContainerNode(container any) (*view.Container, error) {
	switch c := container.(type) {
	case *view.Container:
		if c == nil {
			return nil, view.ErrContainerNotFound
		}
		return c, nil
	case string:
		return view.DefaultDocument.Query(c)
	}
	return nil, fmt.Errorf("container must be a selector or *view.Container, got %T", container)
}

// BemHelper builds block--element__modifier class names.
func BemHelper(block string) func(element, modifier string) string {
	return func(element, modifier string) string {
		ret := block
		if element != "" {
			ret += "--" + element
		}
		if modifier != "" {
			ret += "__" + modifier
		}
		return ret
	}
}

type TemplateOptions struct {
	DefaultTemplates map[string]view.Template
	Templates        map[string]view.Template
	TemplatesConfig  *view.TemplatesConfig
	TransformData    func(data any) any
}

// PrepareTemplateProps overlays widget templates on the defaults and marks
// the overridden keys so they compile with the custom options.
func PrepareTemplateProps(opts TemplateOptions) *view.TemplateProps {
	ret := &view.TemplateProps{
		Templates:               make(map[string]view.Template, len(opts.DefaultTemplates)),
		UseCustomCompileOptions: make(map[string]bool, len(opts.DefaultTemplates)),
		TemplatesConfig:         opts.TemplatesConfig,
		TransformData:           opts.TransformData,
	}
	for key, t := range opts.DefaultTemplates {
		ret.Templates[key] = t
		ret.UseCustomCompileOptions[key] = false
	}
	for key, t := range opts.Templates {
		if t == nil {
			continue
		}
		if def, ok := opts.DefaultTemplates[key]; ok && isSameTemplate(def, t) {
			continue
		}
		ret.Templates[key] = t
		ret.UseCustomCompileOptions[key] = true
	}
	return ret
}

func isSameTemplate(a, b view.Template) bool {
	sa, okA := a.(view.Static)
	sb, okB := b.(view.Static)
	return okA && okB && sa == sb
}
