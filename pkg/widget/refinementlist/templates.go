package refinementlist

import "github.com/matst80/slask-refine/pkg/view"

var DefaultTemplates = map[string]view.Template{
	"header": view.Static(""),
	// items render inside the toggle link, so the checkbox is only a state marker
	"item": view.Static(`<span class="{{.CSSClasses.Label}}">` +
		`<span class="{{.CSSClasses.Checkbox}}" role="checkbox" aria-checked="{{.IsRefined}}"></span>` +
		`{{.Name}} <span class="{{.CSSClasses.Count}}">{{.Count}}</span>` +
		`</span>`),
	"footer": view.Static(""),
}
