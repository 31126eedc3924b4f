package view

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/url"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	noRenders = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskrefine_renders_total",
		Help: "The total number of container renders",
	})
	noRenderErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskrefine_render_errors_total",
		Help: "The total number of failed container renders",
	})
	noActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slaskrefine_actions_total",
		Help: "The total number of dispatched user actions",
	}, []string{"action"})
)

var (
	ErrContainerNotFound = errors.New("container not found")
	ErrUnknownAction     = errors.New("unknown action")
)

const DefaultActionPath = "/widgets"

var containerTmpl = template.Must(template.New("container").Parse(
	`<div id="{{.ID}}" class="ais-container"{{if .Hidden}} style="display: none"{{end}}{{if .OOB}} hx-swap-oob="true"{{end}}>{{.HTML}}</div>`,
))

// Action handles a user interaction bound during the last render.
type Action func(value string)

// Document holds the mount targets of one page.
type Document struct {
	mu         sync.RWMutex
	containers map[string]*Container
	order      []*Container
	ActionPath string
}

func NewDocument() *Document {
	return &Document{
		containers: make(map[string]*Container),
		ActionPath: DefaultActionPath,
	}
}

// DefaultDocument is used when widgets are given a selector instead of a container.
var DefaultDocument = NewDocument()

func containerID(selector string) string {
	return strings.TrimPrefix(strings.TrimSpace(selector), "#")
}

// Container returns the container for the selector, creating it when missing.
func (d *Document) Container(selector string) *Container {
	id := containerID(selector)
	d.mu.Lock()
	defer d.mu.Unlock()
	if c, ok := d.containers[id]; ok {
		return c
	}
	c := &Container{id: id, doc: d, actions: map[string]Action{}}
	d.containers[id] = c
	d.order = append(d.order, c)
	return c
}

func (d *Document) Query(selector string) (*Container, error) {
	id := containerID(selector)
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.containers[id]
	if !ok || id == "" {
		return nil, fmt.Errorf("%w: %q", ErrContainerNotFound, selector)
	}
	return c, nil
}

// Containers lists containers in creation order.
func (d *Document) Containers() []*Container {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]*Container(nil), d.order...)
}

// HTML renders every container, marked for out-of-band swapping when oob is set.
func (d *Document) HTML(oob bool) template.HTML {
	var buf strings.Builder
	for _, c := range d.Containers() {
		buf.WriteString(string(c.OuterHTML(oob)))
	}
	return template.HTML(buf.String())
}

// Container is a mount target. Each render replaces its markup and actions.
type Container struct {
	id      string
	doc     *Document
	mu      sync.RWMutex
	html    template.HTML
	hidden  bool
	actions map[string]Action
	renders int
}

func (c *Container) ID() string {
	return c.id
}

func (c *Container) HTML() template.HTML {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.html
}

func (c *Container) Hidden() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hidden
}

func (c *Container) Renders() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.renders
}

func (c *Container) ActionURL(action string) string {
	prefix := DefaultActionPath
	if c.doc != nil && c.doc.ActionPath != "" {
		prefix = c.doc.ActionPath
	}
	return prefix + "/" + url.PathEscape(c.id) + "/" + url.PathEscape(action)
}

func (c *Container) OuterHTML(oob bool) template.HTML {
	c.mu.RLock()
	data := struct {
		ID     string
		Hidden bool
		OOB    bool
		HTML   template.HTML
	}{c.id, c.hidden, oob, c.html}
	c.mu.RUnlock()

	var buf bytes.Buffer
	if err := containerTmpl.Execute(&buf, data); err != nil {
		log.Printf("failed to render container %s: %v", c.id, err)
		return "<!-- container error -->"
	}
	return template.HTML(buf.String())
}

// Dispatch invokes the action bound by the last render.
func (c *Container) Dispatch(action, value string) error {
	c.mu.RLock()
	fn, ok := c.actions[action]
	c.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrUnknownAction, action, c.id)
	}
	noActions.WithLabelValues(action).Inc()
	fn(value)
	return nil
}

// Mount collects the output of one render before it is committed.
type Mount struct {
	container *Container
	hidden    bool
	actions   map[string]Action
}

func (m *Mount) Hide() {
	m.hidden = true
}

func (m *Mount) Bind(action string, fn Action) {
	if fn == nil {
		return
	}
	m.actions[action] = fn
}

func (m *Mount) ActionURL(action string) string {
	return m.container.ActionURL(action)
}

type Component[P any] func(m *Mount, props P) (template.HTML, error)

// Render runs the component and replaces the container content with the
// output. A failing component leaves the previous content in place.
func Render[P any](component Component[P], props P, c *Container) error {
	m := &Mount{container: c, actions: map[string]Action{}}
	out, err := component(m, props)
	if err != nil {
		go noRenderErrors.Inc()
		return err
	}
	c.mu.Lock()
	c.html = out
	c.hidden = m.hidden
	c.actions = m.actions
	c.renders++
	c.mu.Unlock()
	go noRenders.Inc()
	return nil
}
