package action

import (
	"encoding/json"
	"fmt"
	"sync"

	perrors "github.com/p-blackswan/site-agent/internal/errors"
	"github.com/p-blackswan/site-agent/internal/llm"
	"github.com/p-blackswan/site-agent/internal/site"
)

// Handler implements one action of the taxonomy.
type Handler interface {
	// Schema returns the action's name, description, and JSON Schema for inputs.
	Schema() llm.ToolSchema

	// Apply mutates m according to args and returns a human-readable summary.
	// Errors are per-action failures; m must be left untouched on error.
	Apply(m *site.ContentModel, args json.RawMessage) (string, error)
}

// Registry holds the registered handlers in registration order.
type Registry struct {
	mu       sync.RWMutex
	handlers map[Name]Handler
	order    []Name
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[Name]Handler)}
}

// DefaultRegistry returns a registry holding the full taxonomy. defaults are
// used when describing styles the site leaves unset.
func DefaultRegistry(defaults site.StyleDefaults) *Registry {
	r := NewRegistry()
	r.Register(addSectionHandler{})
	r.Register(removeSectionHandler{})
	r.Register(editSectionHandler{})
	r.Register(reorderHandler{})
	r.Register(colorsHandler{})
	r.Register(fontsHandler{})
	r.Register(seoHandler{})
	r.Register(infoHandler{defaults: defaults})
	return r
}

// Register adds a handler to the registry. Panics on duplicate name.
func (r *Registry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := Name(h.Schema().Name)
	if _, exists := r.handlers[name]; exists {
		panic(fmt.Sprintf("action already registered: %s", name))
	}
	r.handlers[name] = h
	r.order = append(r.order, name)
}

// Get returns a handler by name.
func (r *Registry) Get(name Name) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Schemas returns all tool schemas in registration order (for passing to the
// model).
func (r *Registry) Schemas() []llm.ToolSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	schemas := make([]llm.ToolSchema, 0, len(r.order))
	for _, n := range r.order {
		schemas = append(schemas, r.handlers[n].Schema())
	}
	return schemas
}

// Apply dispatches one action to its handler.
func (r *Registry) Apply(m *site.ContentModel, a Action) (string, error) {
	h, ok := r.Get(a.Name)
	if !ok {
		return "", perrors.MalformedAction("unknown action %q", a.Name)
	}
	return h.Apply(m, a.Arguments)
}

// MustSchema builds a json.RawMessage from a Go value (panics on error).
func MustSchema(v interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("MustSchema: %v", err))
	}
	return b
}
