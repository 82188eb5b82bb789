package player

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/net/html"
)

// Player enhances a single widget element. data is the parsed "data"
// attribute and always contains a string "type"; options is the parsed
// "data-options" attribute and may be nil.
type Player func(ctx context.Context, el *html.Node, data, options map[string]any) error

// Registry maps widget types to players. Registration is additive; a second
// registration for the same type replaces the first.
type Registry struct {
	mu  sync.RWMutex
	all map[string]Player
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{all: make(map[string]Player)}
}

// Register installs the player for a widget type, such as
// "apostrophe-images". Use the widget's name, not the name of its module.
func (r *Registry) Register(widgetType string, p Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.all[widgetType]; exists {
		slog.Debug("Replacing widget player.", "type", widgetType)
	} else {
		slog.Debug("Registering widget player.", "type", widgetType)
	}
	r.all[widgetType] = p
}

// Lookup returns the player for a widget type.
func (r *Registry) Lookup(widgetType string) (Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.all[widgetType]
	return p, ok
}

// Types lists the registered widget types in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.all))
	for t := range r.all {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
