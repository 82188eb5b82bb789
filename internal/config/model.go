package config

import (
	"encoding/json"

	"github.com/vk/leanfront/internal/asset"
)

// Model is the unified representation of all loaded configuration. Slices
// keep file order, which becomes registration order.
type Model struct {
	Frontend     Frontend
	Stylesheets  []asset.Item
	Scripts      []asset.Item
	BrowserCalls []BrowserCall
}

// Frontend holds the options of the lean front-end module.
type Frontend struct {
	// Widgets lists the widget types enabled on the site. Some of them pull
	// in extra player scripts.
	Widgets []string
	FSRoot  string
	WebRoot string
}

// HasWidget reports whether a widget type is enabled.
func (f Frontend) HasWidget(name string) bool {
	for _, w := range f.Widgets {
		if w == name {
			return true
		}
	}
	return false
}

// BrowserCall is a configured JavaScript statement. Args are already JSON
// encoded.
type BrowserCall struct {
	When    asset.When
	Pattern string
	Args    []json.RawMessage
}

// ArgValues returns Args as values suitable for a variadic call.
func (c BrowserCall) ArgValues() []any {
	out := make([]any, len(c.Args))
	for i, a := range c.Args {
		out[i] = a
	}
	return out
}
