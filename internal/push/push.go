// Package push layers the lean front-end policy over a base asset registry.
//
// Configured assets without an audience tag default to the lean scene,
// browser calls are never emitted to anonymous visitors, and browser calls
// registered for "always" are narrowed to authenticated users.
package push

import (
	"log/slog"

	"github.com/vk/leanfront/internal/asset"
)

// Base is the registry an Adapter decorates. *registry.Registry satisfies it.
type Base interface {
	PushAsset(kind asset.Kind, name string, item asset.Item) error
	Assets() []asset.Descriptor
	BrowserCall(when asset.When, pattern string, args ...any) error
	BrowserCalls(scene asset.Scene) (string, error)
}

// Pusher is the registration surface handed to modules.
type Pusher interface {
	PushAsset(kind asset.Kind, name string, item asset.Item) error
	BrowserCall(when asset.When, pattern string, args ...any) error
}

// Module is implemented by anything that contributes assets or browser
// calls at startup.
type Module interface {
	Register(p Pusher) error
}

// Adapter wraps a Base and applies the lean front-end policy.
type Adapter struct {
	base Base
}

var _ Base = (*Adapter)(nil)

// New returns an Adapter delegating to base.
func New(base Base) *Adapter {
	return &Adapter{base: base}
}

// SetDefaultWhen returns item with When set to fallback if, and only if, the
// item did not mention When at all. Any explicit tag, even an empty one, is
// kept.
func SetDefaultWhen(item asset.Item, fallback asset.When) asset.Item {
	if item.When == nil {
		w := fallback
		item.When = &w
	}
	return item
}

// PushConfigured pushes configured stylesheets and then scripts, defaulting
// each to the lean scene unless it states its own audience.
func (a *Adapter) PushConfigured(stylesheets, scripts []asset.Item) error {
	for _, item := range stylesheets {
		if err := a.base.PushAsset(asset.KindStylesheet, item.Name, SetDefaultWhen(item, asset.WhenLean)); err != nil {
			return err
		}
	}
	for _, item := range scripts {
		if err := a.base.PushAsset(asset.KindScript, item.Name, SetDefaultWhen(item, asset.WhenLean)); err != nil {
			return err
		}
	}
	return nil
}

// PushAsset delegates unchanged.
func (a *Adapter) PushAsset(kind asset.Kind, name string, item asset.Item) error {
	return a.base.PushAsset(kind, name, item)
}

// Assets delegates unchanged.
func (a *Adapter) Assets() []asset.Descriptor {
	return a.base.Assets()
}

// Filter computes the manifest for a scene from the base registry's assets.
func (a *Adapter) Filter(scene asset.Scene, opts ...asset.FilterOption) ([]asset.Descriptor, error) {
	return asset.Filter(a.base.Assets(), scene, opts...)
}

// BrowserCall records a call, narrowing "always" to authenticated users.
func (a *Adapter) BrowserCall(when asset.When, pattern string, args ...any) error {
	if when == asset.WhenAlways {
		slog.Debug("Narrowing browser call audience.", "from", asset.WhenAlways, "to", asset.WhenUser, "pattern", pattern)
		when = asset.WhenUser
	}
	return a.base.BrowserCall(when, pattern, args...)
}

// BrowserCalls returns nothing for anonymous visitors and delegates for
// every other scene.
func (a *Adapter) BrowserCalls(scene asset.Scene) (string, error) {
	if scene == asset.SceneAnon {
		return "", nil
	}
	return a.base.BrowserCalls(scene)
}
