package registry

import (
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"sync"

	"github.com/vk/leanfront/internal/asset"
)

// Paths controls how filesystem and web paths are derived for assets pushed
// without explicit ones.
type Paths struct {
	FSRoot  string
	WebRoot string
}

// DefaultPaths mirrors the conventional public/ layout served from /.
var DefaultPaths = Paths{FSRoot: "public", WebRoot: "/"}

// Registry holds every asset and browser call pushed for a single
// application instance. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	paths  Paths
	assets []asset.Descriptor
	calls  []browserCall
}

// New creates and initializes a new Registry instance.
func New(paths Paths) *Registry {
	return &Registry{paths: paths}
}

// PushAsset appends an asset in registration order. An item without an
// audience tag defaults to "always", and missing paths are derived from the
// kind and name.
func (r *Registry) PushAsset(kind asset.Kind, name string, item asset.Item) error {
	if name == "" {
		return fmt.Errorf("%w: %s asset name must not be empty", asset.ErrInvalidArgument, kind)
	}

	when := asset.WhenAlways
	if item.When != nil {
		when = *item.When
	}

	d := asset.Descriptor{
		Type:   kind,
		Name:   name,
		FS:     item.FS,
		Web:    item.Web,
		When:   when,
		Minify: item.Minify,
	}
	rel := relPath(kind, name)
	if d.FS == "" {
		d.FS = filepath.Join(r.paths.FSRoot, filepath.FromSlash(rel))
	}
	if d.Web == "" {
		d.Web = path.Join(r.paths.WebRoot, rel)
	}

	r.mu.Lock()
	r.assets = append(r.assets, d)
	r.mu.Unlock()

	slog.Debug("Pushed asset.", "type", kind, "name", name, "when", when)
	return nil
}

// Assets returns a snapshot of every pushed asset in registration order.
func (r *Registry) Assets() []asset.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]asset.Descriptor(nil), r.assets...)
}

func relPath(kind asset.Kind, name string) string {
	switch kind {
	case asset.KindScript:
		return "js/" + name + ".js"
	case asset.KindStylesheet:
		return "css/" + name + ".css"
	default:
		return string(kind) + "/" + name
	}
}
