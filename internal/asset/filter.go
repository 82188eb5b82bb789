package asset

import "fmt"

type filterOptions struct {
	minifiable *bool
}

// FilterOption narrows a filtering pass.
type FilterOption func(*filterOptions)

// Minifiable restricts the result by minification eligibility. With true,
// assets that opted out of minification are dropped; with false, only those
// assets are kept.
func Minifiable(m bool) FilterOption {
	return func(o *filterOptions) {
		o.minifiable = &m
	}
}

// Filter returns the assets relevant to scene, in registration order, with
// duplicates of the same (name, fs, web) collapsed onto their first
// occurrence. The input slice is not modified.
func Filter(assets []Descriptor, scene Scene, opts ...FilterOption) ([]Descriptor, error) {
	if scene == "" {
		return nil, fmt.Errorf("%w: the scene argument is required (usually anon or user)", ErrInvalidArgument)
	}

	var o filterOptions
	for _, opt := range opts {
		opt(&o)
	}

	once := make(map[key]struct{}, len(assets))
	results := make([]Descriptor, 0, len(assets))
	for _, a := range assets {
		if o.minifiable != nil && *o.minifiable != a.minifiable() {
			continue
		}
		if !relevant(a, scene) {
			continue
		}
		k := a.key()
		if _, seen := once[k]; seen {
			continue
		}
		once[k] = struct{}{}
		results = append(results, a)
	}
	return results, nil
}

func (d Descriptor) minifiable() bool {
	return d.Minify == nil || *d.Minify
}

// relevant applies the per-kind relevance rule. For scripts and stylesheets
// "always" only reaches authenticated users; "lean" reaches every scene.
func relevant(a Descriptor, scene Scene) bool {
	if !a.Type.lean() {
		return a.When == WhenAlways || scene == SceneAll || string(a.When) == string(scene)
	}
	return (scene == SceneUser && a.When == WhenAlways) ||
		a.When == WhenLean ||
		scene == SceneAll ||
		string(a.When) == string(scene)
}
