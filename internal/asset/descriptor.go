package asset

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned when a caller omits or misstates a required
// argument, such as the scene of a filtering pass.
var ErrInvalidArgument = errors.New("invalid argument")

// Kind is the asset type. Scripts and stylesheets use the lean relevance
// rule; any other kind (images, templates) uses the traditional one.
type Kind string

const (
	KindScript     Kind = "script"
	KindStylesheet Kind = "stylesheet"
)

// lean reports whether the kind is subject to the narrowed meaning of
// WhenAlways.
func (k Kind) lean() bool {
	return k == KindScript || k == KindStylesheet
}

// When is the audience tag an asset is registered with.
type When string

const (
	WhenAnon   When = "anon"
	WhenUser   When = "user"
	WhenAlways When = "always"
	WhenLean   When = "lean"
)

// ParseWhen validates an audience tag.
func ParseWhen(s string) (When, error) {
	switch w := When(s); w {
	case WhenAnon, WhenUser, WhenAlways, WhenLean:
		return w, nil
	}
	return "", fmt.Errorf("%w: unknown audience tag %q (want anon, user, always or lean)", ErrInvalidArgument, s)
}

// Scene is the audience requested for a single filtering pass.
type Scene string

const (
	SceneAnon Scene = "anon"
	SceneUser Scene = "user"
	SceneAll  Scene = "all"
	SceneLean Scene = "lean"
)

// ParseScene validates a scene name. The empty string is rejected: callers
// must always state an audience.
func ParseScene(s string) (Scene, error) {
	switch sc := Scene(s); sc {
	case SceneAnon, SceneUser, SceneAll, SceneLean:
		return sc, nil
	case "":
		return "", fmt.Errorf("%w: scene is required (usually anon or user)", ErrInvalidArgument)
	}
	return "", fmt.Errorf("%w: unknown scene %q", ErrInvalidArgument, s)
}

// SceneFor computes the scene of a request. An explicit override wins;
// otherwise the presence of a user selects SceneUser.
func SceneFor(override Scene, hasUser bool) Scene {
	if override != "" {
		return override
	}
	if hasUser {
		return SceneUser
	}
	return SceneAnon
}

// Descriptor is a single registered asset.
type Descriptor struct {
	Type Kind   `json:"type"`
	Name string `json:"name"`
	FS   string `json:"fs"`
	Web  string `json:"web"`
	When When   `json:"when"`
	// Minify is nil when the asset may be minified by default. An explicit
	// false excludes it from minification.
	Minify *bool `json:"minify,omitempty"`
}

// key identifies a physically distinct asset no matter how often it was
// registered.
type key struct {
	name, fs, web string
}

func (d Descriptor) key() key {
	return key{name: d.Name, fs: d.FS, web: d.Web}
}

// Item is a registration request as configured by a module or a config
// file. When is nil if the configuration did not mention it at all, which is
// distinct from an explicitly empty tag.
type Item struct {
	Name   string
	When   *When
	Minify *bool
	FS     string
	Web    string
}
