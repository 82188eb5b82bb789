package registry

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vk/leanfront/internal/asset"
)

type browserCall struct {
	when asset.When
	js   string
}

// BrowserCall records a JavaScript statement for an audience. Each "@" in
// pattern is replaced, in order, by the JSON encoding of the matching arg.
func (r *Registry) BrowserCall(when asset.When, pattern string, args ...any) error {
	js, err := renderCall(pattern, args)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.calls = append(r.calls, browserCall{when: when, js: js})
	r.mu.Unlock()
	return nil
}

// BrowserCalls returns the statements for a scene, one per line: calls
// recorded for "always" followed by those recorded for the scene itself.
// The "all" scene receives every call.
func (r *Registry) BrowserCalls(scene asset.Scene) (string, error) {
	if scene == "" {
		return "", fmt.Errorf("%w: scene is required", asset.ErrInvalidArgument)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var b strings.Builder
	emit := func(match func(asset.When) bool) {
		for _, c := range r.calls {
			if match(c.when) {
				b.WriteString(c.js)
				b.WriteString("\n")
			}
		}
	}
	if scene == asset.SceneAll {
		emit(func(asset.When) bool { return true })
		return b.String(), nil
	}
	emit(func(w asset.When) bool { return w == asset.WhenAlways })
	emit(func(w asset.When) bool { return string(w) == string(scene) })
	return b.String(), nil
}

func renderCall(pattern string, args []any) (string, error) {
	var b strings.Builder
	next := 0
	for _, r := range pattern {
		if r != '@' {
			b.WriteRune(r)
			continue
		}
		if next >= len(args) {
			return "", fmt.Errorf("%w: browser call %q has more placeholders than arguments", asset.ErrInvalidArgument, pattern)
		}
		encoded, err := json.Marshal(args[next])
		if err != nil {
			return "", fmt.Errorf("failed to encode argument %d of browser call %q: %w", next, pattern, err)
		}
		b.Write(encoded)
		next++
	}
	if next != len(args) {
		return "", fmt.Errorf("%w: browser call %q has %d placeholders but %d arguments", asset.ErrInvalidArgument, pattern, next, len(args))
	}
	s := b.String()
	if !strings.HasSuffix(s, ";") {
		s += ";"
	}
	return s, nil
}
