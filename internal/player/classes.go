package player

import (
	"strings"

	"golang.org/x/net/html"
)

// HasClass reports whether el's class attribute contains className.
func HasClass(el *html.Node, className string) bool {
	v, _ := attr(el, "class")
	for _, c := range strings.Fields(v) {
		if c == className {
			return true
		}
	}
	return false
}

// AddClass adds className to el if missing.
func AddClass(el *html.Node, className string) {
	if HasClass(el, className) {
		return
	}
	v, _ := attr(el, "class")
	setAttr(el, "class", strings.TrimSpace(v+" "+className))
}

// RemoveClass removes className, which may hold several space-separated
// names, from el.
func RemoveClass(el *html.Node, className string) {
	v, ok := attr(el, "class")
	if !ok {
		return
	}
	drop := make(map[string]struct{})
	for _, c := range strings.Fields(className) {
		drop[c] = struct{}{}
	}
	var kept []string
	for _, c := range strings.Fields(v) {
		if _, ok := drop[c]; !ok {
			kept = append(kept, c)
		}
	}
	setAttr(el, "class", strings.Join(kept, " "))
}

// Assign copies the keys of each src into dst, later sources winning, and
// returns dst. A nil dst is allocated.
func Assign(dst map[string]any, srcs ...map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}
	for _, src := range srcs {
		for k, v := range src {
			dst[k] = v
		}
	}
	return dst
}

func setAttr(n *html.Node, name, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: val})
}
