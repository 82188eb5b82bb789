package player

import (
	"context"
	"fmt"
	"io"
	"sync"

	"golang.org/x/net/html"
)

// Document is a parsed page plus a one-shot readiness signal equivalent to
// the browser's DOMContentLoaded.
type Document struct {
	Root *html.Node

	ready chan struct{}
	once  sync.Once
}

// NewDocument wraps a tree that is still being assembled. Call MarkReady once
// its structure is complete.
func NewDocument(root *html.Node) *Document {
	return &Document{Root: root, ready: make(chan struct{})}
}

// ParseDocument parses a complete page. The returned document is already
// ready.
func ParseDocument(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	doc := NewDocument(root)
	doc.MarkReady()
	return doc, nil
}

// MarkReady signals that the document can be traversed. Further calls are
// no-ops.
func (d *Document) MarkReady() {
	d.once.Do(func() { close(d.ready) })
}

// Ready is closed once the document is ready.
func (d *Document) Ready() <-chan struct{} {
	return d.ready
}

// IsReady reports whether MarkReady has been called.
func (d *Document) IsReady() bool {
	select {
	case <-d.ready:
		return true
	default:
		return false
	}
}

// OnReady posts fn to the loop once doc is ready. It never runs fn
// synchronously: even for a ready document fn waits at least one loop tick,
// which lets players registered later in the same tick be found.
func OnReady(ctx context.Context, l *Loop, doc *Document, fn func()) {
	if doc.IsReady() {
		l.Post(fn)
		return
	}
	go func() {
		select {
		case <-doc.Ready():
			l.Post(fn)
		case <-ctx.Done():
		}
	}()
}
