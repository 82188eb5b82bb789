package player

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/vk/leanfront/internal/ctxlog"
	"golang.org/x/net/html"
)

// Markup attributes of the widget contract.
const (
	AttrWidget  = "data-apos-widget"
	AttrData    = "data"
	AttrOptions = "data-options"
)

var typeExpr = jp.C("type")

var errMissingAttr = errors.New("attribute missing")

// ParseError reports a widget whose stored data could not be used.
type ParseError struct {
	Attr string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("widget %q attribute: %v", e.Attr, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// PlayerError reports a player that returned an error or panicked.
type PlayerError struct {
	Type string
	Err  error
}

func (e *PlayerError) Error() string {
	return fmt.Sprintf("player for widget type %q failed: %v", e.Type, e.Err)
}

func (e *PlayerError) Unwrap() error { return e.Err }

// Report summarises one RunPlayers pass.
type Report struct {
	// Played counts widgets handed to a player.
	Played int
	// Unhandled counts widgets whose type has no player.
	Unhandled int
	// Skipped counts widgets already played by an earlier pass.
	Skipped int
	// Failures holds one ParseError or PlayerError per failed widget.
	Failures []error
}

// Dispatcher owns the played state of a document's widgets.
type Dispatcher struct {
	doc     *Document
	players *Registry

	mu     sync.Mutex
	played map[*html.Node]struct{}
	loop   *Loop
}

// New creates a Dispatcher for doc using players.
func New(doc *Document, players *Registry) *Dispatcher {
	return &Dispatcher{
		doc:     doc,
		players: players,
		played:  make(map[*html.Node]struct{}),
	}
}

// Start schedules the initial scan of the whole document on l, once the
// document is ready and never sooner than the next loop tick. Later Enhance
// notifications are also run on l.
func (d *Dispatcher) Start(ctx context.Context, l *Loop) {
	d.mu.Lock()
	d.loop = l
	d.mu.Unlock()

	OnReady(ctx, l, d.doc, func() {
		d.RunPlayers(ctx, nil)
	})
}

// Enhance re-scans root after new content was injected into it, such as an
// AJAX swap or an in-place edit. Before Start it scans immediately.
func (d *Dispatcher) Enhance(ctx context.Context, root *html.Node) {
	d.mu.Lock()
	l := d.loop
	d.mu.Unlock()

	if l == nil {
		d.RunPlayers(ctx, root)
		return
	}
	l.Post(func() { d.RunPlayers(ctx, root) })
}

// EnhanceFunc adapts Enhance to a notification callback.
func (d *Dispatcher) EnhanceFunc(ctx context.Context) func(*html.Node) {
	return func(root *html.Node) { d.Enhance(ctx, root) }
}

// Played reports whether el has been dispatched.
func (d *Dispatcher) Played(el *html.Node) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.played[el]
	return ok
}

// RunPlayers plays every widget under root that has not been played yet, in
// document order. A nil root means the whole document. If root is itself a
// widget with a non-empty marker it is played first. The widgets are
// collected before any player runs, so a player that moves or replaces its
// element does not hide the widgets after it. Failures are isolated per
// widget and reported; RunPlayers itself never fails.
func (d *Dispatcher) RunPlayers(ctx context.Context, root *html.Node) Report {
	logger := ctxlog.FromContext(ctx)
	var report Report

	for _, el := range d.collect(root) {
		d.play(ctx, el, &report)
	}

	logger.Debug("Widget scan finished.",
		"played", report.Played,
		"unhandled", report.Unhandled,
		"skipped", report.Skipped,
		"failed", len(report.Failures),
	)
	return report
}

// collect snapshots the widgets a scan of root will visit: root first when
// its marker is non-empty, then every descendant carrying the marker, in
// pre-order.
func (d *Dispatcher) collect(root *html.Node) []*html.Node {
	var widgets []*html.Node
	if root == nil {
		root = d.doc.Root
	} else if isWidgetRoot(root) {
		widgets = append(widgets, root)
	}
	if root == nil {
		return widgets
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if isWidget(c) {
				widgets = append(widgets, c)
			}
			walk(c)
		}
	}
	walk(root)
	return widgets
}

// markPlayed flips the widget to played and reports whether it was not
// played before.
func (d *Dispatcher) markPlayed(el *html.Node) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.played[el]; ok {
		return false
	}
	d.played[el] = struct{}{}
	return true
}

func (d *Dispatcher) play(ctx context.Context, el *html.Node, report *Report) {
	// Marked before the player runs, so a nested scan or a failing player
	// can never cause a second invocation.
	if !d.markPlayed(el) {
		report.Skipped++
		return
	}
	logger := ctxlog.FromContext(ctx)

	data, widgetType, err := parseData(el)
	if err != nil {
		logger.Warn("Skipping widget with malformed data.", "error", err)
		report.Failures = append(report.Failures, err)
		return
	}
	options, err := parseOptions(el)
	if err != nil {
		logger.Warn("Skipping widget with malformed options.", "type", widgetType, "error", err)
		report.Failures = append(report.Failures, err)
		return
	}

	p, ok := d.players.Lookup(widgetType)
	if !ok {
		report.Unhandled++
		return
	}

	report.Played++
	if err := invoke(ctx, p, el, data, options); err != nil {
		perr := &PlayerError{Type: widgetType, Err: err}
		logger.Warn("Widget player failed.", "type", widgetType, "error", err)
		report.Failures = append(report.Failures, perr)
	}
}

func invoke(ctx context.Context, p Player, el *html.Node, data, options map[string]any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p(ctx, el, data, options)
}

func parseData(el *html.Node) (map[string]any, string, error) {
	raw, ok := attr(el, AttrData)
	if !ok {
		return nil, "", &ParseError{Attr: AttrData, Err: errMissingAttr}
	}
	v, err := oj.ParseString(raw)
	if err != nil {
		return nil, "", &ParseError{Attr: AttrData, Err: err}
	}
	data, ok := v.(map[string]any)
	if !ok {
		return nil, "", &ParseError{Attr: AttrData, Err: fmt.Errorf("expected an object, got %T", v)}
	}
	widgetType, ok := typeExpr.First(data).(string)
	if !ok {
		return nil, "", &ParseError{Attr: AttrData, Err: errors.New("missing string \"type\"")}
	}
	return data, widgetType, nil
}

func parseOptions(el *html.Node) (map[string]any, error) {
	raw, ok := attr(el, AttrOptions)
	if !ok {
		return nil, nil
	}
	v, err := oj.ParseString(raw)
	if err != nil {
		return nil, &ParseError{Attr: AttrOptions, Err: err}
	}
	if v == nil {
		return nil, nil
	}
	options, ok := v.(map[string]any)
	if !ok {
		return nil, &ParseError{Attr: AttrOptions, Err: fmt.Errorf("expected an object, got %T", v)}
	}
	return options, nil
}

func isWidget(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	_, ok := attr(n, AttrWidget)
	return ok
}

// isWidgetRoot applies the stricter test used for the scan root: the marker
// must have a value.
func isWidgetRoot(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	v, _ := attr(n, AttrWidget)
	return v != ""
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}
