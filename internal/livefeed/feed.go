package livefeed

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/vk/leanfront/internal/ctxlog"
	"github.com/vk/leanfront/internal/player"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
	"golang.org/x/net/html"
)

// DefaultEvent is the event name carrying fragment updates.
const DefaultEvent = "enhance"

// DefaultConnectTimeout bounds the wait for the initial connection.
const DefaultConnectTimeout = 15 * time.Second

// ErrTargetNotFound is returned when an update names an element id the
// document does not contain.
var ErrTargetNotFound = errors.New("target element not found")

var (
	targetExpr = jp.C("target")
	htmlExpr   = jp.C("html")
)

// Config describes the feed endpoint.
type Config struct {
	URL                string
	Namespace          string
	Event              string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// Update is one pushed fragment: HTML that replaces the children of the
// element whose id is Target.
type Update struct {
	Target string
	HTML   string
}

// Feed applies pushed updates to a document on the dispatcher's loop.
type Feed struct {
	cfg        Config
	doc        *player.Document
	dispatcher *player.Dispatcher
	loop       *player.Loop

	mu   sync.Mutex
	sock *socket.Socket
}

// New creates a Feed. Nothing connects until Connect is called.
func New(cfg Config, doc *player.Document, d *player.Dispatcher, l *player.Loop) *Feed {
	if cfg.Event == "" {
		cfg.Event = DefaultEvent
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	return &Feed{cfg: cfg, doc: doc, dispatcher: d, loop: l}
}

// Connect opens the socket and blocks until it is connected, the context is
// cancelled, or the connect timeout passes.
func (f *Feed) Connect(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("component", "livefeed", "url", f.cfg.URL)

	parsedURL, err := url.Parse(f.cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if f.cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(f.cfg.Namespace, opts)

	connectChan := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Live feed connected.", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		connectChan <- connectError(errs...)
	})
	io.On(types.EventName(f.cfg.Event), f.Handler(ctx))

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(f.cfg.ConnectTimeout):
		io.Disconnect()
		return fmt.Errorf("timed out after %v waiting for socket.io connection", f.cfg.ConnectTimeout)
	}

	f.mu.Lock()
	f.sock = io
	f.mu.Unlock()
	return nil
}

// Close disconnects the socket if it is open.
func (f *Feed) Close() {
	f.mu.Lock()
	io := f.sock
	f.sock = nil
	f.mu.Unlock()
	if io != nil {
		io.Disconnect()
	}
}

// Handler returns the event listener for update events. Decoding happens on
// the socket goroutine; the swap is posted to the loop and the swapped
// element is then handed to the dispatcher as enhanced content.
func (f *Feed) Handler(ctx context.Context) func(...any) {
	logger := ctxlog.FromContext(ctx).With("component", "livefeed")
	enhance := f.dispatcher.EnhanceFunc(ctx)
	return func(data ...any) {
		u, err := DecodeUpdate(data...)
		if err != nil {
			logger.Warn("Ignoring malformed update.", "error", err)
			return
		}
		f.loop.Post(func() {
			el, err := Apply(f.doc.Root, u)
			if err != nil {
				logger.Warn("Update not applied.", "target", u.Target, "error", err)
				return
			}
			enhance(el)
		})
	}
}

// connectError turns connect_error arguments into an error. The event may
// arrive without arguments.
func connectError(errs ...any) error {
	if len(errs) == 0 {
		return errors.New("connect_error without details")
	}
	if err, ok := errs[0].(error); ok && err != nil {
		return err
	}
	return fmt.Errorf("%v", errs[0])
}

// DecodeUpdate reads an update from event arguments. The first argument is
// either an object or a JSON string encoding one.
func DecodeUpdate(data ...any) (Update, error) {
	if len(data) == 0 {
		return Update{}, errors.New("update event carried no payload")
	}
	payload := data[0]
	if s, ok := payload.(string); ok {
		v, err := oj.ParseString(s)
		if err != nil {
			return Update{}, fmt.Errorf("failed to parse update: %w", err)
		}
		payload = v
	}
	if _, ok := payload.(map[string]any); !ok {
		return Update{}, fmt.Errorf("update must be an object, got %T", payload)
	}
	target, _ := targetExpr.First(payload).(string)
	if target == "" {
		return Update{}, errors.New("update has no target")
	}
	markup, ok := htmlExpr.First(payload).(string)
	if !ok {
		return Update{}, errors.New("update has no html")
	}
	return Update{Target: target, HTML: markup}, nil
}

// Apply replaces the children of the element with id u.Target under root
// and returns that element.
func Apply(root *html.Node, u Update) (*html.Node, error) {
	el := byID(root, u.Target)
	if el == nil {
		return nil, fmt.Errorf("%w: %q", ErrTargetNotFound, u.Target)
	}
	nodes, err := html.ParseFragment(strings.NewReader(u.HTML), el)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fragment: %w", err)
	}
	for c := el.FirstChild; c != nil; {
		next := c.NextSibling
		el.RemoveChild(c)
		c = next
	}
	for _, n := range nodes {
		el.AppendChild(n)
	}
	return el, nil
}

func byID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := byID(c, id); found != nil {
			return found
		}
	}
	return nil
}
