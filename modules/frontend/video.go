package frontend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/vk/leanfront/internal/ctxlog"
	"github.com/vk/leanfront/internal/player"
	"github.com/vk/leanfront/internal/request"
	"golang.org/x/net/html"
)

// DefaultOEmbedEndpoint answers {"html": "<iframe ...>"} for a video URL.
const DefaultOEmbedEndpoint = "/modules/apostrophe-oembed/query"

// Classes set on the video widget as it progresses.
const (
	ClassVideoReady  = "apos-video-ready"
	ClassVideoFailed = "apos-video-failed"
)

// AttrVideoPlayer marks the element inside the widget that receives the
// embed markup. Without it, the widget element itself is used.
const AttrVideoPlayer = "data-apos-video-player"

var (
	videoURL  = jp.C("video").C("url")
	embedHTML = jp.C("html")
)

// VideoPlayer fetches embed markup for the widget's video and injects it.
// Flat values under the "oembed" key of the widget options, such as
// maxwidth, are passed along with the video URL.
// The injection happens in the request callback, so with a scheduled client
// it runs on the dispatcher's loop.
func VideoPlayer(client *request.Client, endpoint string) player.Player {
	return func(ctx context.Context, el *html.Node, data, options map[string]any) error {
		url, _ := videoURL.First(data).(string)
		if url == "" {
			return errors.New("widget has no video.url")
		}
		logger := ctxlog.FromContext(ctx).With("widget", VideoWidget, "url", url)

		query := player.Assign(nil, oembedOptions(options), map[string]any{"url": url})
		client.Get(endpoint, query, func(err error, resp any) {
			if err != nil {
				logger.Warn("Video embed lookup failed.", "error", err)
				player.AddClass(el, ClassVideoFailed)
				return
			}
			markup, _ := embedHTML.First(resp).(string)
			if err := inject(target(el), markup); err != nil {
				logger.Warn("Video embed markup rejected.", "error", err)
				player.AddClass(el, ClassVideoFailed)
				return
			}
			player.AddClass(el, ClassVideoReady)
		})
		return nil
	}
}

func oembedOptions(options map[string]any) map[string]any {
	m, _ := options["oembed"].(map[string]any)
	return m
}

func target(el *html.Node) *html.Node {
	var found *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil && found == nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				for _, a := range c.Attr {
					if a.Key == AttrVideoPlayer {
						found = c
						return
					}
				}
			}
			walk(c)
		}
	}
	walk(el)
	if found == nil {
		return el
	}
	return found
}

// inject replaces the children of parent with the parsed markup.
func inject(parent *html.Node, markup string) error {
	if markup == "" {
		return errors.New("empty embed markup")
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), parent)
	if err != nil {
		return fmt.Errorf("failed to parse embed markup: %w", err)
	}
	for c := parent.FirstChild; c != nil; {
		next := c.NextSibling
		parent.RemoveChild(c)
		c = next
	}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
	return nil
}
