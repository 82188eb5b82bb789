package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/vk/leanfront/internal/livefeed"
	"github.com/vk/leanfront/internal/player"
	"github.com/vk/leanfront/internal/request"
	"golang.org/x/net/html"
)

func (a *App) enhanceFile(ctx context.Context) error {
	f, err := os.Open(a.config.EnhancePath)
	if err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()
	return a.Enhance(ctx, f, a.outW)
}

// Enhance parses the HTML document in r, plays its widgets with the players
// of the enabled front-end widgets, applies live feed updates if a feed is
// configured, and renders the document to w once the settle period is over.
func (a *App) Enhance(ctx context.Context, r io.Reader, w io.Writer) error {
	doc, err := player.ParseDocument(r)
	if err != nil {
		return err
	}
	loop := player.NewLoop()

	opts := []request.Option{request.WithScheduler(loop), request.WithLogger(a.logger)}
	if a.config.Origin != "" {
		origin, err := url.Parse(a.config.Origin)
		if err != nil {
			return fmt.Errorf("invalid origin: %w", err)
		}
		opts = append(opts, request.WithBaseURL(origin))
	}
	players := player.NewRegistry()
	a.frontend.RegisterPlayers(players, request.New(opts...))
	d := player.New(doc, players)

	runCtx, cancel := context.WithTimeout(ctx, a.config.Settle)
	defer cancel()

	if a.config.FeedURL != "" {
		feed := livefeed.New(livefeed.Config{URL: a.config.FeedURL}, doc, d, loop)
		if err := feed.Connect(runCtx); err != nil {
			return fmt.Errorf("failed to connect live feed: %w", err)
		}
		defer feed.Close()
	}

	d.Start(runCtx, loop)
	a.logger.Debug("Enhancing document.", "settle", a.config.Settle, "players", players.Types())
	if err := loop.Run(runCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return html.Render(w, doc.Root)
}
