package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vk/leanfront/internal/asset"
	"github.com/vk/leanfront/internal/ctxlog"
)

// Run executes the mode selected by the configuration: print one manifest,
// enhance a document, or serve until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")
	defer a.logger.Debug("App.Run method finished.")

	switch {
	case a.config.Scene != "":
		return a.printManifest()
	case a.config.EnhancePath != "":
		return a.enhanceFile(ctx)
	default:
		return a.serve(ctx)
	}
}

func (a *App) printManifest() error {
	scene, err := asset.ParseScene(a.config.Scene)
	if err != nil {
		return err
	}
	var opts []asset.FilterOption
	if a.config.Minifiable != nil {
		opts = append(opts, asset.Minifiable(*a.config.Minifiable))
	}
	manifest, err := a.assets.Filter(scene, opts...)
	if err != nil {
		return fmt.Errorf("failed to filter assets: %w", err)
	}
	if manifest == nil {
		manifest = []asset.Descriptor{}
	}
	enc := json.NewEncoder(a.outW)
	enc.SetIndent("", "  ")
	return enc.Encode(manifest)
}
