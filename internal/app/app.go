package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/leanfront/internal/config"
	"github.com/vk/leanfront/internal/ctxlog"
	"github.com/vk/leanfront/internal/push"
	"github.com/vk/leanfront/internal/registry"
	"github.com/vk/leanfront/modules/frontend"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	ctx      context.Context
	config   *Config
	model    *config.Model
	assets   *push.Adapter
	frontend *frontend.Module

	httpServer *http.Server
}

// NewApp is the constructor for the main application. It loads the
// configuration, registers every configured asset and browser call, and
// returns a ready App with its own isolated logger and registry.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, cfg.ConfigPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Configuration loaded.",
		"stylesheets", len(model.Stylesheets),
		"scripts", len(model.Scripts),
		"browser_calls", len(model.BrowserCalls),
	)

	paths := registry.DefaultPaths
	if model.Frontend.FSRoot != "" {
		paths.FSRoot = model.Frontend.FSRoot
	}
	if model.Frontend.WebRoot != "" {
		paths.WebRoot = model.Frontend.WebRoot
	}
	assets := push.New(registry.New(paths))

	fm := &frontend.Module{Frontend: model.Frontend}
	for _, mod := range []push.Module{fm} {
		if err := mod.Register(assets); err != nil {
			return nil, fmt.Errorf("failed to register module: %w", err)
		}
	}
	if err := assets.PushConfigured(model.Stylesheets, model.Scripts); err != nil {
		return nil, fmt.Errorf("failed to push configured assets: %w", err)
	}
	for _, call := range model.BrowserCalls {
		if err := assets.BrowserCall(call.When, call.Pattern, call.ArgValues()...); err != nil {
			return nil, fmt.Errorf("failed to record browser call %q: %w", call.Pattern, err)
		}
	}
	logger.Debug("Assets registered.", "count", len(assets.Assets()))

	return &App{
		outW:     outW,
		logger:   logger,
		ctx:      ctx,
		config:   cfg,
		model:    model,
		assets:   assets,
		frontend: fm,
	}, nil
}

// Assets returns the application's push adapter. This is primarily for testing.
func (a *App) Assets() *push.Adapter {
	return a.assets
}
