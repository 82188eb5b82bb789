package app

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/leanfront/internal/asset"
)

// DefaultSettle is how long enhance mode lets players and their requests
// run before the document is rendered.
const DefaultSettle = 2 * time.Second

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPaths []string // hcl files or directories

	// Scene, when set, prints that scene's manifest and exits.
	Scene string
	// Minifiable, when set, keeps only assets whose minify flag matches.
	Minifiable *bool

	// EnhancePath, when set, enhances that HTML file and prints the result.
	EnhancePath string
	Origin      string // base URL for player requests
	FeedURL     string // optional socket.io feed of fragment updates
	Settle      time.Duration

	LogFormat  string
	LogLevel   string
	ListenPort int
}

// NewConfig validates cfg and fills defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.ConfigPaths) == 0 {
		return nil, errors.New("at least one config path is required")
	}
	if cfg.Scene != "" {
		if _, err := asset.ParseScene(cfg.Scene); err != nil {
			return nil, err
		}
	}
	if cfg.Scene != "" && cfg.EnhancePath != "" {
		return nil, errors.New("scene and enhance modes are mutually exclusive")
	}
	if cfg.Origin != "" {
		u, err := url.Parse(cfg.Origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid origin %q: must be an absolute URL", cfg.Origin)
		}
	}
	if cfg.Settle <= 0 {
		cfg.Settle = DefaultSettle
	}
	return &cfg, nil
}
