package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads every configuration file found under paths, in order, and
	// merges them into a single Model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
