package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/leanfront/internal/config"
	"github.com/vk/leanfront/internal/ctxlog"
	"github.com/vk/leanfront/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// fileRoot decodes all possible top-level blocks from any file.
type fileRoot struct {
	Frontend     *frontendBlock      `hcl:"frontend,block"`
	Stylesheets  []*assetBlock       `hcl:"stylesheet,block"`
	Scripts      []*assetBlock       `hcl:"script,block"`
	BrowserCalls []*browserCallBlock `hcl:"browser_call,block"`
	Remain       hcl.Body            `hcl:",remain"`
}

type frontendBlock struct {
	Widgets []string `hcl:"widgets,optional"`
	FSRoot  string   `hcl:"fs_root,optional"`
	WebRoot string   `hcl:"web_root,optional"`
}

// assetBlock keeps its body raw: attribute presence matters.
type assetBlock struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

type browserCallBlock struct {
	When    string         `hcl:"when,label"`
	Pattern string         `hcl:"pattern"`
	Args    hcl.Expression `hcl:"args,optional"`
}

// Load parses every .hcl file under paths and merges them in walk order.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.FindFiles(".hcl", paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to find configuration files: %w", err)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	model := &config.Model{}
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		if err := l.merge(ctx, model, &root); err != nil {
			return nil, fmt.Errorf("in %s: %w", file, err)
		}
	}

	logger.Debug("HCL loading complete.",
		"stylesheets", len(model.Stylesheets),
		"scripts", len(model.Scripts),
		"browser_calls", len(model.BrowserCalls),
		"widgets", len(model.Frontend.Widgets),
	)
	return model, nil
}

func (l *Loader) merge(ctx context.Context, model *config.Model, root *fileRoot) error {
	if fb := root.Frontend; fb != nil {
		model.Frontend.Widgets = append(model.Frontend.Widgets, fb.Widgets...)
		if fb.FSRoot != "" {
			model.Frontend.FSRoot = fb.FSRoot
		}
		if fb.WebRoot != "" {
			model.Frontend.WebRoot = fb.WebRoot
		}
	}
	for _, b := range root.Stylesheets {
		item, err := translateAsset(ctx, b)
		if err != nil {
			return fmt.Errorf("stylesheet %q: %w", b.Name, err)
		}
		model.Stylesheets = append(model.Stylesheets, item)
	}
	for _, b := range root.Scripts {
		item, err := translateAsset(ctx, b)
		if err != nil {
			return fmt.Errorf("script %q: %w", b.Name, err)
		}
		model.Scripts = append(model.Scripts, item)
	}
	for _, b := range root.BrowserCalls {
		call, err := translateBrowserCall(ctx, b)
		if err != nil {
			return fmt.Errorf("browser_call %q: %w", b.Pattern, err)
		}
		model.BrowserCalls = append(model.BrowserCalls, call)
	}
	return nil
}
