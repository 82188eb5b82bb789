package hcl

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vk/leanfront/internal/asset"
	"github.com/vk/leanfront/internal/config"
	"github.com/vk/leanfront/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// translateAsset converts a stylesheet or script block into an asset.Item.
// Only attributes actually written in the block are set; "when" in
// particular stays nil when absent so the lean default can apply later.
func translateAsset(ctx context.Context, b *assetBlock) (asset.Item, error) {
	logger := ctxlog.FromContext(ctx)
	item := asset.Item{Name: b.Name}

	attrs, diags := b.Body.JustAttributes()
	if diags.HasErrors() {
		return item, diags
	}

	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return item, diags
		}

		switch name {
		case "when":
			var s string
			if err := decode(ctx, val, cty.String, &s); err != nil {
				return item, fmt.Errorf("attribute %q: %w", name, err)
			}
			w := asset.When(s)
			if s != "" {
				parsed, err := asset.ParseWhen(s)
				if err != nil {
					return item, err
				}
				w = parsed
			}
			item.When = &w
		case "minify":
			if val.IsNull() {
				continue
			}
			var m bool
			if err := decode(ctx, val, cty.Bool, &m); err != nil {
				return item, fmt.Errorf("attribute %q: %w", name, err)
			}
			item.Minify = &m
		case "fs":
			if err := decode(ctx, val, cty.String, &item.FS); err != nil {
				return item, fmt.Errorf("attribute %q: %w", name, err)
			}
		case "web":
			if err := decode(ctx, val, cty.String, &item.Web); err != nil {
				return item, fmt.Errorf("attribute %q: %w", name, err)
			}
		default:
			return item, fmt.Errorf("unsupported attribute %q (want when, minify, fs or web)", name)
		}
	}

	logger.Debug("Translated asset block.", "name", item.Name, "when_set", item.When != nil)
	return item, nil
}

// translateBrowserCall converts a browser_call block, encoding each
// argument as JSON.
func translateBrowserCall(ctx context.Context, b *browserCallBlock) (config.BrowserCall, error) {
	when, err := asset.ParseWhen(b.When)
	if err != nil {
		return config.BrowserCall{}, err
	}
	call := config.BrowserCall{When: when, Pattern: b.Pattern}

	if b.Args == nil {
		return call, nil
	}
	val, diags := b.Args.Value(nil)
	if diags.HasErrors() {
		return call, diags
	}
	if val.IsNull() {
		return call, nil
	}
	ty := val.Type()
	if !ty.IsTupleType() && !ty.IsListType() {
		return call, fmt.Errorf("args must be a list, got %s", ty.FriendlyName())
	}

	for i, it := 0, val.ElementIterator(); it.Next(); i++ {
		_, v := it.Element()
		gv, err := toGo(v)
		if err != nil {
			return call, fmt.Errorf("argument %d: %w", i, err)
		}
		encoded, err := json.Marshal(gv)
		if err != nil {
			return call, fmt.Errorf("argument %d: %w", i, err)
		}
		call.Args = append(call.Args, encoded)
	}
	ctxlog.FromContext(ctx).Debug("Translated browser call.", "when", when, "args", len(call.Args))
	return call, nil
}
