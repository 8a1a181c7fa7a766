// Package target turns one opaque model.Target into a ContentPlan: the set
// of ContentItems the scheduler runs the matcher and heuristics over. It is
// a thin, swappable collaborator, not part of the detection core — the
// engine only cares that a Target eventually produces ContentItems.
package target

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/skillscan/skillscan/internal/content"
	"github.com/skillscan/skillscan/internal/mcpscan"
	"github.com/skillscan/skillscan/internal/model"
	"github.com/skillscan/skillscan/internal/secretstore"
)

// ContentPlan is the set of ContentItems produced for one Target.
type ContentPlan struct {
	Items []model.ContentItem
}

// Options configures content planning across every Target kind in one scan.
type Options struct {
	MCP mcpscan.Options
	// Secrets, when non-nil, is consulted for a per-host bearer token when
	// an MCP target carries none of its own (no explicit header, no
	// Options.MCP.BearerToken). Keeps plaintext tokens out of mcp.json.
	Secrets *secretstore.Store
}

const headerMetaPrefix = "header."

// Build dispatches on t.Kind: MCP targets are collected over JSON-RPC via
// internal/mcpscan; every other kind is treated as a local path root and
// walked recursively. Per-item errors (unreadable files, a failed MCP
// collection) never abort the scan — callers treat a Build error as "this
// target contributes no findings", per the engine's propagation policy.
func Build(ctx context.Context, t model.Target, opts Options, logger *zap.Logger) (ContentPlan, error) {
	if t.Kind == model.TargetKindMCP {
		return buildMCP(ctx, t, opts, logger)
	}
	return buildLocal(t, logger)
}

func buildMCP(ctx context.Context, t model.Target, opts Options, logger *zap.Logger) (ContentPlan, error) {
	mcpOpts := opts.MCP
	if mcpOpts.Headers == nil {
		mcpOpts.Headers = map[string]string{}
	} else {
		headers := make(map[string]string, len(mcpOpts.Headers))
		for k, v := range mcpOpts.Headers {
			headers[k] = v
		}
		mcpOpts.Headers = headers
	}
	for k, v := range t.Meta {
		if name, ok := strings.CutPrefix(k, headerMetaPrefix); ok {
			mcpOpts.Headers[name] = v
		}
	}

	if mcpOpts.BearerToken == "" && mcpOpts.Headers["Authorization"] == "" && opts.Secrets != nil {
		if host, err := hostOf(t.Path); err == nil {
			if token, err := opts.Secrets.Get(host); err == nil && token != "" {
				mcpOpts.BearerToken = token
			}
		}
	}

	items, err := mcpscan.Collect(ctx, t.Path, mcpOpts, logger)
	if err != nil {
		return ContentPlan{}, err
	}
	return ContentPlan{Items: items}, nil
}

func buildLocal(t model.Target, logger *zap.Logger) (ContentPlan, error) {
	info, err := os.Stat(t.Path)
	if err != nil {
		return ContentPlan{}, fmt.Errorf("target: stat %s: %w", t.Path, err)
	}

	var items []model.ContentItem
	if !info.IsDir() {
		if item, err := readOne(t.Path, logger); err == nil {
			items = append(items, item)
		}
		return ContentPlan{Items: items}, nil
	}

	walkErr := filepath.Walk(t.Path, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			if logger != nil {
				logger.Warn("target: failed to stat path during walk, skipping", zap.String("path", path), zap.Error(err))
			}
			return nil
		}
		if fi.IsDir() {
			return nil
		}
		if item, err := readOne(path, logger); err == nil {
			items = append(items, item)
		}
		return nil
	})
	if walkErr != nil {
		return ContentPlan{Items: items}, fmt.Errorf("target: walk %s: %w", t.Path, walkErr)
	}
	return ContentPlan{Items: items}, nil
}

// readOne reads one local file into a ContentItem. A skipped or unreadable
// file is swallowed per the IOError policy: counted as "no findings", never
// propagated as a scan error.
func readOne(path string, logger *zap.Logger) (model.ContentItem, error) {
	item, err := content.ReadLocalFile(path)
	if err != nil {
		if logger != nil {
			logger.Debug("target: skipping file", zap.String("path", path), zap.Error(err))
		}
		return model.ContentItem{}, err
	}
	return item, nil
}

func hostOf(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", err
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("target: no host in %q", serverURL)
	}
	return u.Hostname(), nil
}
