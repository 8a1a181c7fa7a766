// Package discover is the thin, swappable target enumerator: it turns CLI
// arguments (path roots, an mcp.json-style config file) into model.Targets.
// It is not part of the detection core.
package discover

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/skillscan/skillscan/internal/model"
)

// Paths turns a list of filesystem roots into path Targets, one per root.
// Each root's basename becomes the target's display name.
func Paths(roots []string) []model.Target {
	targets := make([]model.Target, 0, len(roots))
	for _, root := range roots {
		targets = append(targets, model.Target{
			Kind: model.TargetKindPath,
			Name: filepath.Base(filepath.Clean(root)),
			Path: root,
		})
	}
	return targets
}

// mcpServerEntry mirrors the subset of the Claude-Desktop-style mcp.json
// server entry this scanner can act on: a remote HTTP/SSE endpoint with
// optional static headers. stdio-launched servers (command/args) have no
// network endpoint to collect from and are skipped with a warning, since
// the MCP Collector & Virtualizer only speaks JSON-RPC over HTTP.
type mcpServerEntry struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	Command string            `json:"command,omitempty"`
}

type mcpConfigFile struct {
	MCPServers map[string]mcpServerEntry `json:"mcpServers"`
}

// ImportMCPConfig parses an mcp.json-style file and returns one mcp Target
// per remote (URL-backed) server entry. Entries with no url (stdio
// launchers) are reported via skipped but otherwise ignored.
func ImportMCPConfig(path string) (targets []model.Target, skipped []string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read mcp config %s: %w", path, err)
	}

	var cfg mcpConfigFile
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parse mcp config %s: %w", path, err)
	}

	for name, entry := range cfg.MCPServers {
		if entry.URL == "" {
			skipped = append(skipped, name)
			continue
		}
		meta := map[string]string{}
		for k, v := range entry.Headers {
			meta["header."+k] = v
		}
		targets = append(targets, model.Target{
			Kind: model.TargetKindMCP,
			Name: name,
			Path: entry.URL,
			Meta: meta,
		})
	}
	return targets, skipped, nil
}
