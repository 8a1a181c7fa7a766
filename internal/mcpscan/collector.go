// Package mcpscan is the MCP Collector & Virtualizer: a JSON-RPC client
// over HTTP that retrieves tools/prompts/resources/instructions from an MCP
// server and projects them into model.ContentItems.
package mcpscan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/skillscan/skillscan/internal/model"
)

// DefaultTimeout is the per-call JSON-RPC request timeout, configurable via
// Options.Timeout.
const DefaultTimeout = 30 * time.Second

// DefaultResourceByteCap bounds how much of a resource's bytes are read.
const DefaultResourceByteCap = 1 * 1024 * 1024

// methodNotFound is the JSON-RPC error code that degrades a list call to
// "empty list" rather than a transport error.
const methodNotFound = -32601

// Categories selects which MCP list calls a collection issues.
type Categories struct {
	Tools         bool
	Prompts       bool
	Resources     bool
	Instructions  bool
	ReadResources bool
}

// DefaultCategories is the default object scope a collection walks:
// tools, prompts, and server instructions, but not resource bodies.
func DefaultCategories() Categories {
	return Categories{Tools: true, Prompts: true, Instructions: true}
}

// Options configures one collection run against a single MCP server.
type Options struct {
	Timeout          time.Duration
	BearerToken      string
	Headers          map[string]string
	AllowedMIMETypes map[string]bool
	ResourceByteCap  int
	Categories       Categories
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.ResourceByteCap <= 0 {
		o.ResourceByteCap = DefaultResourceByteCap
	}
	if o.AllowedMIMETypes == nil {
		o.AllowedMIMETypes = map[string]bool{
			"text/plain":       true,
			"text/markdown":    true,
			"text/html":        true,
			"application/json": true,
		}
	}
	return o
}

// CollectionError records a per-server failure. The orchestrator logs it and
// keeps the target with zero items; the error is not recorded in the
// target's metadata.
type CollectionError struct {
	ServerURL string
	Err       error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("mcp collection failed for %s: %v", e.ServerURL, e.Err)
}

func (e *CollectionError) Unwrap() error { return e.Err }

// Collect connects to serverURL, runs the initialize handshake, and
// virtualizes every object in the requested categories into ContentItems.
func Collect(ctx context.Context, serverURL string, opts Options, logger *zap.Logger) ([]model.ContentItem, error) {
	opts = opts.withDefaults()

	host, err := hostOf(serverURL)
	if err != nil {
		return nil, &CollectionError{ServerURL: serverURL, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	transportOpts := []transport.StreamableHTTPCOption{transport.WithHTTPTimeout(opts.Timeout)}
	headers := map[string]string{}
	for k, v := range opts.Headers {
		headers[k] = v
	}
	if opts.BearerToken != "" {
		headers["Authorization"] = "Bearer " + opts.BearerToken
	}
	if len(headers) > 0 {
		transportOpts = append(transportOpts, transport.WithHTTPHeaders(headers))
	}

	c, err := client.NewStreamableHttpClient(serverURL, transportOpts...)
	if err != nil {
		return nil, &CollectionError{ServerURL: serverURL, Err: err}
	}
	if err := c.Start(ctx); err != nil {
		return nil, &CollectionError{ServerURL: serverURL, Err: err}
	}
	defer func() { _ = c.Close() }()

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "skillscan", Version: "1.0.0"}
	initResult, err := c.Initialize(ctx, initReq)
	if err != nil {
		return nil, &CollectionError{ServerURL: serverURL, Err: err}
	}

	var items []model.ContentItem

	if opts.Categories.Instructions && initResult.Instructions != "" {
		items = append(items, model.ContentItem{
			VirtualPath: fmt.Sprintf("mcp://%s/instructions.md", host),
			FileType:    model.FileTypeMarkdown,
			Content:     initResult.Instructions,
			OriginMeta:  map[string]string{"server_url": serverURL},
		})
	}

	if opts.Categories.Tools {
		tools, err := listTools(ctx, c)
		if err != nil {
			logger.Warn("mcpscan: tools/list failed", zap.String("server", serverURL), zap.Error(err))
		}
		for _, t := range tools {
			items = append(items, virtualizeTool(host, t))
		}
	}

	if opts.Categories.Prompts {
		prompts, err := listPrompts(ctx, c)
		if err != nil {
			logger.Warn("mcpscan: prompts/list failed", zap.String("server", serverURL), zap.Error(err))
		}
		for _, p := range prompts {
			items = append(items, virtualizePrompt(host, p))
		}
	}

	if opts.Categories.Resources {
		resources, err := listResources(ctx, c)
		if err != nil {
			logger.Warn("mcpscan: resources/list failed", zap.String("server", serverURL), zap.Error(err))
		}
		for _, r := range resources {
			items = append(items, virtualizeResource(ctx, c, host, r, opts, logger))
		}
	}

	return items, nil
}

func hostOf(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", err
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("mcpscan: server URL %q has no host", serverURL)
	}
	return u.Hostname(), nil
}

// degradeMethodNotFound treats a -32601 JSON-RPC error as "empty list";
// any other error is returned unchanged so the caller can log it. mcp-go
// surfaces JSON-RPC errors with the numeric code embedded in Error()'s
// text, so matching on that is more robust across client versions than
// asserting a concrete error type.
func degradeMethodNotFound(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), fmt.Sprintf("%d", methodNotFound)) {
		return nil
	}
	return err
}

func listTools(ctx context.Context, c *client.Client) ([]mcp.Tool, error) {
	res, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		if degradeMethodNotFound(err) == nil {
			return nil, nil
		}
		return nil, err
	}
	return res.Tools, nil
}

func listPrompts(ctx context.Context, c *client.Client) ([]mcp.Prompt, error) {
	res, err := c.ListPrompts(ctx, mcp.ListPromptsRequest{})
	if err != nil {
		if degradeMethodNotFound(err) == nil {
			return nil, nil
		}
		return nil, err
	}
	return res.Prompts, nil
}

func listResources(ctx context.Context, c *client.Client) ([]mcp.Resource, error) {
	res, err := c.ListResources(ctx, mcp.ListResourcesRequest{})
	if err != nil {
		if degradeMethodNotFound(err) == nil {
			return nil, nil
		}
		return nil, err
	}
	return res.Resources, nil
}

func virtualizeTool(host string, t mcp.Tool) model.ContentItem {
	var schema string
	if b, err := json.Marshal(t.InputSchema); err == nil {
		schema = string(b)
	}
	content := fmt.Sprintf("# %s\n\n%s\n\nInput schema:\n%s", t.Name, t.Description, schema)
	return model.ContentItem{
		VirtualPath: fmt.Sprintf("mcp://%s/tools/%s", host, t.Name),
		FileType:    model.FileTypeMarkdown,
		Content:     content,
	}
}

func virtualizePrompt(host string, p mcp.Prompt) model.ContentItem {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n", p.Name, p.Description)
	for _, arg := range p.Arguments {
		fmt.Fprintf(&b, "\n- argument %s (required=%v): %s", arg.Name, arg.Required, arg.Description)
	}
	return model.ContentItem{
		VirtualPath: fmt.Sprintf("mcp://%s/prompts/%s", host, p.Name),
		FileType:    model.FileTypeMarkdown,
		Content:     b.String(),
	}
}

func virtualizeResource(ctx context.Context, c *client.Client, host string, r mcp.Resource, opts Options, logger *zap.Logger) model.ContentItem {
	fileType := model.FileTypeMarkdown
	if r.MIMEType == "application/json" {
		fileType = model.FileTypeJSON
	}

	item := model.ContentItem{
		VirtualPath: fmt.Sprintf("mcp://%s/resources/%s", host, r.Name),
		FileType:    fileType,
		Content:     fmt.Sprintf("# %s\n\n%s\n\nURI: %s\nMIME type: %s", r.Name, r.Description, r.URI, r.MIMEType),
	}

	if !opts.Categories.ReadResources || !opts.AllowedMIMETypes[r.MIMEType] {
		return item
	}

	res, err := c.ReadResource(ctx, mcp.ReadResourceRequest{Params: mcp.ReadResourceParams{URI: r.URI}})
	if err != nil {
		logger.Warn("mcpscan: resources/read failed", zap.String("uri", r.URI), zap.Error(err))
		return item
	}

	var body strings.Builder
	for _, c := range res.Contents {
		if tc, ok := c.(mcp.TextResourceContents); ok {
			body.WriteString(tc.Text)
		}
	}
	content := body.String()
	if len(content) > opts.ResourceByteCap {
		content = content[:opts.ResourceByteCap]
	}
	if content != "" {
		item.Content = content
	}
	return item
}
