package mcpscan

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skillscan/skillscan/internal/match"
	"github.com/skillscan/skillscan/internal/rules"
)

func TestHostOf_ExtractsHostname(t *testing.T) {
	host, err := hostOf("https://tools.example.com:8443/mcp")
	require.NoError(t, err)
	assert.Equal(t, "tools.example.com", host)
}

func TestHostOf_RejectsHostless(t *testing.T) {
	_, err := hostOf("not-a-url")
	assert.Error(t, err)
}

func TestOptionsWithDefaults_FillsAllowlistAndCap(t *testing.T) {
	opts := Options{}.withDefaults()
	assert.Equal(t, DefaultTimeout, opts.Timeout)
	assert.Equal(t, DefaultResourceByteCap, opts.ResourceByteCap)
	assert.True(t, opts.AllowedMIMETypes["text/markdown"])
	assert.False(t, opts.AllowedMIMETypes["application/octet-stream"])
}

func TestOptionsWithDefaults_PreservesExplicitValues(t *testing.T) {
	opts := Options{Timeout: 0, ResourceByteCap: 42, AllowedMIMETypes: map[string]bool{"x/y": true}}.withDefaults()
	assert.Equal(t, 42, opts.ResourceByteCap)
	assert.True(t, opts.AllowedMIMETypes["x/y"])
	assert.False(t, opts.AllowedMIMETypes["text/markdown"])
}

func TestVirtualizeTool_ProducesMarkdownUnderToolsPath(t *testing.T) {
	item := virtualizeTool("mcp.example.com", mcp.Tool{Name: "read_file", Description: "reads a file"})
	assert.Equal(t, "mcp://mcp.example.com/tools/read_file", item.VirtualPath)
	assert.Contains(t, item.Content, "read_file")
	assert.Contains(t, item.Content, "reads a file")
}

func TestVirtualizePrompt_IncludesArguments(t *testing.T) {
	p := mcp.Prompt{
		Name:        "summarize",
		Description: "summarizes input",
		Arguments: []mcp.PromptArgument{
			{Name: "text", Description: "text to summarize", Required: true},
		},
	}
	item := virtualizePrompt("mcp.example.com", p)
	assert.Equal(t, "mcp://mcp.example.com/prompts/summarize", item.VirtualPath)
	assert.Contains(t, item.Content, "text")
	assert.Contains(t, item.Content, "required=true")
}

func TestVirtualizeTool_ScanFindsAgainstVirtualPath(t *testing.T) {
	item := virtualizeTool("mcp.example.com", mcp.Tool{
		Name:        "exec",
		Description: "Runs arbitrary shell commands",
	})
	require.Equal(t, "mcp://mcp.example.com/tools/exec", item.VirtualPath)
	require.Contains(t, item.Content, "exec")
	require.Contains(t, item.Content, "Runs arbitrary shell commands")

	doc := []byte(`
- id: shell_exec_tool
  category: command_execution
  severity: HIGH
  patterns:
    - "shell command"
  file_types: ["any"]
  description: "tool description advertises shell execution"
`)
	compiled, err := rules.Compile(doc, zap.NewNop())
	require.NoError(t, err)
	engine := rules.NewEngine(compiled)

	findings := match.Match(item, engine)
	require.Len(t, findings, 1)
	assert.Equal(t, "mcp://mcp.example.com/tools/exec", findings[0].File)
	assert.Equal(t, "shell_exec_tool", findings[0].RuleID)
}

func TestCollectionError_UnwrapsInnerError(t *testing.T) {
	inner := assert.AnError
	ce := &CollectionError{ServerURL: "https://x", Err: inner}
	assert.ErrorIs(t, ce, inner)
	assert.Contains(t, ce.Error(), "https://x")
}
