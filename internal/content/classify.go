// Package content adapts local files and remote MCP objects into
// model.ContentItems, classifying each by logical file type.
package content

import (
	"path/filepath"
	"strings"

	"github.com/skillscan/skillscan/internal/model"
)

// skippedExtensions are archive formats that are never scanned, regardless
// of how deep a target walk finds them.
var skippedExtensions = map[string]bool{
	".crx": true,
	".xpi": true,
	".zip": true,
}

var extensionTypes = map[string]model.FileType{
	".md":   model.FileTypeMarkdown,
	".mdx":  model.FileTypeMarkdown,
	".txt":  model.FileTypeMarkdown,
	".rst":  model.FileTypeMarkdown,
	".yaml": model.FileTypeMarkdown,
	".yml":  model.FileTypeMarkdown,
	".toml": model.FileTypeMarkdown,
	".ini":  model.FileTypeMarkdown,
	".cfg":  model.FileTypeMarkdown,
	".conf": model.FileTypeMarkdown,

	".json": model.FileTypeJSON,

	".py": model.FileTypePython,

	".ts":   model.FileTypeTypeScript,
	".tsx":  model.FileTypeTypeScript,
	".d.ts": model.FileTypeTypeScript,

	".js":   model.FileTypeJavaScript,
	".mjs":  model.FileTypeJavaScript,
	".cjs":  model.FileTypeJavaScript,
	".jsx":  model.FileTypeJavaScript,

	".sh":   model.FileTypeBash,
	".bash": model.FileTypeBash,

	".exe":   model.FileTypeBinary,
	".bin":   model.FileTypeBinary,
	".dll":   model.FileTypeBinary,
	".so":    model.FileTypeBinary,
	".dylib": model.FileTypeBinary,
	".jar":   model.FileTypeBinary,
}

// pythonFallbackExtensions fold to "python" because their syntax is close
// enough for regex pattern matching. This mapping is observed, not
// extrapolated: do not add new languages to this list.
var pythonFallbackExtensions = map[string]bool{
	".c": true, ".h": true, ".cpp": true, ".cc": true, ".hpp": true,
	".go":   true,
	".java": true,
	".rs":   true,
	".kt":   true, ".kts": true,
	".swift": true,
	".rb":    true,
}

// Skipped reports whether path names an archive extension that must never
// be scanned, regardless of its content.
func Skipped(path string) bool {
	return skippedExtensions[strings.ToLower(filepath.Ext(path))]
}

// Classify maps a file's basename and extension to its logical FileType,
// following the exact anchors the rule corpus expects.
func Classify(path string) model.FileType {
	base := filepath.Base(path)
	switch base {
	case "SKILL.md":
		return model.FileTypeMarkdown
	case "manifest.json":
		return model.FileTypeManifest
	case "package.json":
		return model.FileTypeJSON
	}

	lower := strings.ToLower(base)
	if strings.HasSuffix(lower, ".d.ts") {
		return model.FileTypeTypeScript
	}

	ext := strings.ToLower(filepath.Ext(base))
	if ft, ok := extensionTypes[ext]; ok {
		return ft
	}
	if pythonFallbackExtensions[ext] {
		return model.FileTypePython
	}
	return model.FileTypeText
}
