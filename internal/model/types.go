// Package model holds the data types that flow between the detection engine's
// components: content items pulled from targets, findings they produce, and
// the scan-level records built around them.
package model

import (
	"strconv"
	"time"

	"github.com/skillscan/skillscan/internal/rules"
)

// FileType is the logical content classification a ContentItem carries.
type FileType string

const (
	FileTypeMarkdown   FileType = "markdown"
	FileTypeJSON       FileType = "json"
	FileTypeManifest   FileType = "manifest"
	FileTypePython     FileType = "python"
	FileTypeTypeScript FileType = "typescript"
	FileTypeJavaScript FileType = "javascript"
	FileTypeBash       FileType = "bash"
	FileTypeBinary     FileType = "binary"
	FileTypeText       FileType = "text"
)

// ContentItem is the uniform scannable unit, whether it originated as a local
// file or a virtualized MCP object.
type ContentItem struct {
	VirtualPath string
	FileType    FileType
	Content     string
	OriginMeta  map[string]string
}

// TargetKind identifies the provenance of a Target for reporting purposes.
type TargetKind string

const (
	TargetKindSkill        TargetKind = "skill"
	TargetKindExtension    TargetKind = "extension"
	TargetKindIDEExtension TargetKind = "ide-extension"
	TargetKindMCP          TargetKind = "mcp"
	TargetKindPath         TargetKind = "path"
)

// Target is an opaque producer of ContentItems, tagged by kind.
type Target struct {
	Kind TargetKind
	Name string
	Path string
	Meta map[string]string
}

// Finding is one instance of a rule firing against a ContentItem.
type Finding struct {
	RuleID      string
	Severity    rules.Severity
	Category    string
	Source      rules.Source
	Message     string
	Remediation string
	File        string
	Line        int // 0 means "no line", since line numbers are 1-indexed
	Column      int
	Confidence  *float64

	// MatchLength and EntropyBits feed the confidence formula; they are
	// not part of a Finding's public identity (Fingerprint ignores them).
	MatchLength int
	EntropyBits float64
}

// Fingerprint is the de-duplication / diff identity of a Finding:
// (rule_id, file, line_or_empty, message).
func (f Finding) Fingerprint() string {
	line := ""
	if f.Line > 0 {
		line = strconv.Itoa(f.Line)
	}
	return f.RuleID + "\x00" + f.File + "\x00" + line + "\x00" + f.Message
}

// ScanResult is the immutable outcome of one orchestrator run.
type ScanResult struct {
	Targets      []Target
	Findings     []Finding
	ScannedFiles int
	ElapsedMS    int64
}

// CacheEntry is the content-addressed cache's persisted payload.
type CacheEntry struct {
	ContentHash string
	RuleVersion string
	CreatedAt   time.Time
	Findings    []Finding
}

// ScanRecord is the on-disk envelope around a ScanResult in the Result Store.
type ScanRecord struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	RuleVersion string
	Options     map[string]string
	Result      ScanResult
}

// DiffResult partitions the fingerprints of two ScanRecords.
type DiffResult struct {
	BaselineID      string
	CurrentID       string
	Added           []Finding
	Removed         []Finding
	Unchanged       []Finding
	SeverityChanged []SeverityChange
}

// SeverityChange pairs a finding's old and new severity across two scans,
// matched by fingerprint ignoring severity.
type SeverityChange struct {
	Before Finding
	After  Finding
}
