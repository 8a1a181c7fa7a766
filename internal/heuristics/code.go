package heuristics

import (
	"regexp"

	"github.com/skillscan/skillscan/internal/lineindex"
	"github.com/skillscan/skillscan/internal/model"
	"github.com/skillscan/skillscan/internal/rules"
)

const (
	DynamicEvalFindingID       = "CODE_DYNAMIC_EVAL"
	DynamicCodeLoadFindingID   = "CODE_DYNAMIC_LOAD"
	StringBuiltCommandFindingID = "CODE_STRING_BUILT_COMMAND"
)

type codeDetector struct {
	id       string
	severity rules.Severity
	message  string
	pattern  *regexp.Regexp
}

// jsTsDetectors fire on javascript/typescript content.
var jsTsDetectors = []codeDetector{
	{DynamicEvalFindingID, rules.SeverityHigh, "uses eval() on dynamic input",
		regexp.MustCompile(`\beval\s*\(`)},
	{DynamicEvalFindingID, rules.SeverityHigh, "constructs a Function from a string",
		regexp.MustCompile(`\bnew\s+Function\s*\(`)},
	{DynamicCodeLoadFindingID, rules.SeverityMedium, "loads a module by a dynamically built specifier",
		regexp.MustCompile(`\brequire\s*\(\s*[a-zA-Z_$][\w.]*\s*\+`)},
	{StringBuiltCommandFindingID, rules.SeverityMedium, "builds a shell command via string concatenation",
		regexp.MustCompile(`\bexec(?:Sync)?\s*\(\s*[a-zA-Z_$][\w.]*\s*\+`)},
}

// pythonDetectors fire on python content.
var pythonDetectors = []codeDetector{
	{DynamicEvalFindingID, rules.SeverityHigh, "uses eval() on dynamic input",
		regexp.MustCompile(`\beval\s*\(`)},
	{DynamicEvalFindingID, rules.SeverityCritical, "uses exec() on dynamic input",
		regexp.MustCompile(`\bexec\s*\(`)},
	{DynamicCodeLoadFindingID, rules.SeverityMedium, "imports a module by a dynamically built name",
		regexp.MustCompile(`\b__import__\s*\(\s*[a-zA-Z_][\w.]*\s*\+`)},
	{StringBuiltCommandFindingID, rules.SeverityHigh, "runs a shell command built via string concatenation",
		regexp.MustCompile(`\bos\.(?:system|popen)\s*\(\s*[a-zA-Z_][\w.]*\s*\+`)},
}

// bashDetectors fire on bash content.
var bashDetectors = []codeDetector{
	{StringBuiltCommandFindingID, rules.SeverityMedium, "evaluates a dynamically built command string",
		regexp.MustCompile(`\beval\s+"?\$`)},
	{DynamicCodeLoadFindingID, rules.SeverityMedium, "sources a script fetched over the network",
		regexp.MustCompile(`(?i)source\s+<\((?:curl|wget)`)},
}

// Code runs the cross-cutting code analyzer for javascript/typescript/
// python/bash content, independent of the YAML rule corpus.
func Code(item model.ContentItem) []model.Finding {
	var detectors []codeDetector
	switch item.FileType {
	case model.FileTypeJavaScript, model.FileTypeTypeScript:
		detectors = jsTsDetectors
	case model.FileTypePython:
		detectors = pythonDetectors
	case model.FileTypeBash:
		detectors = bashDetectors
	default:
		return nil
	}

	idx := lineindex.Build(item.Content)
	var findings []model.Finding
	for _, d := range detectors {
		locs := d.pattern.FindAllStringIndex(item.Content, -1)
		for _, loc := range locs {
			findings = append(findings, model.Finding{
				RuleID:   d.id,
				Severity: d.severity,
				Source:   rules.SourceHeuristic,
				Message:  d.message,
				File:     item.VirtualPath,
				Line:     idx.LineAt(loc[0]),
			})
		}
	}
	return findings
}
