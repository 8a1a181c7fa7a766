// Package rules compiles the YAML rule corpus into matchers the signature
// engine can apply to scanned content.
package rules

import "regexp"

// Severity orders LOW < MEDIUM < HIGH < CRITICAL.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Less reports whether s sorts below other in the LOW..CRITICAL ordering.
func (s Severity) Less(other Severity) bool {
	return severityRank[s] < severityRank[other]
}

// Valid reports whether s is one of the four known severities.
func (s Severity) Valid() bool {
	_, ok := severityRank[s]
	return ok
}

// Source identifies which subsystem produced a Finding.
type Source string

const (
	SourceSignature Source = "signature"
	SourceHeuristic Source = "heuristic"
)

// FileTypeAny is the sentinel file_types entry that matches every type.
const FileTypeAny = "any"

// Rule is a compiled detection rule: a regex pattern set plus the file types
// and exclusions it applies under.
type Rule struct {
	ID          string
	Category    string
	Severity    Severity
	FileTypes   []string
	Description string
	Remediation string

	patterns        []*regexp.Regexp
	excludePatterns []*regexp.Regexp
}

// AppliesToAny reports whether the rule's file_types include the "any" sentinel.
func (r *Rule) AppliesToAny() bool {
	for _, ft := range r.FileTypes {
		if ft == FileTypeAny {
			return true
		}
	}
	return false
}

// AppliesTo reports whether the rule is indexed for the given logical file type.
func (r *Rule) AppliesTo(fileType string) bool {
	if r.AppliesToAny() {
		return true
	}
	for _, ft := range r.FileTypes {
		if ft == fileType {
			return true
		}
	}
	return false
}

// Patterns returns the compiled regular expressions backing the rule.
// Callers must not mutate the returned slice.
func (r *Rule) Patterns() []*regexp.Regexp {
	return r.patterns
}

// Excluded reports whether any exclude_pattern matches the candidate text.
func (r *Rule) Excluded(text string) bool {
	for _, ex := range r.excludePatterns {
		if ex.MatchString(text) {
			return true
		}
	}
	return false
}
