// Package meta implements the post-scan de-duplication and confidence
// scoring layer applied after per-target and cross-target matching.
package meta

import "github.com/skillscan/skillscan/internal/model"

// Dedupe keeps the first occurrence of each finding by fingerprint
// (rule_id, file, line_or_empty, message) and drops the rest, preserving
// input order. It is idempotent: Dedupe(Dedupe(x)) == Dedupe(x).
func Dedupe(findings []model.Finding) []model.Finding {
	seen := make(map[string]bool, len(findings))
	out := make([]model.Finding, 0, len(findings))
	for _, f := range findings {
		fp := f.Fingerprint()
		if seen[fp] {
			continue
		}
		seen[fp] = true
		out = append(out, f)
	}
	return out
}
