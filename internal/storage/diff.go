package storage

import "github.com/skillscan/skillscan/internal/model"

// Diff partitions current against baseline by fingerprint: a finding
// present only in baseline is "removed", present only in current
// is "added", present in both at the same severity is "unchanged", and
// present in both at different severities is "severity_changed".
func Diff(baseline, current model.ScanRecord) model.DiffResult {
	baseByFingerprint := make(map[string]model.Finding, len(baseline.Result.Findings))
	for _, f := range baseline.Result.Findings {
		baseByFingerprint[f.Fingerprint()] = f
	}

	result := model.DiffResult{BaselineID: baseline.ID, CurrentID: current.ID}
	seen := make(map[string]bool, len(current.Result.Findings))

	for _, cur := range current.Result.Findings {
		fp := cur.Fingerprint()
		seen[fp] = true
		base, existed := baseByFingerprint[fp]
		switch {
		case !existed:
			result.Added = append(result.Added, cur)
		case base.Severity != cur.Severity:
			result.SeverityChanged = append(result.SeverityChanged, model.SeverityChange{Before: base, After: cur})
		default:
			result.Unchanged = append(result.Unchanged, cur)
		}
	}

	for fp, base := range baseByFingerprint {
		if !seen[fp] {
			result.Removed = append(result.Removed, base)
		}
	}

	return result
}
