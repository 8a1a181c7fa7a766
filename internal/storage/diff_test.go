package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skillscan/skillscan/internal/model"
	"github.com/skillscan/skillscan/internal/rules"
)

func TestDiff_PartitionsAddedRemovedUnchangedSeverityChanged(t *testing.T) {
	baseline := model.ScanRecord{
		ID: "baseline",
		Result: model.ScanResult{Findings: []model.Finding{
			{RuleID: "r1", File: "a.py", Line: 1, Message: "m1", Severity: rules.SeverityLow},
			{RuleID: "r2", File: "b.py", Line: 2, Message: "m2", Severity: rules.SeverityHigh},
			{RuleID: "r3", File: "c.py", Line: 3, Message: "m3", Severity: rules.SeverityMedium},
		}},
	}
	current := model.ScanRecord{
		ID: "current",
		Result: model.ScanResult{Findings: []model.Finding{
			{RuleID: "r1", File: "a.py", Line: 1, Message: "m1", Severity: rules.SeverityLow},    // unchanged
			{RuleID: "r2", File: "b.py", Line: 2, Message: "m2", Severity: rules.SeverityCritical}, // severity changed
			{RuleID: "r4", File: "d.py", Line: 4, Message: "m4", Severity: rules.SeverityMedium},  // added
			// r3 dropped -> removed
		}},
	}

	diff := Diff(baseline, current)
	assert.Equal(t, "baseline", diff.BaselineID)
	assert.Equal(t, "current", diff.CurrentID)
	assert.Len(t, diff.Added, 1)
	assert.Equal(t, "r4", diff.Added[0].RuleID)
	assert.Len(t, diff.Removed, 1)
	assert.Equal(t, "r3", diff.Removed[0].RuleID)
	assert.Len(t, diff.Unchanged, 1)
	assert.Equal(t, "r1", diff.Unchanged[0].RuleID)
	assert.Len(t, diff.SeverityChanged, 1)
	assert.Equal(t, rules.SeverityHigh, diff.SeverityChanged[0].Before.Severity)
	assert.Equal(t, rules.SeverityCritical, diff.SeverityChanged[0].After.Severity)
}

func TestDiff_IdenticalScansProduceOnlyUnchanged(t *testing.T) {
	findings := []model.Finding{{RuleID: "r1", File: "a.py", Line: 1, Message: "m1", Severity: rules.SeverityLow}}
	baseline := model.ScanRecord{ID: "a", Result: model.ScanResult{Findings: findings}}
	current := model.ScanRecord{ID: "b", Result: model.ScanResult{Findings: findings}}

	diff := Diff(baseline, current)
	assert.Empty(t, diff.Added)
	assert.Empty(t, diff.Removed)
	assert.Empty(t, diff.SeverityChanged)
	assert.Len(t, diff.Unchanged, 1)
}
