package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skillscan/skillscan/internal/model"
	"github.com/skillscan/skillscan/internal/rules"
)

func TestDedupe_KeepsFirstOccurrence(t *testing.T) {
	findings := []model.Finding{
		{RuleID: "r1", File: "a.py", Line: 1, Message: "m", Severity: rules.SeverityHigh},
		{RuleID: "r1", File: "a.py", Line: 1, Message: "m", Severity: rules.SeverityCritical},
		{RuleID: "r2", File: "a.py", Line: 1, Message: "m"},
	}
	out := Dedupe(findings)
	assert.Len(t, out, 2)
	assert.Equal(t, rules.SeverityHigh, out[0].Severity)
}

func TestDedupe_Idempotent(t *testing.T) {
	findings := []model.Finding{
		{RuleID: "r1", File: "a.py", Line: 1, Message: "m"},
		{RuleID: "r1", File: "a.py", Line: 1, Message: "m"},
	}
	once := Dedupe(findings)
	twice := Dedupe(once)
	assert.Equal(t, once, twice)
}

func TestScore_TestPathLowersConfidence(t *testing.T) {
	f := model.Finding{Source: rules.SourceSignature, File: "tests/fixture.py", Severity: rules.SeverityMedium}
	plain := model.Finding{Source: rules.SourceSignature, File: "app.py", Severity: rules.SeverityMedium}
	assert.Less(t, Score(f, ""), Score(plain, ""))
}

func TestScore_CommentLowersConfidence(t *testing.T) {
	f := model.Finding{Source: rules.SourceSignature, File: "app.py", Severity: rules.SeverityMedium}
	assert.Less(t, Score(f, "# password = x"), Score(f, "password = x"))
}

func TestScore_ClampedToUnitRange(t *testing.T) {
	f := model.Finding{Source: rules.SourceSignature, File: "app.py", Severity: rules.SeverityCritical, MatchLength: 1000}
	s := Score(f, "")
	assert.LessOrEqual(t, s, 1.0)
	assert.GreaterOrEqual(t, s, 0.0)

	low := model.Finding{Source: rules.SourceHeuristic, File: "tests/x.py", Severity: rules.SeverityLow}
	s2 := Score(low, "# comment")
	assert.GreaterOrEqual(t, s2, 0.0)
}

func TestScore_EntropyScalesTowardOne(t *testing.T) {
	low := model.Finding{RuleID: "HEURISTIC_HIGH_ENTROPY_SECRET", Source: rules.SourceHeuristic, Severity: rules.SeverityHigh, EntropyBits: 4.2}
	high := model.Finding{RuleID: "HEURISTIC_HIGH_ENTROPY_SECRET", Source: rules.SourceHeuristic, Severity: rules.SeverityHigh, EntropyBits: 6.0}
	assert.Less(t, Score(low, ""), Score(high, ""))
}

func TestFilterByThreshold_DropsBelowMin(t *testing.T) {
	a, b := 0.9, 0.3
	findings := []model.Finding{
		{RuleID: "r1", Confidence: &a},
		{RuleID: "r2", Confidence: &b},
	}
	out := FilterByThreshold(findings, 0.5)
	assert.Len(t, out, 1)
	assert.Equal(t, "r1", out[0].RuleID)
}
