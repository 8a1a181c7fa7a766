package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skillscan/skillscan/internal/model"
	"github.com/skillscan/skillscan/internal/rules"
)

func buildTestEngine(t *testing.T) (*rules.Engine, string) {
	t.Helper()
	doc := []byte(`
- id: test_secret
  category: credential
  severity: HIGH
  file_types: [python]
  patterns: ["sk_live_[A-Za-z0-9]+"]
  description: "Hardcoded test secret"
  remediation: "Remove it"
`)
	compiled, version, err := rules.CompileAll([][]byte{doc}, zap.NewNop())
	require.NoError(t, err)
	return rules.NewEngine(compiled), version
}

func TestScan_NoTargetsErrors(t *testing.T) {
	engine, version := buildTestEngine(t)
	o := New(engine, version, zap.NewNop())
	_, err := o.Scan(context.Background(), nil, Options{}, nil)
	assert.Error(t, err)
}

func TestScan_EmitsStartAndFinishEvents(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py"), []byte("token = \"sk_live_abcdef1234\"\n"), 0o644))

	engine, version := buildTestEngine(t)
	o := New(engine, version, zap.NewNop())

	var kinds []EventKind
	result, err := o.Scan(context.Background(), []model.Target{{Kind: model.TargetKindPath, Name: "app", Path: dir}}, Options{}, func(ev Event) {
		kinds = append(kinds, ev.Kind)
	})
	require.NoError(t, err)
	require.Len(t, result.Findings, 1)
	assert.Equal(t, "test_secret", result.Findings[0].RuleID)
	assert.Contains(t, kinds, EventStart)
	assert.Contains(t, kinds, EventFinish)
	assert.Contains(t, kinds, EventBeginTarget)
	assert.Contains(t, kinds, EventCompleteTarget)
}

func TestExitCode_CleanScanIsZero(t *testing.T) {
	result := model.ScanResult{Findings: []model.Finding{{Severity: rules.SeverityLow}}}
	assert.Equal(t, 0, ExitCode(result, rules.SeverityHigh))
}

func TestExitCode_FindingMeetingFloorIsTwo(t *testing.T) {
	result := model.ScanResult{Findings: []model.Finding{{Severity: rules.SeverityCritical}}}
	assert.Equal(t, 2, ExitCode(result, rules.SeverityHigh))
}

func TestExitCode_NoFloorConfiguredIsZero(t *testing.T) {
	result := model.ScanResult{Findings: []model.Finding{{Severity: rules.SeverityCritical}}}
	assert.Equal(t, 0, ExitCode(result, ""))
}
