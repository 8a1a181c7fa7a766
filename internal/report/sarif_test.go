package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillscan/skillscan/internal/model"
	"github.com/skillscan/skillscan/internal/rules"
)

func TestMarshalSARIF_OneResultPerFinding(t *testing.T) {
	result := model.ScanResult{
		Findings: []model.Finding{
			{RuleID: "rsa_private_key", Severity: rules.SeverityCritical, File: "id_rsa", Line: 1, Message: "private key found"},
			{RuleID: "prompt_injection", Severity: rules.SeverityMedium, File: "mcp://host/tools/x", Line: 0, Message: "suspicious instruction"},
		},
	}

	b, err := MarshalSARIF(result)
	require.NoError(t, err)

	var log sarifLog
	require.NoError(t, json.Unmarshal(b, &log))

	assert.Equal(t, sarifVersion, log.Version)
	require.Len(t, log.Runs, 1)
	require.Len(t, log.Runs[0].Results, 2)

	r0 := log.Runs[0].Results[0]
	assert.Equal(t, "rsa_private_key", r0.RuleID)
	assert.Equal(t, "error", r0.Level)
	assert.Equal(t, "id_rsa", r0.Locations[0].PhysicalLocation.ArtifactLocation.URI)
	assert.Equal(t, 1, r0.Locations[0].PhysicalLocation.Region.StartLine)

	r1 := log.Runs[0].Results[1]
	assert.Equal(t, "warning", r1.Level)
}

func TestSarifLevel_MapsAllSeverities(t *testing.T) {
	assert.Equal(t, "error", sarifLevel(rules.SeverityCritical))
	assert.Equal(t, "error", sarifLevel(rules.SeverityHigh))
	assert.Equal(t, "warning", sarifLevel(rules.SeverityMedium))
	assert.Equal(t, "note", sarifLevel(rules.SeverityLow))
}
