// Package report renders a ScanResult into its two stable output shapes:
// a JSON summary/detected/targets/findings document, and a SARIF 2.1.0
// run.
package report

import (
	"encoding/json"
	"strings"

	"github.com/skillscan/skillscan/internal/model"
	"github.com/skillscan/skillscan/internal/rules"
)

func markOnce(seen map[string]bool, key string, counter *int) {
	if seen[key] {
		return
	}
	seen[key] = true
	*counter++
}

// Summary is the report's top-level counts block.
type Summary struct {
	ScannedFiles int                      `json:"scanned_files"`
	ElapsedMS    int64                    `json:"elapsed_ms"`
	FindingCount int                      `json:"finding_count"`
	Severities   map[rules.Severity]int   `json:"severities"`
}

// RuleCount is one entry of detected.rules.
type RuleCount struct {
	RuleID   string         `json:"rule_id"`
	Severity rules.Severity `json:"severity"`
	Category string         `json:"category,omitempty"`
	Source   rules.Source   `json:"source,omitempty"`
	Count    int            `json:"count"`
}

// CategoryCount is one entry of detected.categories.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// MCPObjectCounts breaks down how many of each MCP object kind were
// virtualized across every mcp Target in this scan.
type MCPObjectCounts struct {
	Tools        int `json:"tools"`
	Prompts      int `json:"prompts"`
	Resources    int `json:"resources"`
	Instructions int `json:"instructions"`
}

// MCPDetected summarizes MCP-specific detection shape, present only when
// the scan included at least one mcp Target.
type MCPDetected struct {
	Servers int             `json:"servers"`
	Objects MCPObjectCounts `json:"objects"`
}

// Detected is the report's breakdown of what was found, independent of
// individual Finding records.
type Detected struct {
	TargetKinds []model.TargetKind `json:"target_kinds"`
	Sources     []rules.Source     `json:"sources"`
	Rules       []RuleCount        `json:"rules"`
	Categories  []CategoryCount    `json:"categories"`
	MCP         *MCPDetected       `json:"mcp,omitempty"`
}

// Document is the stable JSON report shape.
type Document struct {
	Summary  Summary          `json:"summary"`
	Detected Detected         `json:"detected"`
	Targets  []model.Target   `json:"targets"`
	Findings []model.Finding  `json:"findings"`
}

// BuildDocument projects a ScanResult into the stable report Document.
func BuildDocument(result model.ScanResult) Document {
	severities := map[rules.Severity]int{
		rules.SeverityLow:      0,
		rules.SeverityMedium:   0,
		rules.SeverityHigh:     0,
		rules.SeverityCritical: 0,
	}

	kindSeen := map[model.TargetKind]bool{}
	var kinds []model.TargetKind
	for _, t := range result.Targets {
		if !kindSeen[t.Kind] {
			kindSeen[t.Kind] = true
			kinds = append(kinds, t.Kind)
		}
	}

	sourceSeen := map[rules.Source]bool{}
	var sources []rules.Source
	ruleCounts := map[string]*RuleCount{}
	categoryCounts := map[string]int{}
	var mcpCounts MCPObjectCounts
	sawMCP := false

	for _, f := range result.Findings {
		severities[f.Severity]++

		if !sourceSeen[f.Source] {
			sourceSeen[f.Source] = true
			sources = append(sources, f.Source)
		}

		if rc, ok := ruleCounts[f.RuleID]; ok {
			rc.Count++
		} else {
			ruleCounts[f.RuleID] = &RuleCount{
				RuleID: f.RuleID, Severity: f.Severity, Category: f.Category, Source: f.Source, Count: 1,
			}
		}
		if f.Category != "" {
			categoryCounts[f.Category]++
		}
	}

	mcpObjectSeen := map[string]bool{}
	mcpServers := 0
	for _, t := range result.Targets {
		if t.Kind != model.TargetKindMCP {
			continue
		}
		sawMCP = true
		mcpServers++
	}
	// Object counts come from distinct virtual paths touched by findings,
	// since the report only has access to findings, not the content plan
	// that produced them; an mcp object with zero findings is not counted.
	for _, f := range result.Findings {
		switch {
		case strings.Contains(f.File, "/tools/"):
			markOnce(mcpObjectSeen, f.File, &mcpCounts.Tools)
		case strings.Contains(f.File, "/prompts/"):
			markOnce(mcpObjectSeen, f.File, &mcpCounts.Prompts)
		case strings.Contains(f.File, "/resources/"):
			markOnce(mcpObjectSeen, f.File, &mcpCounts.Resources)
		case strings.HasSuffix(f.File, "/instructions.md"):
			markOnce(mcpObjectSeen, f.File, &mcpCounts.Instructions)
		}
	}

	var ruleList []RuleCount
	for _, rc := range ruleCounts {
		ruleList = append(ruleList, *rc)
	}
	var categoryList []CategoryCount
	for cat, count := range categoryCounts {
		categoryList = append(categoryList, CategoryCount{Category: cat, Count: count})
	}

	detected := Detected{TargetKinds: kinds, Sources: sources, Rules: ruleList, Categories: categoryList}
	if sawMCP {
		detected.MCP = &MCPDetected{Servers: mcpServers, Objects: mcpCounts}
	}

	return Document{
		Summary: Summary{
			ScannedFiles: result.ScannedFiles,
			ElapsedMS:    result.ElapsedMS,
			FindingCount: len(result.Findings),
			Severities:   severities,
		},
		Detected: detected,
		Targets:  result.Targets,
		Findings: result.Findings,
	}
}

// MarshalJSON renders result as the stable JSON report shape, indented for
// human readability.
func MarshalJSON(result model.ScanResult) ([]byte, error) {
	return json.MarshalIndent(BuildDocument(result), "", "  ")
}
