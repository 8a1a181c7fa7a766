// Package match applies a compiled rule engine to a ContentItem's text,
// producing signature Findings.
package match

import (
	"regexp"
	"sort"

	"github.com/skillscan/skillscan/internal/lineindex"
	"github.com/skillscan/skillscan/internal/model"
	"github.com/skillscan/skillscan/internal/rules"
)

// PerRuleFindingCap bounds how many findings a single rule may emit against
// a single file; further matches are dropped once reached.
const PerRuleFindingCap = 20

// Match applies every rule indexed for item's FileType against its content,
// returning signature Findings grouped by rule in discovery order. Within a
// rule, findings follow the rule's pattern order and then match offset, so
// a rule with several patterns is not ordered by offset overall.
func Match(item model.ContentItem, engine *rules.Engine) []model.Finding {
	applicable := engine.RulesFor(string(item.FileType))
	if len(applicable) == 0 {
		return nil
	}

	idx := lineindex.Build(item.Content)
	var findings []model.Finding

	for _, rule := range applicable {
		emitted := 0
		for _, pattern := range rule.Patterns() {
			if emitted >= PerRuleFindingCap {
				break
			}
			emitted += matchOnePattern(rule, pattern, item, idx, PerRuleFindingCap-emitted, &findings)
		}
	}

	return findings
}

func matchOnePattern(rule *rules.Rule, pattern *regexp.Regexp, item model.ContentItem, idx lineindex.Index, remaining int, out *[]model.Finding) int {
	locs := pattern.FindAllStringIndex(item.Content, -1)
	emitted := 0
	for _, loc := range locs {
		if emitted >= remaining {
			break
		}
		start, end := loc[0], loc[1]
		if start == end {
			// Zero-width match; nothing to report, and FindAllStringIndex
			// already advances past it rather than looping forever.
			continue
		}
		text := item.Content[start:end]
		if rule.Excluded(text) {
			continue
		}
		*out = append(*out, model.Finding{
			RuleID:      rule.ID,
			Severity:    rule.Severity,
			Category:    rule.Category,
			Source:      rules.SourceSignature,
			Message:     rule.Description,
			File:        item.VirtualPath,
			Line:        idx.LineAt(start),
			MatchLength: end - start,
		})
		emitted++
	}
	return emitted
}

// SortStable orders findings by (file, line, rule_id) for deterministic
// report output; it does not change scan semantics.
func SortStable(findings []model.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].File != findings[j].File {
			return findings[i].File < findings[j].File
		}
		if findings[i].Line != findings[j].Line {
			return findings[i].Line < findings[j].Line
		}
		return findings[i].RuleID < findings[j].RuleID
	})
}
