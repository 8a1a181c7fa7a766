package heuristics

import (
	"github.com/skillscan/skillscan/internal/lineindex"
	"github.com/skillscan/skillscan/internal/model"
)

// Run applies every activated heuristic analyzer to item and returns their
// combined findings. Callers gate this behind the useBehavioral scan
// option; Run itself always runs every analyzer that applies to item's
// file type or basename.
func Run(item model.ContentItem) []model.Finding {
	idx := lineindex.Build(item.Content)

	var findings []model.Finding
	findings = append(findings, Entropy(item, idx)...)
	findings = append(findings, PackageScript(item)...)
	findings = append(findings, Manifest(item)...)
	findings = append(findings, Code(item)...)
	findings = append(findings, CreditCard(item)...)
	return findings
}
