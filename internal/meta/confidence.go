package meta

import (
	"regexp"
	"strings"

	"github.com/skillscan/skillscan/internal/model"
	"github.com/skillscan/skillscan/internal/rules"
)

const (
	baseSignatureConfidence = 0.80
	baseHeuristicConfidence = 0.55

	lowConfidencePathFactor = 0.6
	commentFactor           = 0.7

	entropyLow   = 4.2
	entropyRange = 1.8

	matchLengthDivisor = 40.0
	matchLengthBonus   = 0.10

	criticalBonus = 0.05
	lowPenalty    = 0.10
)

var lowConfidencePathToken = regexp.MustCompile(`(?i)(test|spec|fixture|mock|example)`)

var commentPrefix = regexp.MustCompile(`^\s*(//|#|\*)`)

// Score computes the confidence value for a single finding, given the
// full line text the finding appeared on (for comment detection). It does
// not mutate f; callers assign the result to f.Confidence.
func Score(f model.Finding, lineText string) float64 {
	score := baseHeuristicConfidence
	if f.Source == rules.SourceSignature {
		score = baseSignatureConfidence
	}

	if lowConfidencePathToken.MatchString(f.File) {
		score *= lowConfidencePathFactor
	}

	if isCommentLine(lineText) {
		score *= commentFactor
	}

	if f.RuleID == "HEURISTIC_HIGH_ENTROPY_SECRET" {
		scale := clamp((f.EntropyBits-entropyLow)/entropyRange, 0, 1)
		score = scoreTowards(score, scale)
	}

	if f.Source == rules.SourceSignature && f.MatchLength > 0 {
		bonus := clamp(float64(f.MatchLength)/matchLengthDivisor, 0, 1) * matchLengthBonus
		score += bonus
	}

	switch f.Severity {
	case rules.SeverityCritical:
		score += criticalBonus
	case rules.SeverityLow:
		score -= lowPenalty
	}

	return clamp(score, 0, 1)
}

// scoreTowards nudges score toward 1.0 proportional to scale, used by the
// entropy-scaled confidence adjustment.
func scoreTowards(score, scale float64) float64 {
	return score + (1-score)*scale
}

func isCommentLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if commentPrefix.MatchString(line) {
		return true
	}
	return strings.HasPrefix(trimmed, "/*")
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ApplyConfidence scores every finding in place (assigning Confidence),
// using contentByFile to recover the line text each finding appeared on.
func ApplyConfidence(findings []model.Finding, lineTextOf func(file string, line int) string) {
	for i := range findings {
		lineText := ""
		if findings[i].Line > 0 {
			lineText = lineTextOf(findings[i].File, findings[i].Line)
		}
		score := Score(findings[i], lineText)
		findings[i].Confidence = &score
	}
}

// FilterByThreshold drops findings whose confidence is below min. Findings
// with no confidence score (nil) are kept, since threshold filtering only
// applies once scoring has run.
func FilterByThreshold(findings []model.Finding, min float64) []model.Finding {
	out := make([]model.Finding, 0, len(findings))
	for _, f := range findings {
		if f.Confidence != nil && *f.Confidence < min {
			continue
		}
		out = append(out, f)
	}
	return out
}
