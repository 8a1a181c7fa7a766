// Package heuristics implements the scanner's non-rule-based detectors:
// entropy, package-script supply-chain analysis, extension-manifest risk,
// and cross-cutting code smells.
package heuristics

import (
	"math"
	"regexp"

	"github.com/skillscan/skillscan/internal/lineindex"
	"github.com/skillscan/skillscan/internal/model"
	"github.com/skillscan/skillscan/internal/rules"
)

// EntropyFindingID is the fixed heuristic id every entropy finding carries.
const EntropyFindingID = "HEURISTIC_HIGH_ENTROPY_SECRET"

const (
	entropyMinTokenLen = 20
	entropyThreshold   = 4.2
	entropyTokenCap    = 2000
	entropyFindingCap  = 10
)

// entropyCandidate matches the whitespace-separated character class the
// entropy detector draws candidate tokens from.
var entropyCandidate = regexp.MustCompile(`[A-Za-z0-9+/_=\-]{20,}`)

// shannonEntropy computes Shannon entropy over a token's character
// histogram, in bits/char, feeding the confidence formula's
// (entropy-4.2)/1.8 scaling.
func shannonEntropy(s string) float64 {
	if len(s) == 0 {
		return 0
	}
	freq := make(map[rune]int)
	for _, r := range s {
		freq[r]++
	}
	var entropy float64
	length := float64(len(s))
	for _, count := range freq {
		p := float64(count) / length
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// Entropy runs the entropy detector over item's content, emitting at most
// entropyFindingCap findings from at most entropyTokenCap extracted
// candidate tokens.
func Entropy(item model.ContentItem, idx lineindex.Index) []model.Finding {
	locs := entropyCandidate.FindAllStringIndex(item.Content, entropyTokenCap)

	var findings []model.Finding
	for _, loc := range locs {
		if len(findings) >= entropyFindingCap {
			break
		}
		token := item.Content[loc[0]:loc[1]]
		if len(token) < entropyMinTokenLen {
			continue
		}
		entropy := shannonEntropy(token)
		if entropy < entropyThreshold {
			continue
		}
		findings = append(findings, model.Finding{
			RuleID:      EntropyFindingID,
			Severity:    rules.SeverityHigh,
			Source:      rules.SourceHeuristic,
			Message:     "High-entropy string resembling a secret",
			File:        item.VirtualPath,
			Line:        idx.LineAt(loc[0]),
			MatchLength: len(token),
			EntropyBits: entropy,
		})
	}
	return findings
}
