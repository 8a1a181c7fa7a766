package heuristics

import (
	"regexp"
	"strings"

	"github.com/skillscan/skillscan/internal/lineindex"
	"github.com/skillscan/skillscan/internal/model"
	"github.com/skillscan/skillscan/internal/rules"
)

const CreditCardFindingID = "HEURISTIC_CREDIT_CARD_NUMBER"

var cardCandidate = regexp.MustCompile(`\b(?:\d[ .\-]*?){13,19}\b`)
var nonDigit = regexp.MustCompile(`\D`)

// knownTestCards are well-known test card numbers (Stripe, Visa/Mastercard/
// Amex/Discover/JCB documentation examples) that never represent a real
// leaked credential and must not be reported.
var knownTestCards = map[string]bool{
	"4111111111111111": true,
	"4242424242424242": true,
	"5555555555554444": true,
	"378282246310005":  true,
	"6011111111111117": true,
	"3566002020360505": true,
}

// CreditCard applies Luhn validation on top of a loose digit-run regex. It
// is a heuristic rather than a signature rule because Luhn validation is
// arbitrary Go logic with no place in the declarative YAML rule corpus.
func CreditCard(item model.ContentItem) []model.Finding {
	idx := lineindex.Build(item.Content)
	var findings []model.Finding
	for _, loc := range cardCandidate.FindAllStringIndex(item.Content, -1) {
		candidate := item.Content[loc[0]:loc[1]]
		digits := nonDigit.ReplaceAllString(candidate, "")
		if len(digits) < 13 || len(digits) > 19 {
			continue
		}
		if knownTestCards[digits] {
			continue
		}
		if !hasValidCardPrefix(digits) || !luhnValid(digits) {
			continue
		}
		findings = append(findings, model.Finding{
			RuleID:   CreditCardFindingID,
			Severity: rules.SeverityCritical,
			Source:   rules.SourceHeuristic,
			Message:  "Credit card number (Luhn-valid)",
			File:     item.VirtualPath,
			Line:     idx.LineAt(loc[0]),
		})
	}
	return findings
}

func hasValidCardPrefix(digits string) bool {
	switch {
	case strings.HasPrefix(digits, "4"):
		return true
	case strings.HasPrefix(digits, "34"), strings.HasPrefix(digits, "37"):
		return true
	case strings.HasPrefix(digits, "6011"), strings.HasPrefix(digits, "65"):
		return true
	case strings.HasPrefix(digits, "35"):
		return true
	case strings.HasPrefix(digits, "30"), strings.HasPrefix(digits, "36"),
		strings.HasPrefix(digits, "38"), strings.HasPrefix(digits, "39"):
		return true
	}
	if len(digits) >= 2 {
		p2 := digits[:2]
		if p2 >= "51" && p2 <= "55" {
			return true
		}
	}
	if len(digits) >= 4 {
		p4 := digits[:4]
		if p4 >= "2221" && p4 <= "2720" {
			return true
		}
	}
	if len(digits) >= 3 {
		p3 := digits[:3]
		if p3 >= "644" && p3 <= "649" {
			return true
		}
	}
	return false
}

func luhnValid(digits string) bool {
	sum := 0
	alt := false
	for i := len(digits) - 1; i >= 0; i-- {
		n := int(digits[i] - '0')
		if alt {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		alt = !alt
	}
	return sum%10 == 0
}
