package rules

import (
	"fmt"
	"strings"

	"github.com/skillscan/skillscan/internal/config"
	"github.com/skillscan/skillscan/internal/security/patterns"
)

// CustomRuleDocument validates cps with the pattern-library's own rules
// (name required, exactly one of regex/keywords, regex must compile) and
// renders the survivors as a YAML document Compile can consume, so
// user-supplied patterns flow through the same matcher as the built-in
// corpus instead of a second detection path.
func CustomRuleDocument(cps []config.CustomPattern) ([]byte, []error) {
	_, errs := patterns.LoadCustomPatterns(cps)
	if len(errs) > 0 {
		return nil, errs
	}

	var b strings.Builder
	for _, cp := range cps {
		pats := []string{cp.Regex}
		if cp.Regex == "" {
			pats = make([]string, 0, len(cp.Keywords))
			for _, kw := range cp.Keywords {
				pats = append(pats, regexpQuote(kw))
			}
		}
		fmt.Fprintf(&b, "- id: custom_%s\n", sanitizeID(cp.Name))
		fmt.Fprintf(&b, "  category: %s\n", yamlScalar(orDefault(cp.Category, "custom")))
		fmt.Fprintf(&b, "  severity: %s\n", strings.ToUpper(orDefault(cp.Severity, "medium")))
		b.WriteString("  patterns:\n")
		for _, p := range pats {
			fmt.Fprintf(&b, "    - %s\n", yamlScalar(p))
		}
		b.WriteString("  file_types: [\"any\"]\n")
		fmt.Fprintf(&b, "  description: \"custom pattern: %s\"\n", cp.Name)
	}
	return []byte(b.String()), nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func sanitizeID(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func yamlScalar(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}

func regexpQuote(literal string) string {
	var b strings.Builder
	for _, r := range literal {
		if strings.ContainsRune(`\.+*?()|[]{}^$`, r) {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
