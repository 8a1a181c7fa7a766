package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// rawRule mirrors one YAML record in a rule file.
type rawRule struct {
	ID              string   `yaml:"id"`
	Category        string   `yaml:"category"`
	Severity        string   `yaml:"severity"`
	Patterns        []string `yaml:"patterns"`
	FileTypes       []string `yaml:"file_types"`
	Description     string   `yaml:"description"`
	Remediation     string   `yaml:"remediation"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
}

// caseInsensitiveToken is the PCRE-style inline flag this engine normalizes;
// every occurrence is stripped and the pattern recompiled case-insensitively.
const caseInsensitiveToken = "(?i)"

// Compile parses a single YAML document (a top-level sequence of rule
// records) into compiled Rules. Malformed rules and patterns are dropped
// with a logged diagnostic rather than failing the whole corpus.
func Compile(doc []byte, logger *zap.Logger) ([]*Rule, error) {
	var raws []rawRule
	if err := yaml.Unmarshal(doc, &raws); err != nil {
		return nil, fmt.Errorf("parse rule document: %w", err)
	}

	rules := make([]*Rule, 0, len(raws))
	for _, raw := range raws {
		rule, err := compileOne(raw, logger)
		if err != nil {
			logger.Warn("dropping malformed rule", zap.String("id", raw.ID), zap.Error(err))
			continue
		}
		if rule == nil {
			continue
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// CompileAll compiles every YAML document in docs and concatenates the
// surviving rules, computing a single rule_version digest over all of them.
func CompileAll(docs [][]byte, logger *zap.Logger) ([]*Rule, string, error) {
	var all []*Rule
	for _, doc := range docs {
		rs, err := Compile(doc, logger)
		if err != nil {
			return nil, "", err
		}
		all = append(all, rs...)
	}
	return all, RuleVersion(docs), nil
}

// RuleVersion derives a stable digest of the rule corpus contents. It
// participates in every CacheEntry so a corpus change invalidates the cache.
func RuleVersion(docs [][]byte) string {
	h := sha256.New()
	for _, doc := range docs {
		h.Write(doc)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func compileOne(raw rawRule, logger *zap.Logger) (*Rule, error) {
	if raw.ID == "" || raw.Category == "" || raw.Severity == "" ||
		len(raw.Patterns) == 0 || len(raw.FileTypes) == 0 {
		return nil, fmt.Errorf("missing required field(s)")
	}

	severity := Severity(strings.ToUpper(raw.Severity))
	if !severity.Valid() {
		return nil, fmt.Errorf("unknown severity %q", raw.Severity)
	}

	compiled := make([]*regexp.Regexp, 0, len(raw.Patterns))
	for _, src := range raw.Patterns {
		re, err := compilePattern(src)
		if err != nil {
			logger.Warn("dropping unparsable pattern",
				zap.String("rule_id", raw.ID), zap.String("pattern", src), zap.Error(err))
			continue
		}
		compiled = append(compiled, re)
	}
	if len(compiled) == 0 {
		return nil, fmt.Errorf("no patterns survived compilation")
	}

	excludes := make([]*regexp.Regexp, 0, len(raw.ExcludePatterns))
	for _, src := range raw.ExcludePatterns {
		re, err := compilePattern(src)
		if err != nil {
			logger.Warn("dropping unparsable exclude_pattern",
				zap.String("rule_id", raw.ID), zap.String("pattern", src), zap.Error(err))
			continue
		}
		excludes = append(excludes, re)
	}

	return &Rule{
		ID:              raw.ID,
		Category:        raw.Category,
		Severity:        severity,
		FileTypes:       raw.FileTypes,
		Description:     raw.Description,
		Remediation:     raw.Remediation,
		patterns:        compiled,
		excludePatterns: excludes,
	}, nil
}

// compilePattern strips the PCRE inline case-insensitive flag (wherever it
// appears) and compiles with the equivalent native flag. All other source
// characters are passed to the Go regexp engine verbatim.
func compilePattern(src string) (*regexp.Regexp, error) {
	caseInsensitive := strings.Contains(src, caseInsensitiveToken)
	if caseInsensitive {
		src = strings.ReplaceAll(src, caseInsensitiveToken, "")
	}
	if caseInsensitive {
		src = "(?i)" + src
	}
	return regexp.Compile(src)
}
