package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/skillscan/skillscan/internal/config"
	"github.com/skillscan/skillscan/internal/rules"
)

// buildEngine compiles the built-in corpus, every *.yaml/*.yml file under
// cfg.RuleDirs, and cfg.CustomPatterns into one rules.Engine plus the
// rule_version digest the cache and Result Store key entries on.
func buildEngine(cfg *config.Config, logger *zap.Logger) (*rules.Engine, string, error) {
	docs := [][]byte{rules.BuiltinDocument()}

	extra, err := rules.LoadDocuments(cfg.RuleDirs)
	if err != nil {
		return nil, "", fmt.Errorf("load rule directories: %w", err)
	}
	docs = append(docs, extra...)

	if len(cfg.CustomPatterns) > 0 {
		customDoc, errs := rules.CustomRuleDocument(cfg.CustomPatterns)
		if len(errs) > 0 {
			for _, e := range errs {
				logger.Warn("skillscan: dropping invalid custom pattern", zap.Error(e))
			}
		}
		if len(customDoc) > 0 {
			docs = append(docs, customDoc)
		}
	}

	compiled, ruleVersion, err := rules.CompileAll(docs, logger)
	if err != nil {
		return nil, "", fmt.Errorf("compile rule corpus: %w", err)
	}
	return rules.NewEngine(compiled), ruleVersion, nil
}
