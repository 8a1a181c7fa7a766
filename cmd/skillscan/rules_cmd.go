package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillscan/skillscan/internal/rules"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and validate the detection rule corpus",
	}
	cmd.AddCommand(newRulesValidateCmd())
	cmd.AddCommand(newRulesListCmd())
	return cmd
}

func newRulesValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <dir>...",
		Short: "Compile a rule directory without scanning, reporting malformed rules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := buildLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			docs, err := rules.LoadDocuments(args)
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				return fmt.Errorf("no *.yaml/*.yml rule files found under %v", args)
			}

			compiled, ruleVersion, err := rules.CompileAll(docs, logger)
			if err != nil {
				return err
			}

			cmd.Printf("compiled %d rule(s) from %d file(s), rule_version=%s\n", len(compiled), len(docs), ruleVersion)
			return nil
		},
	}
}

func newRulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the built-in rule corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := buildLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			engine, ruleVersion, err := buildEngine(cfg, logger)
			if err != nil {
				return err
			}

			for _, r := range engine.All() {
				cmd.Printf("%-28s %-8s %-20s %v\n", r.ID, r.Severity, r.Category, r.FileTypes)
			}
			cmd.Printf("\n%d rule(s), rule_version=%s\n", len(engine.All()), ruleVersion)
			return nil
		},
	}
}
