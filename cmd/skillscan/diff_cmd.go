package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillscan/skillscan/internal/cli/output"
	"github.com/skillscan/skillscan/internal/model"
	"github.com/skillscan/skillscan/internal/storage"
)

func newDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <baseline-id> <current-id>",
		Short: "Compare two stored scan records by finding fingerprint",
		Args:  cobra.ExactArgs(2),
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

			storeManager, err := storage.NewManager(cfg.DataDir, cfg.RetentionCeiling, logger.Sugar())
			if err != nil {
				return fmt.Errorf("open result store: %w", err)
			}
			defer storeManager.Close()

			result, err := storeManager.Diff(args[0], args[1])
			if err != nil {
				return err
			}

			format := output.ResolveFormat(outputFlag, jsonFlag)
			if format == "table" {
				return renderDiffTable(cmd, result)
			}
			formatter, err := output.NewFormatter(format)
			if err != nil {
				return err
			}
			rendered, err := formatter.Format(result)
			if err != nil {
				return err
			}
			cmd.Println(rendered)
			return nil
		},
	}
	return cmd
}

func renderDiffTable(cmd *cobra.Command, d model.DiffResult) error {
	formatter, err := output.NewFormatter("table")
	if err != nil {
		return err
	}
	headers := []string{"CHANGE", "SEVERITY", "RULE", "FILE", "MESSAGE"}
	var rows [][]string
	for _, f := range d.Added {
		rows = append(rows, []string{"added", string(f.Severity), f.RuleID, f.File, f.Message})
	}
	for _, f := range d.Removed {
		rows = append(rows, []string{"removed", string(f.Severity), f.RuleID, f.File, f.Message})
	}
	for _, sc := range d.SeverityChanged {
		rows = append(rows, []string{
			fmt.Sprintf("severity: %s -> %s", sc.Before.Severity, sc.After.Severity),
			string(sc.After.Severity), sc.After.RuleID, sc.After.File, sc.After.Message,
		})
	}
	rendered, err := formatter.FormatTable(headers, rows)
	if err != nil {
		return err
	}
	cmd.Println(rendered)
	cmd.Printf("%d unchanged\n", len(d.Unchanged))
	return nil
}
