package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillscan/skillscan/internal/cli/output"
	"github.com/skillscan/skillscan/internal/index"
	"github.com/skillscan/skillscan/internal/storage"
)

func newQueryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Full-text search over every indexed finding across all stored scans",
		Args:  cobra.ExactArgs(1),
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

			hits, err := storeManager.Query(args[0], limit)
			if err != nil {
				return err
			}

			format := output.ResolveFormat(outputFlag, jsonFlag)
			if format == "table" {
				return renderQueryTable(cmd, hits)
			}
			formatter, err := output.NewFormatter(format)
			if err != nil {
				return err
			}
			rendered, err := formatter.Format(hits)
			if err != nil {
				return err
			}
			cmd.Println(rendered)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of results to return")
	return cmd
}

func renderQueryTable(cmd *cobra.Command, hits []*index.SearchResult) error {
	formatter, err := output.NewFormatter("table")
	if err != nil {
		return err
	}
	headers := []string{"SCORE", "SEVERITY", "RULE", "FILE", "MESSAGE"}
	rows := make([][]string, 0, len(hits))
	for _, hit := range hits {
		rows = append(rows, []string{
			fmt.Sprintf("%.3f", hit.Score),
			hit.Finding.Severity,
			hit.Finding.RuleID,
			hit.Finding.File,
			hit.Finding.Message,
		})
	}
	rendered, err := formatter.FormatTable(headers, rows)
	if err != nil {
		return err
	}
	cmd.Println(rendered)
	return nil
}
