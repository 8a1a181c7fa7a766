package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/skillscan/skillscan/internal/cache"
	"github.com/skillscan/skillscan/internal/cli/output"
	"github.com/skillscan/skillscan/internal/config"
	"github.com/skillscan/skillscan/internal/discover"
	"github.com/skillscan/skillscan/internal/mcpscan"
	"github.com/skillscan/skillscan/internal/metrics"
	"github.com/skillscan/skillscan/internal/model"
	"github.com/skillscan/skillscan/internal/orchestrator"
	"github.com/skillscan/skillscan/internal/report"
	"github.com/skillscan/skillscan/internal/rules"
	"github.com/skillscan/skillscan/internal/scheduler"
	"github.com/skillscan/skillscan/internal/secretstore"
	"github.com/skillscan/skillscan/internal/storage"
	"github.com/skillscan/skillscan/internal/target"
)

func newScanCmd() *cobra.Command {
	var (
		mcpConfigPath string
		fix           bool
		noCache       bool
		behavioral    bool
		severityFloor string
		metricsAddr   string
		sarif         bool
	)

	cmd := &cobra.Command{
		Use:   "scan [root]...",
		Short: "Scan one or more skills, extensions, or MCP servers for security findings",
		Args:  cobra.ArbitraryArgs,
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

			shutdownTracing, err := setupTracing(cmd.Context(), otlpEndpoint)
			if err != nil {
				return fmt.Errorf("setup tracing: %w", err)
			}
			defer shutdownTracing(context.Background())

			if metricsAddr != "" {
				go serveMetrics(metricsAddr, logger)
			}

			targets := discover.Paths(args)
			if mcpConfigPath != "" {
				mcpTargets, skipped, err := discover.ImportMCPConfig(mcpConfigPath)
				if err != nil {
					return fmt.Errorf("import mcp config: %w", err)
				}
				for _, name := range skipped {
					logger.Warn("skillscan: skipping stdio-launched mcp server, no network endpoint to collect", zap.String("name", name))
				}
				targets = append(targets, mcpTargets...)
			}
			if len(targets) == 0 {
				return fmt.Errorf("no targets given: pass one or more paths, or --mcp-config")
			}

			engine, ruleVersion, err := buildEngine(cfg, logger)
			if err != nil {
				return err
			}

			floor := rules.Severity(severityFloor)
			if severityFloor != "" && !floor.Valid() {
				return fmt.Errorf("invalid --severity-floor %q (want LOW, MEDIUM, HIGH, or CRITICAL)", severityFloor)
			}
			if cfg.SeverityFloor != "" && severityFloor == "" {
				floor = rules.Severity(cfg.SeverityFloor)
			}

			var cacheManager *cache.Manager
			if !noCache {
				cacheManager, err = openCache(cfg, logger)
				if err != nil {
					return fmt.Errorf("open scan cache: %w", err)
				}
			}

			storeManager, err := storage.NewManager(cfg.DataDir, cfg.RetentionCeiling, logger.Sugar())
			if err != nil {
				return fmt.Errorf("open result store: %w", err)
			}
			defer storeManager.Close()

			opts := orchestrator.Options{
				Cache:           cacheManager,
				UseBehavioral:   behavioral,
				ScoreConfidence: behavioral,
				MinConfidence:   cfg.ConfidenceThreshold,
				SeverityFloor:   floor,
				Fix:             fix,
				SchedulerOptions: scheduler.Options{
					Workers: cfg.Workers,
				},
				TargetOptions: target.Options{
					MCP: mcpscan.Options{
						Timeout:          time.Duration(cfg.MCP.TimeoutSeconds) * time.Second,
						AllowedMIMETypes: toSet(cfg.MCP.AllowedMIMETypes),
						Categories: mcpscan.Categories{
							Tools: true, Prompts: true, Instructions: true,
							Resources: cfg.MCP.ReadResources, ReadResources: cfg.MCP.ReadResources,
						},
					},
					Secrets: secretsIfAvailable(),
				},
				LineTextOf: readLine,
			}

			orc := orchestrator.New(engine, ruleVersion, logger)
			result, err := orc.Scan(cmd.Context(), targets, opts, nil)
			if err != nil {
				return err
			}

			record := model.ScanRecord{
				ID:          storage.NewScanID(),
				StartedAt:   time.Now().Add(-time.Duration(result.ElapsedMS) * time.Millisecond),
				FinishedAt:  time.Now(),
				RuleVersion: ruleVersion,
				Options:     map[string]string{"severity_floor": string(floor)},
				Result:      result,
			}
			if err := storeManager.SaveScan(record); err != nil {
				logger.Warn("skillscan: failed to persist scan record", zap.Error(err))
			}

			if err := renderScan(cmd, result, sarif); err != nil {
				return err
			}

			exitCode := orchestrator.ExitCode(result, floor)
			if exitCode != 0 {
				os.Exit(exitCode)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mcpConfigPath, "mcp-config", "", "path to an mcp.json-style file listing MCP servers to collect from")
	cmd.Flags().BoolVar(&fix, "fix", false, "comment out the offending line for findings that support a narrow fix")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the scan cache")
	cmd.Flags().BoolVar(&behavioral, "behavioral", true, "run heuristic analyzers and confidence scoring alongside signature matching")
	cmd.Flags().StringVar(&severityFloor, "severity-floor", "", "minimum severity that causes a nonzero exit code (LOW, MEDIUM, HIGH, CRITICAL)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while scanning (e.g. :9090)")
	cmd.Flags().BoolVar(&sarif, "sarif", false, "render findings as SARIF 2.1.0 instead of the table/JSON/YAML output")

	return cmd
}

func renderScan(cmd *cobra.Command, result model.ScanResult, sarif bool) error {
	if sarif {
		data, err := report.MarshalSARIF(result)
		if err != nil {
			return err
		}
		cmd.Println(string(data))
		return nil
	}

	format := output.ResolveFormat(outputFlag, jsonFlag)
	if format == "json" {
		data, err := report.MarshalJSON(result)
		if err != nil {
			return err
		}
		cmd.Println(string(data))
		return nil
	}

	formatter, err := output.NewFormatter(format)
	if err != nil {
		return err
	}

	doc := report.BuildDocument(result)
	var rendered string
	if format == "table" {
		rendered, err = formatter.FormatTable(findingsTableHeaders, findingsTableRows(doc.Findings))
	} else {
		rendered, err = formatter.Format(doc)
	}
	if err != nil {
		return err
	}
	cmd.Println(rendered)
	return nil
}

var findingsTableHeaders = []string{"SEVERITY", "RULE", "FILE", "LINE", "MESSAGE"}

func findingsTableRows(findings []model.Finding) [][]string {
	rows := make([][]string, 0, len(findings))
	for _, f := range findings {
		line := ""
		if f.Line > 0 {
			line = fmt.Sprintf("%d", f.Line)
		}
		rows = append(rows, []string{string(f.Severity), f.RuleID, f.File, line, f.Message})
	}
	return rows
}

func openCache(cfg *config.Config, logger *zap.Logger) (*cache.Manager, error) {
	dbPath := filepath.Join(cfg.DataDir, "cache.db")
	db, err := bbolt.Open(dbPath, 0o644, &bbolt.Options{Timeout: 10 * time.Second})
	if err != nil {
		return nil, err
	}
	var ttl time.Duration
	if cfg.CacheTTL != "" {
		ttl, err = time.ParseDuration(cfg.CacheTTL)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("parse cache-ttl %q: %w", cfg.CacheTTL, err)
		}
	}
	return cache.NewManager(db, logger, ttl)
}

// secretsIfAvailable returns a keychain-backed Store only when the OS
// keychain backend actually responds, so headless/CI hosts fall back to
// whatever bearer token was supplied explicitly on the target or config
// instead of paying a keychain round-trip per MCP target that will never
// resolve.
func secretsIfAvailable() *secretstore.Store {
	store := secretstore.New()
	if !store.Available() {
		return nil
	}
	return store
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

// readLine is the confidence scorer's comment-detection hook; the CLI
// re-reads from disk on demand rather than threading file contents through
// every ContentItem, since it is only consulted for findings that survive
// to confidence scoring.
func readLine(file string, line int) string {
	data, err := os.ReadFile(file)
	if err != nil || line <= 0 {
		return ""
	}
	start := 0
	current := 1
	for i, b := range data {
		if current == line {
			end := i
			for end < len(data) && data[end] != '\n' {
				end++
			}
			return string(data[start:end])
		}
		if b == '\n' {
			current++
			start = i + 1
		}
	}
	return ""
}

func serveMetrics(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("skillscan: metrics server stopped", zap.Error(err))
	}
}
