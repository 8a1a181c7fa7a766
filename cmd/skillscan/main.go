package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skillscan/skillscan/internal/config"
	"github.com/skillscan/skillscan/internal/logs"
)

var (
	configFile   string
	dataDir      string
	logLevel     string
	outputFlag   string
	jsonFlag     bool
	otlpEndpoint string

	version = "v0.1.0" // injected by -ldflags during build
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "skillscan",
		Short:   "Static security scanner for agent skills, extensions, and MCP servers",
		Version: version,
	}

	root.PersistentFlags().StringVar(&configFile, "config", "", "path to config file")
	root.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (scan cache, result store)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
	root.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "output format: table, json, yaml")
	root.PersistentFlags().BoolVar(&jsonFlag, "json", false, "shorthand for --output json")
	root.PersistentFlags().StringVar(&otlpEndpoint, "otlp-endpoint", "", "ship orchestrator trace spans to this OTLP/HTTP collector instead of discarding them")

	root.AddCommand(newScanCmd())
	root.AddCommand(newDiffCmd())
	root.AddCommand(newQueryCmd())
	root.AddCommand(newRulesCmd())

	return root
}

// loadConfig resolves configuration the same way every subcommand needs:
// explicit --config file, else discovered .skillscan.yaml, else defaults.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	return logs.SetupLogger(cfg.Logging)
}
