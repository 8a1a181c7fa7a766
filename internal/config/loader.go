package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultDataDir = ".skillscan"
	ConfigFileName = ".skillscan.yaml"
)

// LoadFromFile loads configuration from a specific file, falling back to
// defaults for anything the file doesn't set.
func LoadFromFile(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := finishLoad(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load resolves configuration with the precedence: an explicit file passed
// via the "config" viper key, else a discovered .skillscan.yaml, else
// SKILLSCAN_* environment variables, else built-in defaults.
func Load() (*Config, error) {
	cfg := DefaultConfig()
	setupViper()

	configPath := viper.GetString("config")
	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if found, _, err := findAndLoadConfigFile(cfg); err != nil {
		return nil, err
	} else if !found {
		if err := viper.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := finishLoad(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func finishLoad(cfg *Config) error {
	if cfg.DataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(homeDir, DefaultDataDir)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", cfg.DataDir, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// setupViper configures viper's environment-variable handling: SKILLSCAN_*
// overrides any key, with "-" in a flag name mapped to "_" in the
// environment variable.
func setupViper() {
	viper.SetEnvPrefix("SKILLSCAN")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	viper.SetDefault("confidence-threshold", 0.5)
	viper.SetDefault("retention-ceiling", 500)
	viper.SetDefault("config", "")
}

// findAndLoadConfigFile looks for .skillscan.yaml in the working directory
// and the home data directory, in that order.
func findAndLoadConfigFile(cfg *Config) (found bool, path string, err error) {
	locations := []string{ConfigFileName, filepath.Join(".", ConfigFileName)}
	if homeDir, homeErr := os.UserHomeDir(); homeErr == nil {
		locations = append(locations, filepath.Join(homeDir, DefaultDataDir, ConfigFileName))
	}

	for _, location := range locations {
		if _, statErr := os.Stat(location); statErr == nil {
			return true, location, loadConfigFile(location, cfg)
		}
	}
	return false, "", nil
}

// loadConfigFile loads configuration from a JSON file. An empty file
// (including /dev/null) is treated as "use defaults only".
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// SaveConfig writes cfg as indented JSON to path, creating parent
// directories as needed.
func SaveConfig(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GetConfigPath returns the path to the configuration file in dataDir,
// defaulting dataDir to the user's home data directory when empty.
func GetConfigPath(dataDir string) string {
	if dataDir == "" {
		homeDir, _ := os.UserHomeDir()
		dataDir = filepath.Join(homeDir, DefaultDataDir)
	}
	return filepath.Join(dataDir, ConfigFileName)
}

// LoadOrCreateConfig loads configuration from dataDir, writing a fresh
// default config file there first if none exists yet.
func LoadOrCreateConfig(dataDir string) (*Config, error) {
	configPath := GetConfigPath(dataDir)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.DataDir = dataDir
		if err := SaveConfig(cfg, configPath); err != nil {
			return nil, fmt.Errorf("failed to create initial config: %w", err)
		}
		return cfg, nil
	}

	return LoadFromFile(configPath)
}
