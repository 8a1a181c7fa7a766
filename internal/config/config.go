package config

import "encoding/json"

// Config is the scanner's top-level configuration, loaded by Load/
// LoadFromFile and consumed by the CLI to build an orchestrator.Options.
type Config struct {
	DataDir string `json:"data_dir" mapstructure:"data-dir"`

	// RuleDirs are additional directories scanned for *.yaml rule files on
	// top of the built-in corpus.
	RuleDirs []string `json:"rule_dirs,omitempty" mapstructure:"rule-dirs"`

	// Workers overrides the scheduler's default worker count. Zero means
	// "use the computed default".
	Workers int `json:"workers,omitempty" mapstructure:"workers"`

	// CacheTTL is the Scan Cache's entry lifetime, as a Go duration string
	// (e.g. "168h"). Empty means "use the cache's own default".
	CacheTTL string `json:"cache_ttl,omitempty" mapstructure:"cache-ttl"`

	// MCP controls collection against MCP server targets.
	MCP MCPConfig `json:"mcp,omitempty" mapstructure:"mcp"`

	// CustomPatterns are user-supplied detection patterns layered on top of
	// the built-in rule corpus.
	CustomPatterns []CustomPattern `json:"custom_patterns,omitempty" mapstructure:"custom-patterns"`

	// ConfidenceThreshold is the minimum confidence score a finding must
	// meet to survive meta-filtering, in [0, 1]. Scoring and filtering run
	// only when behavioral analysis is enabled.
	ConfidenceThreshold float64 `json:"confidence_threshold" mapstructure:"confidence-threshold"`

	// RetentionCeiling is the maximum number of scans the Result Store
	// keeps before evicting the oldest. Zero disables eviction.
	RetentionCeiling int `json:"retention_ceiling" mapstructure:"retention-ceiling"`

	// SeverityFloor is the minimum severity that causes a nonzero exit
	// code from `scan`. Empty disables the floor.
	SeverityFloor string `json:"severity_floor,omitempty" mapstructure:"severity-floor"`

	// Logging configures the structured logger.
	Logging *LogConfig `json:"logging,omitempty" mapstructure:"logging"`
}

// MCPConfig configures the MCP Collector & Virtualizer.
type MCPConfig struct {
	TimeoutSeconds   int      `json:"timeout_seconds,omitempty" mapstructure:"timeout-seconds"`
	AllowedMIMETypes []string `json:"allowed_mime_types,omitempty" mapstructure:"allowed-mime-types"`
	ReadResources    bool     `json:"read_resources" mapstructure:"read-resources"`
}

// LogConfig configures the zap-backed structured logger.
type LogConfig struct {
	Level         string `json:"level" mapstructure:"level"`
	EnableFile    bool   `json:"enable_file" mapstructure:"enable-file"`
	EnableConsole bool   `json:"enable_console" mapstructure:"enable-console"`
	Filename      string `json:"filename" mapstructure:"filename"`
	LogDir        string `json:"log_dir,omitempty" mapstructure:"log-dir"`
	MaxSize       int    `json:"max_size" mapstructure:"max-size"`
	MaxBackups    int    `json:"max_backups" mapstructure:"max-backups"`
	MaxAge        int    `json:"max_age" mapstructure:"max-age"`
	Compress      bool   `json:"compress" mapstructure:"compress"`
	JSONFormat    bool   `json:"json_format" mapstructure:"json-format"`
}

// DefaultConfig returns a Config with every field set to its documented
// default.
func DefaultConfig() *Config {
	return &Config{
		DataDir:             "", // set to ~/.skillscan by the loader
		Workers:             0,
		ConfidenceThreshold: 0.5,
		RetentionCeiling:    500,
		MCP: MCPConfig{
			TimeoutSeconds:   30,
			AllowedMIMETypes: []string{"text/plain", "text/markdown", "text/html", "application/json"},
		},
		Logging: &LogConfig{
			Level:         "info",
			EnableFile:    true,
			EnableConsole: true,
			Filename:      "skillscan.log",
			MaxSize:       10,
			MaxBackups:    5,
			MaxAge:        30,
			Compress:      true,
		},
	}
}

// Validate rejects unresolvable contradictions, repairing what it can.
func (c *Config) Validate() error {
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return &ValidationError{Field: "confidence_threshold", Message: "must be between 0 and 1"}
	}
	if c.RetentionCeiling < 0 {
		c.RetentionCeiling = 0
	}
	if c.Workers < 0 {
		c.Workers = 0
	}
	if c.MCP.TimeoutSeconds <= 0 {
		c.MCP.TimeoutSeconds = 30
	}
	if c.Logging == nil {
		c.Logging = DefaultConfig().Logging
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	return json.Marshal((*Alias)(c))
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Config) UnmarshalJSON(data []byte) error {
	type Alias Config
	aux := &struct{ *Alias }{Alias: (*Alias)(c)}
	return json.Unmarshal(data, aux)
}

// CustomPattern is a user-supplied detection pattern, validated and
// compiled by internal/security/patterns.LoadCustomPatterns.
type CustomPattern struct {
	Name     string   `json:"name" mapstructure:"name"`
	Regex    string   `json:"regex,omitempty" mapstructure:"regex"`
	Keywords []string `json:"keywords,omitempty" mapstructure:"keywords"`
	Severity string   `json:"severity,omitempty" mapstructure:"severity"`
	Category string   `json:"category,omitempty" mapstructure:"category"`
}
