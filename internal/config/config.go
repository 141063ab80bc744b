package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete GPA configuration
type Config struct {
	Version int    `json:"version" mapstructure:"version"`
	DataDir string `json:"dataDir" mapstructure:"dataDir"`

	Git       GitConfig       `json:"git" mapstructure:"git"`
	Detectors DetectorsConfig `json:"detectors" mapstructure:"detectors"`
	Scanner   ScannerConfig   `json:"scanner" mapstructure:"scanner"`
	Vault     VaultConfig     `json:"vault" mapstructure:"vault"`
	Logging   LoggingConfig   `json:"logging" mapstructure:"logging"`
}

// GitConfig contains commit-history reader configuration
type GitConfig struct {
	MaxCommits     int `json:"maxCommits" mapstructure:"maxCommits"`
	TimeoutSeconds int `json:"timeoutSeconds" mapstructure:"timeoutSeconds"`
}

// DetectorsConfig contains pattern-detector configuration
type DetectorsConfig struct {
	// KeywordsFile optionally points at a YAML file overriding the
	// built-in language keyword sets. Empty means use the defaults.
	KeywordsFile string `json:"keywordsFile" mapstructure:"keywordsFile"`
	TemporalDays int    `json:"temporalDays" mapstructure:"temporalDays"`
}

// ScannerConfig contains external vulnerability-scanner configuration
type ScannerConfig struct {
	Binary         string   `json:"binary" mapstructure:"binary"`
	Args           []string `json:"args" mapstructure:"args"`
	TimeoutMinutes int      `json:"timeoutMinutes" mapstructure:"timeoutMinutes"`
}

// VaultConfig contains documentation-vault client configuration
type VaultConfig struct {
	BaseURL        string `json:"baseUrl" mapstructure:"baseUrl"`
	Token          string `json:"token" mapstructure:"token"`
	TimeoutSeconds int    `json:"timeoutSeconds" mapstructure:"timeoutSeconds"`
	Compress       bool   `json:"compress" mapstructure:"compress"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

const currentConfigVersion = 1

// DefaultDataDir returns the default state directory (~/.gpa)
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gpa"
	}
	return filepath.Join(home, ".gpa")
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: currentConfigVersion,
		DataDir: DefaultDataDir(),
		Git: GitConfig{
			MaxCommits:     50,
			TimeoutSeconds: 30,
		},
		Detectors: DetectorsConfig{
			KeywordsFile: "",
			TemporalDays: 30,
		},
		Scanner: ScannerConfig{
			Binary:         "",
			Args:           []string{},
			TimeoutMinutes: 15,
		},
		Vault: VaultConfig{
			BaseURL:        "",
			Token:          "",
			TimeoutSeconds: 60,
			Compress:       true,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from <dataDir>/config.json.
// A missing file is not an error; defaults are returned.
func LoadConfig(dataDir string) (*Config, error) {
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}

	v := viper.New()
	v.SetDefault("version", currentConfigVersion)
	v.SetDefault("dataDir", dataDir)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(dataDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			cfg := DefaultConfig()
			cfg.DataDir = dataDir
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}

	return cfg, nil
}

// Save writes the configuration to <dataDir>/config.json
func (c *Config) Save() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(c.DataDir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != currentConfigVersion {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Git.MaxCommits <= 0 {
		return &ConfigError{Field: "git.maxCommits", Message: "must be positive"}
	}
	if c.Scanner.TimeoutMinutes <= 0 {
		return &ConfigError{Field: "scanner.timeoutMinutes", Message: "must be positive"}
	}
	switch c.Logging.Format {
	case "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be 'human' or 'json'"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
