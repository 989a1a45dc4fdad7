// Package config provides configuration management for abacus-service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config represents the service configuration.
type Config struct {
	Service    ServiceConfig    `yaml:"service" toml:"service"`
	API        APIConfig        `yaml:"api" toml:"api"`
	MCP        MCPConfig        `yaml:"mcp" toml:"mcp"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
	Calculator CalculatorConfig `yaml:"calculator" toml:"calculator"`
}

// ServiceConfig contains service-level settings.
type ServiceConfig struct {
	Host    string `yaml:"host" toml:"host"`
	Port    int    `yaml:"port" toml:"port"`
	DataDir string `yaml:"data_dir" toml:"data_dir"`
}

// APIConfig contains API settings.
type APIConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	APIKey  string `yaml:"api_key" toml:"api_key"`
}

// MCPConfig contains MCP server settings.
type MCPConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled"`
}

// LoggingConfig contains logger settings.
type LoggingConfig struct {
	Level      string   `yaml:"level" toml:"level"`
	Format     string   `yaml:"format" toml:"format"` // json or text
	Output     []string `yaml:"output" toml:"output"` // console, stdout, file, both
	TimeFormat string   `yaml:"time_format" toml:"time_format"`
	MaxSizeMB  int      `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int      `yaml:"max_backups" toml:"max_backups"`
}

// CalculatorConfig contains calculator session settings.
type CalculatorConfig struct {
	ErrorText   string `yaml:"error_text" toml:"error_text"`
	MaxSessions int    `yaml:"max_sessions" toml:"max_sessions"`
	// SessionIdleTimeout is a Go duration string, e.g. "30m". Empty disables pruning.
	SessionIdleTimeout string `yaml:"session_idle_timeout" toml:"session_idle_timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			Host:    "127.0.0.1",
			Port:    8430,
			DataDir: DefaultDataDir(),
		},
		API: APIConfig{
			Enabled: true,
			APIKey:  "", // Empty = no auth for localhost
		},
		MCP: MCPConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"console"},
		},
		Calculator: CalculatorConfig{
			ErrorText:          "Error",
			MaxSessions:        1000,
			SessionIdleTimeout: "30m",
		},
	}
}

// DefaultDataDir returns the default data directory based on OS.
func DefaultDataDir() string {
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "abacus-service")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "AppData", "Roaming", "abacus-service")
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "abacus-service")
	default: // linux and others
		xdgData := os.Getenv("XDG_DATA_HOME")
		if xdgData != "" {
			return filepath.Join(xdgData, "abacus-service")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".abacus-service")
	}
}

// DefaultConfigPath returns the default config file path. A config.toml in
// the data directory is used when present, config.yaml otherwise.
func DefaultConfigPath() string {
	tomlPath := filepath.Join(DefaultDataDir(), "config.toml")
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath
	}
	return filepath.Join(DefaultDataDir(), "config.yaml")
}

// Load loads configuration from a file. The format follows the file
// extension: .toml is TOML, anything else YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if no config file exists
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand environment variables in the config
	expanded := os.ExpandEnv(string(data))

	if isTOML(path) {
		if _, err := toml.Decode(expanded, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	} else if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	// Expand tilde in data_dir
	if strings.HasPrefix(cfg.Service.DataDir, "~/") {
		home, _ := os.UserHomeDir()
		cfg.Service.DataDir = filepath.Join(home, cfg.Service.DataDir[2:])
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves the configuration to a file in the format its extension names.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	var data []byte
	if isTOML(path) {
		var sb strings.Builder
		if err := toml.NewEncoder(&sb).Encode(c); err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		data = []byte(sb.String())
	} else {
		var err error
		data, err = yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Service.Port < 0 || c.Service.Port > 65535 {
		return fmt.Errorf("invalid service port %d", c.Service.Port)
	}
	if c.Calculator.MaxSessions < 0 {
		return fmt.Errorf("invalid max_sessions %d", c.Calculator.MaxSessions)
	}
	if _, err := c.IdleTimeout(); err != nil {
		return err
	}
	return nil
}

// IdleTimeout parses the session idle timeout. Zero disables pruning.
func (c *Config) IdleTimeout() (time.Duration, error) {
	if c.Calculator.SessionIdleTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Calculator.SessionIdleTimeout)
	if err != nil {
		return 0, fmt.Errorf("parse session_idle_timeout: %w", err)
	}
	return d, nil
}

// Address returns the full address string for the HTTP server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Service.Host, c.Service.Port)
}

// LogPath returns the path to the service log directory.
func (c *Config) LogPath() string {
	return filepath.Join(c.Service.DataDir, "logs")
}

// PIDPath returns the path to the PID file of a running service.
func (c *Config) PIDPath() string {
	return filepath.Join(c.Service.DataDir, "abacus-service.pid")
}

// EnsureDirectories creates all necessary directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Service.DataDir,
		c.LogPath(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
