package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = ".mealchat/config.yaml"

// ErrMissingBaseURL is reported by Warnings when no API base URL is set.
var ErrMissingBaseURL = errors.New("api base URL not configured (set MEALCHAT_API_URL or api.base_url)")

// Config holds all mealchat configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	UI      UIConfig      `yaml:"ui"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig configures the remote chat endpoint.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"` // "0s" disables the timeout
}

// UIConfig configures the chat interface.
type UIConfig struct {
	Theme       string `yaml:"theme"` // auto, light, dark
	Placeholder string `yaml:"placeholder"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	DebugMode bool   `yaml:"debug_mode"`
	Level     string `yaml:"level"`  // debug, info, warn, error
	Format    string `yaml:"format"` // json, console
	File      string `yaml:"file"`

	// Categories disables individual categories; unlisted ones are on.
	Categories map[string]bool `yaml:"categories,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Timeout: "0s",
		},
		UI: UIConfig{
			Theme:       "auto",
			Placeholder: "Type your ingredients...",
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
			Format:    "json",
			File:      ".mealchat/logs/mealchat.log",
		},
	}
}

// Load reads configuration from a YAML file, then applies a .env file from
// the working directory (if present) and environment overrides. A missing
// config file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// NEXT_PUBLIC_API_URL is honoured so an existing web deployment's .env works as-is.
	if u := os.Getenv("NEXT_PUBLIC_API_URL"); u != "" {
		c.API.BaseURL = u
	}
	if u := os.Getenv("MEALCHAT_API_URL"); u != "" {
		c.API.BaseURL = u
	}
	if t := os.Getenv("MEALCHAT_TIMEOUT"); t != "" {
		c.API.Timeout = t
	}
	if theme := os.Getenv("MEALCHAT_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if os.Getenv("MEALCHAT_DEBUG") == "1" {
		c.Logging.DebugMode = true
		c.Logging.Level = "debug"
	}
}

// GetTimeout returns the API timeout. Zero means no timeout.
func (c *Config) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// ValidThemes lists the accepted ui.theme values.
var ValidThemes = []string{"auto", "light", "dark"}

// ValidLevels lists the accepted logging.level values.
var ValidLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration. An empty base URL is allowed; see
// Warnings.
func (c *Config) Validate() error {
	if c.API.BaseURL != "" {
		u, err := url.Parse(c.API.BaseURL)
		if err != nil {
			return fmt.Errorf("invalid api base URL %q: %w", c.API.BaseURL, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("invalid api base URL %q: scheme must be http or https", c.API.BaseURL)
		}
		if u.Host == "" {
			return fmt.Errorf("invalid api base URL %q: missing host", c.API.BaseURL)
		}
	}

	if c.API.Timeout != "" {
		d, err := time.ParseDuration(c.API.Timeout)
		if err != nil {
			return fmt.Errorf("invalid api timeout %q: %w", c.API.Timeout, err)
		}
		if d < 0 {
			return fmt.Errorf("invalid api timeout %q: must not be negative", c.API.Timeout)
		}
	}

	if !contains(ValidThemes, c.UI.Theme) {
		return fmt.Errorf("invalid ui theme: %s (valid: %v)", c.UI.Theme, ValidThemes)
	}
	if !contains(ValidLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLevels)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %s (valid: json, console)", c.Logging.Format)
	}
	if c.Logging.DebugMode && c.Logging.File == "" {
		return fmt.Errorf("logging.file is required when debug_mode is on")
	}

	return nil
}

// Warnings reports non-fatal configuration problems.
func (c *Config) Warnings() []error {
	var ws []error
	if strings.TrimSpace(c.API.BaseURL) == "" {
		ws = append(ws, ErrMissingBaseURL)
	}
	return ws
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
