// Package config loads oadesk settings from ~/.oadesk/config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/oadesk/internal/ui"
)

const (
	BackendMock = "mock"
	BackendHTTP = "http"

	StoreMemory = "memory"
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

// Config holds all oadesk configuration.
type Config struct {
	// Backend selects the data access layer: mock or http.
	Backend string       `yaml:"backend"`
	API     APIConfig    `yaml:"api"`
	Mock    MockConfig   `yaml:"mock"`
	Log     LogConfig    `yaml:"log"`
	Server  ServerConfig `yaml:"server"`
	Theme   string       `yaml:"theme"`
}

// APIConfig configures the HTTP data access layer.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
	Token   string `yaml:"-"`
	// TokenExpired is set when the saved token was skipped because its
	// expiry has passed.
	TokenExpired bool `yaml:"-"`
}

// MockConfig configures the in-process backend.
type MockConfig struct {
	// LatencyScale multiplies simulated delays; 0 disables them.
	LatencyScale float64 `yaml:"latency_scale"`
}

type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// ServerConfig configures `oadesk serve`.
type ServerConfig struct {
	Addr     string `yaml:"addr"`
	Store    string `yaml:"store"`
	DataPath string `yaml:"data_path"`
	Token    string `yaml:"token"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	logFile := ""
	if dir, err := Dir(); err == nil {
		logFile = filepath.Join(dir, "oadesk.log")
	}
	return Config{
		Backend: BackendMock,
		API: APIConfig{
			BaseURL: "http://localhost:8080",
			Timeout: "30s",
		},
		Mock:   MockConfig{LatencyScale: 1},
		Log:    LogConfig{File: logFile, Level: "info"},
		Server: ServerConfig{Addr: ":8080", Store: StoreMemory},
		Theme:  "classic",
	}
}

// Dir returns ~/.oadesk.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".oadesk"), nil
}

// DefaultPath returns ~/.oadesk/config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads path (DefaultPath when empty), falling back to defaults when the
// file is missing, then applies environment overrides and validates.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg as YAML to path.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := strings.TrimSpace(os.Getenv("OADESK_BACKEND")); v != "" {
		c.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv("OADESK_API_URL")); v != "" {
		c.API.BaseURL = v
	}
	if v, ok := os.LookupEnv("OADESK_LOG_FILE"); ok {
		c.Log.File = strings.TrimSpace(v)
	}
	ti, err := GetToken()
	switch {
	case err != nil:
		return fmt.Errorf("%w (run `oadesk auth logout` to reset)", err)
	case ti == nil:
	case ti.Expired(time.Now()):
		c.API.TokenExpired = true
	default:
		c.API.Token = ti.Token
	}
	return nil
}

// Validate rejects unknown enum values and unparsable durations.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendMock, BackendHTTP:
	default:
		return fmt.Errorf("config: unknown backend %q (want mock|http)", c.Backend)
	}
	switch c.Server.Store {
	case StoreMemory, StoreJSON, StoreSQLite:
	default:
		return fmt.Errorf("config: unknown server.store %q (want memory|json|sqlite)", c.Server.Store)
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if c.Theme != "" && !ui.ValidTheme(c.Theme) {
		return fmt.Errorf("config: unknown theme %q (want %s)", c.Theme, strings.Join(ui.Themes, "|"))
	}
	if c.Mock.LatencyScale < 0 {
		return fmt.Errorf("config: mock.latency_scale must not be negative")
	}
	return nil
}

// Timeout parses api.timeout; empty means no timeout.
func (c Config) Timeout() (time.Duration, error) {
	if c.API.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil {
		return 0, fmt.Errorf("config: api.timeout: %w", err)
	}
	return d, nil
}
