// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete neurogate configuration.
type Config struct {
	Version string `toml:"version"`

	Server  ServerConfig  `toml:"server"`
	Privacy PrivacyConfig `toml:"privacy"`
	Signal  SignalConfig  `toml:"signal"`
	Intent  IntentConfig  `toml:"intent"`
	Logs    LogsConfig    `toml:"logs"`
	Demo    DemoConfig    `toml:"demo"`
}

// ServerConfig contains the HTTP listener configuration.
type ServerConfig struct {
	// Host is the bind address.
	Host string `toml:"host"`
	// Port is the listen port.
	Port int `toml:"port"`
	// CORSOrigins is a comma-separated list of allowed origins.
	CORSOrigins string `toml:"cors_origins"`
	// RateLimitPerSec caps requests per second per client IP (0 disables).
	RateLimitPerSec float64 `toml:"rate_limit_per_sec"`
	// RateLimitBurst is the per-IP burst allowance.
	RateLimitBurst int `toml:"rate_limit_burst"`
}

// Origins parses the comma-separated CORS origin list.
func (s ServerConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(s.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PrivacyConfig contains the differential privacy parameters.
type PrivacyConfig struct {
	// Epsilon is the base privacy budget per query.
	Epsilon float64 `toml:"epsilon"`
	// Delta is the probability of a privacy breach.
	Delta float64 `toml:"delta"`
	// DefaultLevel is the starting privacy level in [0,1].
	DefaultLevel float64 `toml:"default_level"`
}

// SignalConfig contains EEG signal parameters.
type SignalConfig struct {
	// SamplingRate in Hz for synthetic generation.
	SamplingRate float64 `toml:"sampling_rate"`
	// Channels is the synthetic electrode count.
	Channels int `toml:"channels"`
	// Duration is the default synthetic signal length in seconds.
	Duration float64 `toml:"duration"`
}

// IntentConfig selects the classification strategy.
type IntentConfig struct {
	// ModelPath points to a trained inference artifact. Empty keeps the
	// rule-based classifier.
	ModelPath string `toml:"model_path"`
	// WatchModel hot-reloads the artifact when the file changes.
	WatchModel bool `toml:"watch_model"`
}

// LogsConfig bounds the in-process append-only logs.
type LogsConfig struct {
	// AuditCapacity is the permission audit ring size.
	AuditCapacity int `toml:"audit_capacity"`
	// ThreatCapacity is the threat log ring size.
	ThreatCapacity int `toml:"threat_capacity"`
}

// DemoConfig controls startup demo seeding.
type DemoConfig struct {
	// SeedPermissions grants a few example apps permissions at startup so
	// the API has data to show.
	SeedPermissions bool `toml:"seed_permissions"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8000,
			CORSOrigins:     "http://localhost:5500,http://127.0.0.1:5500",
			RateLimitPerSec: 50,
			RateLimitBurst:  100,
		},
		Privacy: PrivacyConfig{
			Epsilon:      1.0,
			Delta:        1e-5,
			DefaultLevel: 0.5,
		},
		Signal: SignalConfig{
			SamplingRate: 256,
			Channels:     8,
			Duration:     2.0,
		},
		Intent: IntentConfig{
			ModelPath:  "",
			WatchModel: true,
		},
		Logs: LogsConfig{
			AuditCapacity:  10000,
			ThreatCapacity: 10000,
		},
		Demo: DemoConfig{
			SeedPermissions: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the neurogate configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".neurogate"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir ensures the config directory exists.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the config file if present, falls back to defaults, applies
// environment overrides, and validates.
func Load() (*Config, error) {
	cfg := Default()

	path, err := Path()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to decode %s: %w", path, err)
			}
		}
	}

	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific TOML file with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaults.Server.Host
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaults.Server.Port
	}
	if cfg.Privacy.Epsilon == 0 {
		cfg.Privacy.Epsilon = defaults.Privacy.Epsilon
	}
	if cfg.Privacy.Delta == 0 {
		cfg.Privacy.Delta = defaults.Privacy.Delta
	}
	if cfg.Signal.SamplingRate == 0 {
		cfg.Signal.SamplingRate = defaults.Signal.SamplingRate
	}
	if cfg.Signal.Channels == 0 {
		cfg.Signal.Channels = defaults.Signal.Channels
	}
	if cfg.Signal.Duration == 0 {
		cfg.Signal.Duration = defaults.Signal.Duration
	}
	if cfg.Logs.AuditCapacity == 0 {
		cfg.Logs.AuditCapacity = defaults.Logs.AuditCapacity
	}
	if cfg.Logs.ThreatCapacity == 0 {
		cfg.Logs.ThreatCapacity = defaults.Logs.ThreatCapacity
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies NEUROGATE_* environment variables on top of
// the loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("NEUROGATE_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("NEUROGATE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("NEUROGATE_CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = v
	}
	if v := os.Getenv("NEUROGATE_EPSILON"); v != "" {
		if eps, err := strconv.ParseFloat(v, 64); err == nil {
			c.Privacy.Epsilon = eps
		}
	}
	if v := os.Getenv("NEUROGATE_PRIVACY_LEVEL"); v != "" {
		if level, err := strconv.ParseFloat(v, 64); err == nil {
			c.Privacy.DefaultLevel = level
		}
	}
	if v := os.Getenv("NEUROGATE_MODEL_PATH"); v != "" {
		c.Intent.ModelPath = v
	}
	if v := os.Getenv("NEUROGATE_SEED_DEMO"); v != "" {
		if seed, err := strconv.ParseBool(v); err == nil {
			c.Demo.SeedPermissions = seed
		}
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a TOML file.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# neurogate configuration file")
	fmt.Fprintln(file, "# Generated by neurogate - edit with care")
	fmt.Fprintln(file, "")

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, ValidationError{"server.port",
			fmt.Sprintf("must be 1-65535, got %d", c.Server.Port)})
	}
	if c.Server.RateLimitPerSec < 0 {
		errs = append(errs, ValidationError{"server.rate_limit_per_sec",
			"cannot be negative"})
	}
	if c.Privacy.Epsilon <= 0 {
		errs = append(errs, ValidationError{"privacy.epsilon",
			fmt.Sprintf("must be positive, got %v", c.Privacy.Epsilon)})
	}
	if c.Privacy.Delta <= 0 || c.Privacy.Delta >= 1 {
		errs = append(errs, ValidationError{"privacy.delta",
			fmt.Sprintf("must be in (0,1), got %v", c.Privacy.Delta)})
	}
	if c.Privacy.DefaultLevel < 0 || c.Privacy.DefaultLevel > 1 {
		errs = append(errs, ValidationError{"privacy.default_level",
			fmt.Sprintf("must be in [0,1], got %v", c.Privacy.DefaultLevel)})
	}
	if c.Signal.SamplingRate <= 0 {
		errs = append(errs, ValidationError{"signal.sampling_rate",
			fmt.Sprintf("must be positive, got %v", c.Signal.SamplingRate)})
	}
	if c.Signal.Channels < 1 || c.Signal.Channels > 16 {
		errs = append(errs, ValidationError{"signal.channels",
			fmt.Sprintf("must be 1-16, got %d", c.Signal.Channels)})
	}
	if c.Signal.Duration <= 0 {
		errs = append(errs, ValidationError{"signal.duration",
			fmt.Sprintf("must be positive, got %v", c.Signal.Duration)})
	}
	if c.Logs.AuditCapacity < 1 {
		errs = append(errs, ValidationError{"logs.audit_capacity",
			"must be at least 1"})
	}
	if c.Logs.ThreatCapacity < 1 {
		errs = append(errs, ValidationError{"logs.threat_capacity",
			"must be at least 1"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
