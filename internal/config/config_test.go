// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
version = "2.0.0"

[server]
host = "0.0.0.0"
port = 9000

[privacy]
epsilon = 2.0
default_level = 0.8

[signal]
channels = 4
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Privacy.Epsilon != 2.0 {
		t.Errorf("epsilon = %v, want 2.0", cfg.Privacy.Epsilon)
	}
	if cfg.Privacy.DefaultLevel != 0.8 {
		t.Errorf("default level = %v, want 0.8", cfg.Privacy.DefaultLevel)
	}
	// Unset values come from defaults.
	if cfg.Signal.SamplingRate != 256 {
		t.Errorf("sampling rate = %v, want default 256", cfg.Signal.SamplingRate)
	}
	if cfg.Logs.AuditCapacity != 10000 {
		t.Errorf("audit capacity = %d, want default 10000", cfg.Logs.AuditCapacity)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("NEUROGATE_PORT", "9999")
	t.Setenv("NEUROGATE_EPSILON", "0.25")
	t.Setenv("NEUROGATE_SEED_DEMO", "false")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Privacy.Epsilon != 0.25 {
		t.Errorf("epsilon = %v, want 0.25", cfg.Privacy.Epsilon)
	}
	if cfg.Demo.SeedPermissions {
		t.Error("demo seeding not disabled by env")
	}
}

func TestEnvOverridesIgnoreGarbage(t *testing.T) {
	t.Setenv("NEUROGATE_PORT", "not-a-port")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if cfg.Server.Port != 8000 {
		t.Errorf("port = %d, want default 8000 for a garbage override", cfg.Server.Port)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"negative epsilon", func(c *Config) { c.Privacy.Epsilon = -1 }, "privacy.epsilon"},
		{"delta out of range", func(c *Config) { c.Privacy.Delta = 1.5 }, "privacy.delta"},
		{"level out of range", func(c *Config) { c.Privacy.DefaultLevel = 2 }, "privacy.default_level"},
		{"too many channels", func(c *Config) { c.Signal.Channels = 64 }, "signal.channels"},
		{"zero duration", func(c *Config) { c.Signal.Duration = 0 }, "signal.duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() accepted an invalid config")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("Validate() = %q, want mention of %s", err, tt.field)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Server.Port = 8443
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML() error: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if loaded.Server.Port != 8443 {
		t.Errorf("round-tripped port = %d, want 8443", loaded.Server.Port)
	}
}

func TestOrigins(t *testing.T) {
	s := ServerConfig{CORSOrigins: "http://a.test, http://b.test ,"}
	got := s.Origins()
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Errorf("Origins() = %v", got)
	}
}
