package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"coin-guardian/internal/domain"
)

const (
	testGov   = "Vote111111111111111111111111111111111111111"
	testAlice = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	testBob   = "So11111111111111111111111111111111111111112"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "guardian.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_YAML(t *testing.T) {
	path := writeConfig(t, `
listenAddr: "127.0.0.1:9000"
useMemory: true
governanceId: "`+testGov+`"
participants:
  - "`+testAlice+`"
  - "`+testBob+`"
threshold: 2
metadata:
  symbol: "TST"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:9000" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.Threshold != 2 || len(cfg.Participants) != 2 {
		t.Errorf("threshold=%d participants=%d", cfg.Threshold, len(cfg.Participants))
	}
	if cfg.Metadata.Symbol != "TST" {
		t.Errorf("Metadata.Symbol = %q, want TST", cfg.Metadata.Symbol)
	}
	// Defaults survive for keys the file omits.
	if cfg.Metadata.Name != "Guardian Coin" {
		t.Errorf("Metadata.Name = %q, want default", cfg.Metadata.Name)
	}
	if cfg.MaxSupply != domain.DefaultMaxSupply {
		t.Errorf("MaxSupply = %d, want default", cfg.MaxSupply)
	}
	if cfg.MetricsAddr != DefaultMetricsAddr {
		t.Errorf("MetricsAddr = %q, want default", cfg.MetricsAddr)
	}
}

func TestLoadConfig_EnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, `
listenAddr: ":1111"
useMemory: true
governanceId: "`+testGov+`"
participants: ["`+testAlice+`"]
`)
	t.Setenv("GUARDIAN_LISTEN_ADDR", ":2222")
	t.Setenv("GUARDIAN_PARTICIPANTS", testAlice+","+testBob)
	t.Setenv("GUARDIAN_THRESHOLD", "2")
	t.Setenv("GUARDIAN_MAX_SUPPLY", "5000")
	t.Setenv("GUARDIAN_METADATA_ICON_URL", "https://example.com/i.png")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ListenAddr != ":2222" {
		t.Errorf("ListenAddr = %q, want :2222", cfg.ListenAddr)
	}
	if len(cfg.Participants) != 2 || cfg.Threshold != 2 {
		t.Errorf("participants=%v threshold=%d", cfg.Participants, cfg.Threshold)
	}
	if cfg.MaxSupply != 5000 {
		t.Errorf("MaxSupply = %d, want 5000", cfg.MaxSupply)
	}
	if cfg.Metadata.IconURL != "https://example.com/i.png" {
		t.Errorf("Metadata.IconURL = %q", cfg.Metadata.IconURL)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.UseMemory = true
		cfg.GovernanceID = testGov
		cfg.Participants = []string{testAlice, testBob}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"no storage", func(c *Config) { c.UseMemory = false }, false},
		{"postgres dsn", func(c *Config) { c.UseMemory = false; c.PostgresDSN = "postgres://localhost/db" }, true},
		{"missing governance", func(c *Config) { c.GovernanceID = "" }, false},
		{"bad participant", func(c *Config) { c.Participants = []string{"not-base58-0OIl"} }, false},
		{"threshold too high", func(c *Config) { c.Threshold = 3 }, false},
		{"bad timeout", func(c *Config) { c.ShutdownTimeout = "soon" }, false},
		{"zero max supply", func(c *Config) { c.MaxSupply = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestContext(t *testing.T) {
	if FromContext(context.Background()) != nil {
		t.Error("expected nil config in empty context")
	}
	cfg := DefaultConfig()
	ctx := WithContext(context.Background(), cfg)
	if FromContext(ctx) != cfg {
		t.Error("config not round-tripped through context")
	}
}
