package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opencorrections/warden/internal/domain"
)

// writeConfigFile drops YAML into a temp file and returns its path.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "warden.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestCommunityTierDefaults(t *testing.T) {
	path := writeConfigFile(t, `
auth:
  signingKey: test-key
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Tier != domain.TierCommunity {
		t.Errorf("expected community tier, got %s", cfg.Tier)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Repository.Driver != "sqlite" {
		t.Errorf("expected sqlite driver, got %s", cfg.Repository.Driver)
	}
	if cfg.Cache.Type != "memory" {
		t.Errorf("expected memory cache, got %s", cfg.Cache.Type)
	}
	if cfg.EventBus.Type != "channel" {
		t.Errorf("expected channel bus, got %s", cfg.EventBus.Type)
	}
	if cfg.Windows.IncidentWindow != 50 || cfg.Windows.RatingWindow != 10 || cfg.Windows.ReferenceTTL != 300 {
		t.Errorf("unexpected default windows: %+v", cfg.Windows)
	}
}

func TestProTierDefaults(t *testing.T) {
	path := writeConfigFile(t, `
tier: pro
auth:
  signingKey: test-key
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Tier != domain.TierPro {
		t.Errorf("expected pro tier, got %s", cfg.Tier)
	}
	if cfg.Repository.Driver != "postgres" {
		t.Errorf("expected postgres driver, got %s", cfg.Repository.Driver)
	}
	if cfg.Cache.Type != "redis" || !cfg.Cache.EnableTwoPhase {
		t.Errorf("unexpected pro cache config: %+v", cfg.Cache)
	}
	if cfg.EventBus.Type != "nats" {
		t.Errorf("expected nats bus, got %s", cfg.EventBus.Type)
	}
	if !cfg.Tracing.Enabled {
		t.Error("expected tracing enabled in pro tier")
	}
}

func TestFileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
windows:
  incidentWindow: 25
auth:
  signingKey: test-key
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090 from file, got %d", cfg.Server.Port)
	}
	if cfg.Windows.IncidentWindow != 25 {
		t.Errorf("expected incident window 25 from file, got %d", cfg.Windows.IncidentWindow)
	}
	// Untouched values keep their defaults.
	if cfg.Windows.RatingWindow != 10 {
		t.Errorf("expected default rating window 10, got %d", cfg.Windows.RatingWindow)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
auth:
  signingKey: test-key
`)

	t.Setenv("WARDEN_SERVER.PORT", "7070")
	t.Setenv("WARDEN_LOGGING.LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("expected env port 7070 to win, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected env log level debug, got %s", cfg.Logging.Level)
	}
}

func TestConfigPathFromEnv(t *testing.T) {
	path := writeConfigFile(t, `
server:
  host: 10.0.0.5
auth:
  signingKey: test-key
`)
	t.Setenv("WARDEN_CONFIG", path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Host != "10.0.0.5" {
		t.Errorf("expected host from WARDEN_CONFIG file, got %s", cfg.Server.Host)
	}
}

func TestMissingSigningKeyRejected(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 8080
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for missing signing key")
	}
	if !strings.Contains(err.Error(), "signingKey") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMissingFileRejected(t *testing.T) {
	if _, err := Load("/nonexistent/warden.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *domain.Config {
		cfg := domain.DefaultConfig()
		cfg.Auth.SigningKey = "test-key"
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*domain.Config)
		errSub string
	}{
		{"Valid", func(cfg *domain.Config) {}, ""},
		{"PortZero", func(cfg *domain.Config) { cfg.Server.Port = 0 }, "server.port"},
		{"PortTooHigh", func(cfg *domain.Config) { cfg.Server.Port = 70000 }, "server.port"},
		{"UnknownTier", func(cfg *domain.Config) { cfg.Tier = "enterprise" }, "tier"},
		{"ZeroIncidentWindow", func(cfg *domain.Config) { cfg.Windows.IncidentWindow = 0 }, "incidentWindow"},
		{"NegativeRatingWindow", func(cfg *domain.Config) { cfg.Windows.RatingWindow = -1 }, "ratingWindow"},
		{"EmptySigningKey", func(cfg *domain.Config) { cfg.Auth.SigningKey = "" }, "signingKey"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.errSub == "" {
				if err != nil {
					t.Errorf("expected valid config, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("expected error containing %q, got %v", tt.errSub, err)
			}
		})
	}
}
