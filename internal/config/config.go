// Package config loads Warden configuration from file and environment.
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/opencorrections/warden/internal/domain"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. tier defaults (domain.DefaultConfig / domain.ProConfig)
//  2. file (YAML) at path, or WARDEN_CONFIG if path is empty
//  3. env (prefix WARDEN_, dots as separators: WARDEN_SERVER.PORT)
func Load(path string) (*domain.Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv("WARDEN_CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	envProvider := env.Provider("WARDEN_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "warden_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	// Pick tier defaults before overlaying file and env values
	base := domain.DefaultConfig()
	if strings.EqualFold(k.String("tier"), string(domain.TierPro)) {
		base = domain.ProConfig()
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the loaded configuration for usable values.
func Validate(cfg *domain.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return errors.New("server.port must be between 1 and 65535")
	}
	if cfg.Tier != domain.TierCommunity && cfg.Tier != domain.TierPro {
		return errors.New("tier must be community or pro")
	}
	if cfg.Windows.IncidentWindow <= 0 {
		return errors.New("windows.incidentWindow must be positive")
	}
	if cfg.Windows.RatingWindow <= 0 {
		return errors.New("windows.ratingWindow must be positive")
	}
	if cfg.Auth.SigningKey == "" {
		return errors.New("auth.signingKey is required")
	}
	return nil
}
