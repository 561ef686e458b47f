package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names read outside the FISH_ prefix.
const (
	EnvConfigFile = "FISH_CONFIG"
	EnvDotEnvFile = "FISH_ENV_FILE"
)

// Load builds a Config by layering sources.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if FISH_CONFIG is set
//  3. SUPABASE_URL / SUPABASE_SERVICE_ROLE_KEY
//  4. env (prefix FISH_)
//
// A .env file (or FISH_ENV_FILE) is loaded into the process environment
// first; variables that are already set win over it.
func Load(_ context.Context) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	base := New()
	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// SUPABASE_URL -> supabase_url, SUPABASE_SERVICE_ROLE_KEY -> supabase_service_role_key
	supabase := env.Provider("SUPABASE_", ".", strings.ToLower)
	if err := k.Load(supabase, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// FISH_ADDR -> addr, FISH_VERBOSE_LOGGING -> verbose_logging, ...
	// Underscores are preserved to match koanf tags on the struct.
	prefixed := env.Provider("FISH_", ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), "fish_")
	})
	if err := k.Load(prefixed, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv() error {
	path := os.Getenv(EnvDotEnvFile)
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("%w: %w: %s: %w", ErrLoadConfig, ErrDotEnv, path, err)
}
