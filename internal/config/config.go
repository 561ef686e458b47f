// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a .env file, an optional YAML file and the environment on top.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"strings"
)

// Store kinds accepted by the "store" key.
const (
	StoreAuto      = "auto"
	StoreMemory    = "memory"
	StorePostgres  = "postgres"
	StorePostgREST = "postgrest"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// BasePath is where the fish endpoint is mounted.
	BasePath string `koanf:"base_path"`

	// VerboseLogging logs every request's method, payload and outcome at info level.
	VerboseLogging bool `koanf:"verbose_logging"`

	// Store picks the backing store: auto, memory, postgres or postgrest.
	Store string `koanf:"store"`

	// Table is the name of the fish table in the managed database.
	Table string `koanf:"table"`

	// DatabaseURL is a Postgres connection string for the postgres store.
	DatabaseURL string `koanf:"database_url"`

	// SupabaseURL and SupabaseServiceRoleKey reach the database's REST interface.
	SupabaseURL            string `koanf:"supabase_url"`
	SupabaseServiceRoleKey string `koanf:"supabase_service_role_key"`

	// StoreHTTPTimeoutMS bounds postgrest calls; 0 leaves them unbounded.
	StoreHTTPTimeoutMS int `koanf:"store_http_timeout_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Addr:      ":9080",
		BasePath:  "/fish",
		Store:     StoreAuto,
		Table:     "fish",
	}
}

// StoreKind resolves "auto" to a concrete store: postgres when a database URL
// is configured, postgrest when a Supabase URL is, memory otherwise.
func (c *Config) StoreKind() string {
	kind := strings.ToLower(strings.TrimSpace(c.Store))
	if kind != "" && kind != StoreAuto {
		return kind
	}
	switch {
	case c.DatabaseURL != "":
		return StorePostgres
	case c.SupabaseURL != "":
		return StorePostgREST
	default:
		return StoreMemory
	}
}

// Validate checks the loaded configuration for inconsistencies.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("%w: base_path must start with /", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Table) == "" {
		return fmt.Errorf("%w: table must not be empty", ErrInvalidConfig)
	}
	if c.StoreHTTPTimeoutMS < 0 {
		return fmt.Errorf("%w: store_http_timeout_ms must not be negative", ErrInvalidConfig)
	}

	switch c.StoreKind() {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: postgres store requires database_url", ErrInvalidConfig)
		}
	case StorePostgREST:
		if c.SupabaseURL == "" || c.SupabaseServiceRoleKey == "" {
			return fmt.Errorf("%w: postgrest store requires SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	}
	return nil
}
