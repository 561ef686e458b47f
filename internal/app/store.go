package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/fishery/internal/adapters/repository"
	"github.com/okian/fishery/internal/config"
)

// OpenStore builds the store selected by cfg and returns it with its
// resolved kind.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.Store, string, error) {
	kind := cfg.StoreKind()
	opts := []repository.Option{repository.WithTable(cfg.Table)}

	switch kind {
	case config.StoreMemory:
		return repository.NewMemoryStore(opts...), kind, nil
	case config.StorePostgres:
		s, err := repository.NewPostgresStore(ctx, cfg.DatabaseURL, opts...)
		if err != nil {
			return nil, kind, fmt.Errorf("opening postgres store: %w", err)
		}
		return s, kind, nil
	case config.StorePostgREST:
		if cfg.StoreHTTPTimeoutMS > 0 {
			opts = append(opts, repository.WithTimeout(time.Duration(cfg.StoreHTTPTimeoutMS)*time.Millisecond))
		}
		s, err := repository.NewPostgRESTStore(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, opts...)
		if err != nil {
			return nil, kind, fmt.Errorf("opening postgrest store: %w", err)
		}
		return s, kind, nil
	default:
		return nil, kind, fmt.Errorf("%w: %q", repository.ErrUnknown, kind)
	}
}
