// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/fishery/internal/adapters/repository"
	"github.com/okian/fishery/internal/domain/model"
	"github.com/okian/fishery/pkg/logger"
	"github.com/okian/fishery/pkg/metrics"
)

// ErrNotStarted is returned by record operations before Start or after Stop.
var ErrNotStarted = errors.New("service not started")

// Service owns the fish store for the lifetime of the process and exposes
// the operations the HTTP API delegates to.
type Service struct {
	mu sync.RWMutex

	store     repository.Store
	storeKind string

	verboseLogging bool
	totalRecords   int

	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the backing store. Without it Start opens an empty memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithStoreKind names the store in logs, stats and metric labels.
func WithStoreKind(kind string) Option {
	return func(s *Service) {
		if kind != "" {
			s.storeKind = kind
		}
	}
}

// WithVerboseLogging turns on per-operation Info logs.
func WithVerboseLogging(enabled bool) Option {
	return func(s *Service) {
		s.verboseLogging = enabled
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		storeKind: "memory",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start verifies the store is reachable. It is idempotent.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}

	s.logger.Info(ctx, "starting fish service...", logger.String("store", s.storeKind))

	if p, ok := s.store.(repository.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("store %s unreachable: %w", s.storeKind, err)
		}
	}

	s.started = true
	s.logger.Info(ctx, "fish service started",
		logger.String("store", s.storeKind),
		logger.Bool("verboseLogging", s.verboseLogging),
	)
	return nil
}

// Stop closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping fish service...")

	if err := s.store.Close(); err != nil {
		s.logger.Warn(ctx, "closing store failed", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "fish service stopped")
}

// VerboseLogging reports whether per-request Info logs are enabled.
func (s *Service) VerboseLogging() bool {
	return s.verboseLogging
}

// Ping reports whether the store can serve requests.
func (s *Service) Ping(ctx context.Context) error {
	store, err := s.currentStore()
	if err != nil {
		return err
	}
	if p, ok := store.(repository.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// List returns every record ordered by Name ascending.
func (s *Service) List(ctx context.Context) ([]model.FishRecord, error) {
	store, err := s.currentStore()
	if err != nil {
		return nil, err
	}

	var out []model.FishRecord
	err = s.observe(ctx, "list", func() error {
		var lerr error
		out, lerr = store.List(ctx)
		return lerr
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.totalRecords = len(out)
	s.mu.Unlock()
	metrics.UpdateRecordsTotal(len(out))

	if s.verboseLogging {
		s.logger.Info(ctx, "fetched fish", logger.Int("count", len(out)))
	}
	return out, nil
}

// Create inserts rec; the store assigns its Id.
func (s *Service) Create(ctx context.Context, rec model.FishRecord) error {
	store, err := s.currentStore()
	if err != nil {
		return err
	}
	if err := s.observe(ctx, "create", func() error { return store.Create(ctx, rec) }); err != nil {
		return err
	}
	if s.verboseLogging {
		s.logger.Info(ctx, "fish added", logger.String("name", rec.Name))
	}
	return nil
}

// Update rewrites the record with rec.ID. Unknown ids succeed as no-ops.
func (s *Service) Update(ctx context.Context, rec model.FishRecord) error {
	store, err := s.currentStore()
	if err != nil {
		return err
	}
	if err := s.observe(ctx, "update", func() error { return store.Update(ctx, rec) }); err != nil {
		return err
	}
	if s.verboseLogging {
		s.logger.Info(ctx, "fish updated", logger.Int64("id", rec.ID), logger.String("name", rec.Name))
	}
	return nil
}

// Delete removes the record with id. Unknown ids succeed as no-ops.
func (s *Service) Delete(ctx context.Context, id int64) error {
	store, err := s.currentStore()
	if err != nil {
		return err
	}
	if err := s.observe(ctx, "delete", func() error { return store.Delete(ctx, id) }); err != nil {
		return err
	}
	if s.verboseLogging {
		s.logger.Info(ctx, "fish deleted", logger.Int64("id", id))
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"started":        s.started,
		"store":          s.storeKind,
		"verboseLogging": s.verboseLogging,
		"totalRecords":   s.totalRecords,
	}
}

func (s *Service) currentStore() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// observe times fn and records its outcome. Store failures are logged at
// Error level whatever the verbosity.
func (s *Service) observe(ctx context.Context, op string, fn func() error) error {
	start := time.Now()
	err := fn()
	latencyMs := float64(time.Since(start).Microseconds()) / 1000

	outcome := "ok"
	if err != nil {
		outcome = "error"
		s.logger.Error(ctx, "store operation failed",
			logger.String("store", s.storeKind),
			logger.String("operation", op),
			logger.Error(err),
		)
	}
	metrics.RecordStoreOperation(s.storeKind, op, outcome)
	metrics.RecordStoreLatency(s.storeKind, op, latencyMs)
	return err
}
