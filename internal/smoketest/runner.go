package smoketest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/fishery/pkg/logger"
)

// ErrCheckFailed marks a smoke check whose observed behavior was wrong.
var ErrCheckFailed = errors.New("smoke check failed")

// Normalize fills unset fields with their defaults.
func (c *Config) Normalize() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Path == "" {
		c.Path = DefaultPath
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
}

type runner struct {
	cfg    *Config
	client *HTTPClient
	stats  *Stats
	log    logger.Logger
}

// Run executes every smoke check against the configured service.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	cfg.Normalize()
	r := &runner{
		cfg:    cfg,
		client: NewHTTPClient(cfg.BaseURL, cfg.Path, cfg.Timeout),
		stats:  &Stats{StartTime: time.Now()},
		log:    logger.Get().Named("smoke"),
	}

	r.log.Info(ctx, "starting fish smoke test",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("path", cfg.Path),
		logger.String("timeout", cfg.Timeout.String()),
		logger.Int("batchSize", cfg.BatchSize),
		logger.Int("workers", cfg.Workers),
	)

	checks := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"health", r.checkHealth},
		{"round trip", r.checkRoundTrip},
		{"ordering", r.checkOrdering},
		{"missing field", r.checkMissingField},
		{"zero sell", r.checkZeroSell},
		{"method not allowed", r.checkMethodNotAllowed},
	}
	for _, c := range checks {
		if err := c.fn(ctx); err != nil {
			r.finish(ctx)
			return r.stats, fmt.Errorf("%s: %w", c.name, err)
		}
		r.stats.ChecksPassed++
		r.log.Info(ctx, "check passed", logger.String("check", c.name))
	}

	r.finish(ctx)
	r.log.Info(ctx, "smoke test completed successfully")
	return r.stats, nil
}

func (r *runner) finish(ctx context.Context) {
	r.stats.EndTime = time.Now()
	r.stats.Duration = r.stats.EndTime.Sub(r.stats.StartTime)
	r.stats.Requests = r.client.Requests()
	displayFinalStats(ctx, r.log, r.stats)
}

func (r *runner) checkHealth(ctx context.Context) error {
	resp, err := r.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if resp.Status != http.StatusOK {
		return fmt.Errorf("%w: %v", ErrCheckFailed, unexpected("healthz", resp))
	}
	return nil
}

// checkRoundTrip creates, updates and deletes one Coelacanth, listing
// after each step.
func (r *runner) checkRoundTrip(ctx context.Context) error {
	before, err := r.client.List(ctx)
	if err != nil {
		return err
	}
	known := idSet(before)

	want := Fish{Name: roundTripName, Sell: roundTripSell, Shadow: roundTripShadow, Where: roundTripWhere}
	if err := r.client.Create(ctx, want); err != nil {
		return err
	}
	r.stats.FishCreated++

	list, err := r.client.List(ctx)
	if err != nil {
		return err
	}
	matches := newMatches(list, roundTripName, known)
	if len(matches) != 1 {
		return fmt.Errorf("%w: expected exactly one new %s, found %d", ErrCheckFailed, roundTripName, len(matches))
	}
	created := matches[0]
	want.ID = created.ID
	if err := verifyRecord(created, want); err != nil {
		return fmt.Errorf("%w: created record: %v", ErrCheckFailed, err)
	}
	r.debug(ctx, "created round-trip fish", logger.Int64("id", created.ID))

	want.Sell = roundTripNewSell
	if err := r.client.Update(ctx, want); err != nil {
		return err
	}
	list, err = r.client.List(ctx)
	if err != nil {
		return err
	}
	updated := newMatches(list, roundTripName, known)
	if len(updated) != 1 {
		return fmt.Errorf("%w: expected one %s after update, found %d", ErrCheckFailed, roundTripName, len(updated))
	}
	if err := verifyRecord(updated[0], want); err != nil {
		return fmt.Errorf("%w: updated record: %v", ErrCheckFailed, err)
	}

	if err := r.client.Delete(ctx, created.ID); err != nil {
		return err
	}
	r.stats.FishDeleted++
	list, err = r.client.List(ctx)
	if err != nil {
		return err
	}
	if containsID(list, created.ID) {
		return fmt.Errorf("%w: fish %d still listed after delete", ErrCheckFailed, created.ID)
	}
	return nil
}

// checkOrdering creates a shuffled batch concurrently and verifies the list
// returns it sorted by Name. The batch is deleted afterwards.
func (r *runner) checkOrdering(ctx context.Context) (err error) {
	runID := newRunID()
	prefix := batchNamePrefix + runID
	batch := generateBatch(runID, r.cfg.BatchSize)

	defer func() {
		if cerr := r.cleanup(ctx, prefix); cerr != nil && err == nil {
			err = cerr
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for _, f := range batch {
		g.Go(func() error {
			return r.client.Create(gctx, f)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	r.stats.FishCreated += len(batch)

	list, err := r.client.List(ctx)
	if err != nil {
		return err
	}
	if err := verifyAscending(list); err != nil {
		r.log.Warn(ctx, "full list not in byte order; checking the smoke batch only", logger.Error(err))
	}
	mine := withPrefix(list, prefix)
	if len(mine) != len(batch) {
		return fmt.Errorf("%w: listed %d of %d batch fish", ErrCheckFailed, len(mine), len(batch))
	}
	if err := verifyAscending(mine); err != nil {
		return fmt.Errorf("%w: %v", ErrCheckFailed, err)
	}
	r.debug(ctx, "batch ordered", logger.Int("count", len(mine)))
	return nil
}

// cleanup deletes every fish whose name starts with prefix. It runs even
// after ctx is cancelled.
func (r *runner) cleanup(ctx context.Context, prefix string) error {
	ctx = context.WithoutCancel(ctx)
	list, err := r.client.List(ctx)
	if err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}
	for _, f := range withPrefix(list, prefix) {
		if err := r.client.Delete(ctx, f.ID); err != nil {
			return fmt.Errorf("cleanup: %w", err)
		}
		r.stats.FishDeleted++
	}
	return nil
}

func (r *runner) checkMissingField(ctx context.Context) error {
	body := map[string]any{"Name": roundTripName, "Sell": roundTripSell, "Shadow": roundTripShadow}
	return r.expectError(ctx, http.MethodPost, body, http.StatusBadRequest, msgMissingFields)
}

func (r *runner) checkZeroSell(ctx context.Context) error {
	body := map[string]any{"Name": roundTripName, "Sell": 0, "Shadow": roundTripShadow, "Where": roundTripWhere}
	return r.expectError(ctx, http.MethodPost, body, http.StatusBadRequest, msgMissingFields)
}

func (r *runner) checkMethodNotAllowed(ctx context.Context) error {
	return r.expectError(ctx, http.MethodPatch, map[string]any{}, http.StatusMethodNotAllowed, msgMethodNotAllow)
}

func (r *runner) expectError(ctx context.Context, method string, body any, status int, message string) error {
	resp, err := r.client.Do(ctx, method, body)
	if err != nil {
		return err
	}
	var e ErrorResponse
	_ = json.Unmarshal(resp.Body, &e)
	if resp.Status != status || e.Error != message {
		return fmt.Errorf("%w: %s got %d %q, want %d %q", ErrCheckFailed, method, resp.Status, e.Error, status, message)
	}
	return nil
}

func (r *runner) debug(ctx context.Context, msg string, fields ...logger.Field) {
	if r.cfg.Verbose {
		r.log.Info(ctx, msg, fields...)
	}
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	log.Info(ctx, "final statistics",
		logger.Int("checksPassed", stats.ChecksPassed),
		logger.Int64("requests", stats.Requests),
		logger.Int("fishCreated", stats.FishCreated),
		logger.Int("fishDeleted", stats.FishDeleted),
		logger.String("duration", stats.Duration.String()),
	)
}
