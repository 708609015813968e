// Package app orchestrates batch fetching: style lists in, canonical rows
// and per-style failures out. It owns the continue-on-error policy, so one
// bad product identifier never aborts the batch.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sanmar-inventory/internal/backend"
	"sanmar-inventory/internal/core"
	"sanmar-inventory/internal/store"
)

// Failure records one product key that returned an error envelope.
type Failure struct {
	Key     string
	Message string
}

// BatchResult is everything a batch run produced.
type BatchResult struct {
	Rows     []core.Row
	Failures []Failure
}

// Service wires the backend facade, the optional snapshot store, and the
// batch policy together.
type Service struct {
	facade *backend.Facade
	snaps  *store.Store
	logger *zap.Logger
	// delay is the politeness pause between requests. Rate limiting only;
	// nothing may depend on it for correctness.
	delay time.Duration
}

// NewService builds the orchestrator. snaps may be nil to disable snapshot
// persistence; logger may be nil.
func NewService(facade *backend.Facade, snaps *store.Store, logger *zap.Logger, delay time.Duration) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{facade: facade, snaps: snaps, logger: logger, delay: delay}
}

// FetchBatch fetches every key sequentially through the chosen backend.
// Error envelopes become Failures and the loop moves on. When a snapshot
// store is configured the combined rows are persisted under one run
// timestamp.
func (s *Service) FetchBatch(ctx context.Context, kind backend.Kind, keys []string) BatchResult {
	var result BatchResult
	for i, key := range keys {
		if i > 0 && s.delay > 0 {
			time.Sleep(s.delay)
		}
		env := s.facade.Fetch(ctx, kind, key)
		if env.Error {
			s.logger.Warn("fetch failed", zap.String("backend", string(kind)),
				zap.String("key", key), zap.String("message", env.Message))
			result.Failures = append(result.Failures, Failure{Key: key, Message: env.Message})
			continue
		}
		s.logger.Info("fetched inventory", zap.String("backend", string(kind)),
			zap.String("key", key), zap.Int("rows", len(env.Rows)))
		result.Rows = append(result.Rows, env.Rows...)
	}

	if s.snaps != nil && len(result.Rows) > 0 {
		if err := s.snaps.SaveRows(ctx, time.Now().UTC(), string(kind), result.Rows); err != nil {
			// Snapshots are an export target, not a gate on the batch.
			s.logger.Warn("failed to persist snapshot", zap.Error(err))
		}
	}
	return result
}

// ParseOfflineFile runs the web JSON parser over a captured payload file,
// with no network involved.
func (s *Service) ParseOfflineFile(path, slug string) core.Envelope {
	payload, err := os.ReadFile(path)
	if err != nil {
		return core.ErrorEnvelope(fmt.Sprintf("failed to read %s: %v", path, err))
	}
	return s.facade.ParseWebJSON(payload, slug)
}

// Diagnostics exposes the last raw exchange for a backend. Callers must
// mask credential-bearing fields before displaying them.
func (s *Service) Diagnostics(kind backend.Kind) (backend.Diagnostics, bool) {
	return s.facade.Diagnostics(kind)
}

// Tables pivots a mixed-style row set into one matrix per style, feeding
// each pivot the prices its own rows carried.
func Tables(rows []core.Row) ([]*core.Table, error) {
	var tables []*core.Table
	for _, group := range core.SplitByStyle(rows) {
		var pricing map[string]decimal.Decimal
		if p := core.PricingFromRows(group); len(p) > 0 {
			pricing = p
		}
		table, err := core.BuildMatrix(group, core.MatrixOptions{Pricing: pricing})
		if err != nil {
			return nil, fmt.Errorf("failed to pivot style %s: %w", group[0].Style, err)
		}
		tables = append(tables, table)
	}
	return tables, nil
}
