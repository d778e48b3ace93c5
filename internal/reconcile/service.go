/*
Copyright (C) 2026 Andes Retail

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package reconcile aligns each store's persisted status with what its weekly
// schedule currently implies.
package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/andesretail/vitrina/internal/events"
	"github.com/andesretail/vitrina/internal/models"
	"github.com/andesretail/vitrina/internal/schedule"
	"github.com/andesretail/vitrina/internal/telemetry"
)

// Repository loads and persists stores for reconciliation. FindReconcilable
// must return only stores whose status is active or closed.
type Repository interface {
	FindReconcilable(ctx context.Context) ([]models.Store, error)
	Save(ctx context.Context, store *models.Store) error
}

// Change records one status transition applied during a pass.
type Change struct {
	StoreID   string             `json:"store_id"`
	Name      string             `json:"name"`
	From      models.StoreStatus `json:"from"`
	To        models.StoreStatus `json:"to"`
	LocalTime string             `json:"local_time"` // HH:MM in the store's zone
}

// Report summarizes one reconciliation pass.
type Report struct {
	Examined int      `json:"examined"`
	Changed  int      `json:"changed"`
	Failed   int      `json:"failed"`
	Changes  []Change `json:"changes"`
}

// Service runs the periodic reconciliation loop.
type Service struct {
	repo      Repository
	clock     schedule.Clock
	bus       *events.Bus
	logger    zerolog.Logger
	interval  time.Duration
	opTimeout time.Duration

	// passMu makes passes non-reentrant: a tick that fires while a pass is
	// still running is skipped, never run concurrently.
	passMu sync.Mutex
}

// New constructs the reconciler. interval defaults to 15 minutes and
// opTimeout to 5 seconds when unset. A nil bus disables pass notifications.
func New(repo Repository, clock schedule.Clock, interval, opTimeout time.Duration, bus *events.Bus, logger zerolog.Logger) *Service {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if opTimeout <= 0 {
		opTimeout = 5 * time.Second
	}
	if clock == nil {
		clock = schedule.SystemClock{}
	}
	return &Service{
		repo:      repo,
		clock:     clock,
		bus:       bus,
		interval:  interval,
		opTimeout: opTimeout,
		logger:    logger.With().Str("component", "reconciler").Logger(),
	}
}

// Run executes reconciliation on a fixed period until the context is
// cancelled. An in-flight pass is allowed to finish; passes are idempotent so
// an abandoned pass is safe.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("reconciliation loop started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("reconciliation loop stopped")
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Service) tick(ctx context.Context) {
	if !s.passMu.TryLock() {
		s.logger.Warn().Msg("previous pass still running, skipping tick")
		telemetry.ReconcileSkippedTicksTotal.Inc()
		return
	}
	defer s.passMu.Unlock()

	report, err := s.runOnce(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("reconciliation pass failed")
		return
	}
	s.logger.Info().
		Int("examined", report.Examined).
		Int("changed", report.Changed).
		Int("failed", report.Failed).
		Msg("reconciliation pass complete")
}

// RunOnce executes a single pass and returns its report. Safe to call from an
// administrative trigger; it serializes with the periodic loop.
func (s *Service) RunOnce(ctx context.Context) (*Report, error) {
	s.passMu.Lock()
	defer s.passMu.Unlock()
	return s.runOnce(ctx)
}

func (s *Service) runOnce(ctx context.Context) (*Report, error) {
	ctx, span := telemetry.StartSpan(ctx, "reconciler", "runOnce")
	defer span.End()

	started := time.Now()
	telemetry.ReconcilePassesTotal.Inc()

	loadCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	stores, err := s.repo.FindReconcilable(loadCtx)
	cancel()
	if err != nil {
		telemetry.RecordError(span, err)
		telemetry.ReconcileFailuresTotal.WithLabelValues("load").Inc()
		return nil, err
	}

	report := &Report{Examined: len(stores), Changes: []Change{}}
	for i := range stores {
		s.reconcileStore(ctx, &stores[i], report)
	}

	telemetry.ReconcilePassDuration.Observe(time.Since(started).Seconds())
	telemetry.AddSpanAttributes(span, map[string]any{
		"examined": report.Examined,
		"changed":  report.Changed,
		"failed":   report.Failed,
	})
	if s.bus != nil {
		s.bus.Publish(events.EventReconcileCompleted, events.Payload{
			"examined": report.Examined,
			"changed":  report.Changed,
			"failed":   report.Failed,
		})
	}
	return report, nil
}

// reconcileStore evaluates one store and persists a transition when needed.
// Failures are isolated: they count in the report and the next pass retries.
func (s *Service) reconcileStore(ctx context.Context, store *models.Store, report *Report) {
	if store.Status.Terminal() {
		// The repository query excludes terminal stores; a record that slipped
		// through is never written.
		s.logger.Warn().Str("store", store.ID).Str("status", string(store.Status)).
			Msg("terminal store returned by repository, ignoring")
		return
	}

	loc, err := schedule.ResolveLocation(store.Timezone)
	if err != nil {
		report.Failed++
		telemetry.ReconcileFailuresTotal.WithLabelValues("timezone").Inc()
		s.logger.Error().Err(err).Str("store", store.ID).Str("name", store.Name).
			Msg("store has unresolvable timezone")
		return
	}

	now := s.clock.Now()
	open := schedule.IsOpen(store.Schedule, loc, now)

	var target models.StoreStatus
	switch {
	case open && store.Status == models.StoreClosed:
		target = models.StoreActive
	case !open && store.Status == models.StoreActive:
		target = models.StoreClosed
	default:
		return
	}

	previous := store.Status
	store.Status = target

	saveCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	err = s.repo.Save(saveCtx, store)
	cancel()
	if err != nil {
		store.Status = previous
		report.Failed++
		telemetry.ReconcileFailuresTotal.WithLabelValues("save").Inc()
		s.logger.Error().Err(err).Str("store", store.ID).Str("name", store.Name).
			Msg("failed to persist status transition")
		return
	}

	report.Changed++
	report.Changes = append(report.Changes, Change{
		StoreID:   store.ID,
		Name:      store.Name,
		From:      previous,
		To:        target,
		LocalTime: now.In(loc).Format("15:04"),
	})
	telemetry.ReconcileTransitionsTotal.WithLabelValues(string(previous), string(target)).Inc()
	s.logger.Info().
		Str("store", store.ID).
		Str("name", store.Name).
		Str("from", string(previous)).
		Str("to", string(target)).
		Msg("store status reconciled")
}
