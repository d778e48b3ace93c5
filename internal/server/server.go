/*
Copyright (C) 2026 Andes Retail

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package server wires configuration, storage, cache, the reconciliation
// loop and the HTTP API into a runnable unit.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/andesretail/vitrina/internal/api"
	"github.com/andesretail/vitrina/internal/cache"
	"github.com/andesretail/vitrina/internal/config"
	"github.com/andesretail/vitrina/internal/db"
	"github.com/andesretail/vitrina/internal/events"
	"github.com/andesretail/vitrina/internal/reconcile"
	"github.com/andesretail/vitrina/internal/schedule"
	"github.com/andesretail/vitrina/internal/store"
	"github.com/andesretail/vitrina/internal/telemetry"
)

// Server owns every long-lived dependency and the HTTP listeners.
type Server struct {
	cfg    *config.Config
	logger zerolog.Logger
	router chi.Router

	db         *gorm.DB
	cache      *cache.Cache
	bus        *events.Bus
	stores     *store.Service
	reconciler *reconcile.Service
	api        *api.API

	httpServer    *http.Server
	metricsServer *http.Server

	bgCancel context.CancelFunc
	bgWG     sync.WaitGroup

	closers []func() error
}

// New constructs the server and wires dependencies.
func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(telemetry.TracingMiddleware("vitrina-api"))
	router.Use(telemetry.MetricsMiddleware)
	router.Use(middleware.Timeout(30 * time.Second))

	srv := &Server{
		cfg:    cfg,
		logger: logger,
		router: router,
		bus:    events.NewBus(),
	}

	if err := srv.initDependencies(); err != nil {
		return nil, err
	}

	srv.configureRoutes()
	srv.startBackgroundWorkers()

	srv.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort),
		Handler:           srv.router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return srv, nil
}

func (s *Server) initDependencies() error {
	database, err := db.Connect(s.cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	s.db = database
	s.DeferClose(func() error { return db.Close(s.db) })

	if err := db.Migrate(s.db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	cacheCfg := cache.DefaultConfig()
	cacheCfg.RedisAddr = s.cfg.RedisAddr
	cacheCfg.RedisPassword = s.cfg.RedisPassword
	cacheCfg.RedisDB = s.cfg.RedisDB
	s.cache = cache.New(cacheCfg, s.logger)
	s.DeferClose(s.cache.Close)

	clk := schedule.SystemClock{}
	s.stores = store.New(s.db, s.cache, s.bus, clk, s.logger)
	s.reconciler = reconcile.New(s.stores, clk, s.cfg.ReconcileInterval, s.cfg.ReconcileOpTimeout, s.bus, s.logger)

	s.api = api.New(
		s.db,
		s.stores,
		s.reconciler,
		s.cache,
		[]byte(s.cfg.JWTSigningKey),
		s.cfg.JWTTTL,
		s.cfg.DefaultTimezone,
		s.logger,
	)

	return nil
}

func (s *Server) configureRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	s.api.Routes(s.router)
}

func (s *Server) startBackgroundWorkers() {
	ctx, cancel := context.WithCancel(context.Background())
	s.bgCancel = cancel

	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		if err := s.reconciler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error().Err(err).Msg("reconciler loop exited")
		}
	}()

	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		s.consumeEvents(ctx)
	}()
}

// consumeEvents drains the bus until the context is cancelled. Store
// lifecycle events invalidate the cached public listings; reconciliation
// summaries are logged.
func (s *Server) consumeEvents(ctx context.Context) {
	sub := s.bus.Subscribe(
		events.EventStoreCreated,
		events.EventStoreUpdated,
		events.EventStoreDeleted,
		events.EventStoreOpened,
		events.EventStoreClosed,
		events.EventReconcileCompleted,
	)
	defer s.bus.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-sub:
			s.handleEvent(ctx, payload)
		}
	}
}

func (s *Server) handleEvent(ctx context.Context, payload events.Payload) {
	eventType, _ := payload["event"].(string)
	switch events.EventType(eventType) {
	case events.EventReconcileCompleted:
		s.logger.Info().
			Interface("examined", payload["examined"]).
			Interface("changed", payload["changed"]).
			Interface("failed", payload["failed"]).
			Msg("reconciliation report received")
		if s.cache != nil {
			s.cache.InvalidateStoreLists(ctx)
		}
	default:
		s.logger.Debug().Str("event", eventType).
			Interface("store_id", payload["store_id"]).
			Msg("store lifecycle event")
		if s.cache != nil {
			s.cache.InvalidateStoreLists(ctx)
		}
	}
}

func (s *Server) stopBackgroundWorkers() {
	if s.bgCancel != nil {
		s.bgCancel()
	}
	s.bgWG.Wait()
}

// StartMetricsListener serves Prometheus metrics on the dedicated bind
// address so the main listener stays free of scrape traffic.
func (s *Server) StartMetricsListener() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.Handler())
	s.metricsServer = &http.Server{
		Addr:              s.cfg.MetricsBind,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		if err := s.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Str("bind", s.cfg.MetricsBind).Msg("metrics listener exited")
		}
	}()
}

// HTTPServer exposes the underlying listener for graceful shutdown.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// DB exposes the database handle for administrative tooling and tests.
func (s *Server) DB() *gorm.DB {
	return s.db
}

// Reconciler exposes the reconciliation service for one-shot invocations.
func (s *Server) Reconciler() *reconcile.Service {
	return s.reconciler
}

// Close stops background workers and releases resources in reverse
// acquisition order.
func (s *Server) Close() error {
	if s.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.metricsServer.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("metrics listener shutdown error")
		}
		cancel()
	}
	s.stopBackgroundWorkers()
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// DeferClose registers a cleanup callback run during Close.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}
