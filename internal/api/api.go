/*
Copyright (C) 2026 Andes Retail

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package api exposes the HTTP surface: public storefront queries and
// authenticated administration.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/andesretail/vitrina/internal/auth"
	"github.com/andesretail/vitrina/internal/cache"
	"github.com/andesretail/vitrina/internal/models"
	"github.com/andesretail/vitrina/internal/reconcile"
	"github.com/andesretail/vitrina/internal/schedule"
	"github.com/andesretail/vitrina/internal/store"
)

// API exposes HTTP handlers.
type API struct {
	db         *gorm.DB
	stores     *store.Service
	reconciler *reconcile.Service
	cache      *cache.Cache
	jwtSecret  []byte
	jwtTTL     time.Duration
	defaultTZ  string
	logger     zerolog.Logger
}

// New creates the API router wrapper.
func New(db *gorm.DB, stores *store.Service, reconciler *reconcile.Service, c *cache.Cache, jwtSecret []byte, ttl time.Duration, defaultTZ string, logger zerolog.Logger) *API {
	return &API{
		db:         db,
		stores:     stores,
		reconciler: reconciler,
		cache:      c,
		jwtSecret:  jwtSecret,
		jwtTTL:     ttl,
		defaultTZ:  defaultTZ,
		logger:     logger.With().Str("component", "api").Logger(),
	}
}

// Routes mounts all API routes.
func (a *API) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", a.handleLogin)

		r.Route("/public", func(r chi.Router) {
			r.Get("/cities", a.handlePublicCities)
			r.Get("/cities/{cityID}/zones", a.handlePublicZones)
			r.Get("/stores", a.handlePublicStores)
			r.Route("/stores/{storeID}", func(r chi.Router) {
				r.Get("/", a.handlePublicStore)
				r.Get("/open", a.handleStoreOpen)
				r.Get("/today", a.handleStoreToday)
				r.Get("/next-opening", a.handleStoreNextOpening)
				r.Get("/products", a.handlePublicProducts)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(a.jwtSecret))
			r.Route("/admin", func(r chi.Router) {
				r.Use(auth.RequireRole(models.RoleAdmin, models.RoleManager))

				r.Post("/reconcile", a.handleReconcileOnce)

				r.Route("/stores", func(r chi.Router) {
					r.Get("/", a.handleListStores)
					r.Post("/", a.handleCreateStore)
					r.Route("/{storeID}", func(r chi.Router) {
						r.Get("/", a.handleGetStore)
						r.Put("/", a.handleUpdateStore)
						r.Delete("/", a.handleDeleteStore)
					})
				})

				r.Route("/cities", func(r chi.Router) {
					r.Post("/", a.handleCreateCity)
					r.Put("/{cityID}", a.handleUpdateCity)
					r.Delete("/{cityID}", a.handleDeleteCity)
				})

				r.Route("/zones", func(r chi.Router) {
					r.Get("/", a.handleListZones)
					r.Post("/", a.handleCreateZone)
					r.Put("/{zoneID}", a.handleUpdateZone)
					r.Delete("/{zoneID}", a.handleDeleteZone)
				})

				r.Route("/products", func(r chi.Router) {
					r.Post("/", a.handleCreateProduct)
					r.Put("/{productID}", a.handleUpdateProduct)
					r.Delete("/{productID}", a.handleDeleteProduct)
				})

				r.Group(func(r chi.Router) {
					r.Use(auth.RequireRole(models.RoleAdmin))
					r.Post("/users", a.handleCreateUser)
				})
			})
		})
	})
}

// handleReconcileOnce triggers a single reconciliation pass. Idempotent:
// running it twice in a row with no schedule change reports zero transitions
// the second time.
func (a *API) handleReconcileOnce(w http.ResponseWriter, r *http.Request) {
	report, err := a.reconciler.RunOnce(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("manual reconciliation failed")
		writeError(w, http.StatusServiceUnavailable, "reconciliation unavailable")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// writeStoreError maps the service error taxonomy onto HTTP statuses:
// unknown store, misconfigured store, and temporary storage trouble are
// distinguishable by the caller.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "store not found")
	case errors.Is(err, schedule.ErrInvalidTimezone):
		writeError(w, http.StatusUnprocessableEntity, "store timezone misconfigured")
	case errors.Is(err, schedule.ErrInvalidClock), errors.Is(err, schedule.ErrInvalidWeekday),
		errors.Is(err, store.ErrMissingName), errors.Is(err, store.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "temporarily unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
