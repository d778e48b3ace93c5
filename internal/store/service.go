/*
Copyright (C) 2026 Andes Retail

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package store provides the store service: CRUD, schedule queries, and the
// repository used by reconciliation.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/andesretail/vitrina/internal/cache"
	"github.com/andesretail/vitrina/internal/events"
	"github.com/andesretail/vitrina/internal/models"
	"github.com/andesretail/vitrina/internal/schedule"
)

var (
	// ErrNotFound marks an unknown store id.
	ErrNotFound = errors.New("store not found")
	// ErrMissingName marks a store write without a display name.
	ErrMissingName = errors.New("store name required")
	// ErrInvalidStatus marks a write carrying a status outside the lifecycle
	// enum.
	ErrInvalidStatus = errors.New("invalid store status")
)

// Service exposes store operations.
type Service struct {
	db     *gorm.DB
	cache  *cache.Cache
	bus    *events.Bus
	clock  schedule.Clock
	logger zerolog.Logger
}

// New constructs the store service.
func New(db *gorm.DB, c *cache.Cache, bus *events.Bus, clock schedule.Clock, logger zerolog.Logger) *Service {
	if clock == nil {
		clock = schedule.SystemClock{}
	}
	return &Service{
		db:     db,
		cache:  c,
		bus:    bus,
		clock:  clock,
		logger: logger.With().Str("component", "store").Logger(),
	}
}

// Validate checks a store record before persistence. Timezone must resolve,
// status must be a known lifecycle state, and every schedule entry must carry
// a valid day and HH:MM clocks.
func Validate(st *models.Store) error {
	if st.Name == "" {
		return ErrMissingName
	}
	if !st.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, st.Status)
	}
	if _, err := schedule.ResolveLocation(st.Timezone); err != nil {
		return err
	}
	if err := st.Schedule.Validate(); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	return nil
}

// Create persists a new store. Status defaults to active.
func (s *Service) Create(ctx context.Context, st *models.Store) error {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	if st.Status == "" {
		st.Status = models.StoreActive
	}
	if err := Validate(st); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(st).Error; err != nil {
		return err
	}
	s.publish(events.EventStoreCreated, st)
	return nil
}

// Update persists changes to an existing store.
func (s *Service) Update(ctx context.Context, st *models.Store) error {
	if err := Validate(st); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&models.Store{}).Where("id = ?", st.ID).
		Select("Name", "Address", "Logo", "Banner", "Phone", "Email",
			"Latitude", "Longitude", "Rating", "Kind",
			"Timezone", "Schedule", "Status", "CityID", "Delivery").
		Updates(st)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.publish(events.EventStoreUpdated, st)
	return nil
}

// Get loads one store by id.
func (s *Service) Get(ctx context.Context, id string) (*models.Store, error) {
	var st models.Store
	err := s.db.WithContext(ctx).First(&st, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// List returns stores filtered by city and/or status. Empty filters match all.
func (s *Service) List(ctx context.Context, cityID string, status models.StoreStatus) ([]models.Store, error) {
	q := s.db.WithContext(ctx).Order("name ASC")
	if cityID != "" {
		q = q.Where("city_id = ?", cityID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var stores []models.Store
	if err := q.Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

// ListPublic returns the customer-facing store list for a city (deleted and
// suspended stores are hidden), served from cache when possible.
func (s *Service) ListPublic(ctx context.Context, cityID string) ([]models.Store, error) {
	if s.cache != nil {
		if cached, ok := s.cache.GetStoreList(ctx, cityID); ok {
			return cached, nil
		}
	}

	q := s.db.WithContext(ctx).
		Where("status IN ?", []models.StoreStatus{models.StoreActive, models.StoreClosed}).
		Order("name ASC")
	if cityID != "" {
		q = q.Where("city_id = ?", cityID)
	}
	var stores []models.Store
	if err := q.Find(&stores).Error; err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetStoreList(ctx, cityID, stores); err != nil {
			s.logger.Debug().Err(err).Msg("failed to cache store list")
		}
	}
	return stores, nil
}

// SoftDelete marks a store deleted. Deleted stores leave the reconciliation
// state machine permanently.
func (s *Service) SoftDelete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&models.Store{}).Where("id = ?", id).
		Update("status", models.StoreDeleted)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	if s.bus != nil {
		s.bus.Publish(events.EventStoreDeleted, events.Payload{"store_id": id})
	}
	return nil
}

// IsOpen reports whether the store is open at the given instant (nil = now).
func (s *Service) IsOpen(ctx context.Context, id string, at *time.Time) (bool, error) {
	st, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	loc, err := schedule.ResolveLocation(st.Timezone)
	if err != nil {
		return false, err
	}
	instant := s.clock.Now()
	if at != nil {
		instant = *at
	}
	return schedule.IsOpen(st.Schedule, loc, instant), nil
}

// TodaysWindow returns the trading window configured for the store's current
// local weekday, if any.
func (s *Service) TodaysWindow(ctx context.Context, id string) (schedule.Entry, bool, error) {
	st, err := s.Get(ctx, id)
	if err != nil {
		return schedule.Entry{}, false, err
	}
	loc, err := schedule.ResolveLocation(st.Timezone)
	if err != nil {
		return schedule.Entry{}, false, err
	}
	entry, ok := schedule.WindowFor(st.Schedule, loc, s.clock.Now())
	return entry, ok, nil
}

// NextOpening returns the store's next opening, if the schedule ever opens.
func (s *Service) NextOpening(ctx context.Context, id string) (schedule.Opening, bool, error) {
	st, err := s.Get(ctx, id)
	if err != nil {
		return schedule.Opening{}, false, err
	}
	loc, err := schedule.ResolveLocation(st.Timezone)
	if err != nil {
		return schedule.Opening{}, false, err
	}
	opening, ok := schedule.NextOpening(st.Schedule, loc, s.clock.Now())
	return opening, ok, nil
}

// FindReconcilable loads every store the reconciler may touch: status active
// or closed. Terminal stores are excluded at the query.
func (s *Service) FindReconcilable(ctx context.Context) ([]models.Store, error) {
	var stores []models.Store
	err := s.db.WithContext(ctx).
		Where("status IN ?", []models.StoreStatus{models.StoreActive, models.StoreClosed}).
		Find(&stores).Error
	return stores, err
}

// Save persists a reconciliation status transition. The update is guarded so
// a store an administrator suspended or deleted mid-pass is left untouched;
// the skipped flip self-corrects on the next tick.
func (s *Service) Save(ctx context.Context, st *models.Store) error {
	res := s.db.WithContext(ctx).Model(&models.Store{}).
		Where("id = ? AND status IN ?", st.ID,
			[]models.StoreStatus{models.StoreActive, models.StoreClosed}).
		Update("status", st.Status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		s.logger.Debug().Str("store", st.ID).Msg("status transition skipped, record changed concurrently")
		return nil
	}

	if st.Status == models.StoreActive {
		s.publish(events.EventStoreOpened, st)
	} else {
		s.publish(events.EventStoreClosed, st)
	}
	return nil
}

// publish emits a lifecycle event. Subscribers react out of band; the cached
// public listings are invalidated there, not here.
func (s *Service) publish(event events.EventType, st *models.Store) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(event, events.Payload{
		"store_id": st.ID,
		"name":     st.Name,
		"status":   string(st.Status),
	})
}
