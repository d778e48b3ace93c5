/*
Copyright (C) 2026 Andes Retail

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/andesretail/vitrina/internal/events"
	"github.com/andesretail/vitrina/internal/models"
	"github.com/andesretail/vitrina/internal/schedule"
)

func testService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Store{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return New(db, nil, nil, schedule.FixedClock{At: mondayNoon}, zerolog.Nop())
}

// Monday 2024-01-01 12:00 UTC.
var mondayNoon = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

func utcStore(name string, status models.StoreStatus, w schedule.Weekly) *models.Store {
	return &models.Store{
		Name:     name,
		Timezone: "UTC",
		Schedule: w,
		Status:   status,
	}
}

func mondayWindow(opens, closes string) schedule.Weekly {
	return schedule.Weekly{{Day: schedule.Monday, OpensAt: opens, ClosesAt: closes}}
}

func TestCreateAndGet(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	st := utcStore("Panaderia Central", "", mondayWindow("08:00", "20:00"))
	if err := svc.Create(ctx, st); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if st.ID == "" {
		t.Fatal("Create() left ID empty")
	}
	if st.Status != models.StoreActive {
		t.Errorf("Create() status = %q, want active default", st.Status)
	}

	got, err := svc.Get(ctx, st.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "Panaderia Central" || got.Timezone != "UTC" {
		t.Errorf("Get() = %+v", got)
	}
	if len(got.Schedule) != 1 || got.Schedule[0].OpensAt != "08:00" {
		t.Errorf("Get() schedule = %+v, want round-tripped entry", got.Schedule)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		store   *models.Store
		wantErr error
	}{
		{
			name:    "missing name",
			store:   utcStore("", models.StoreActive, nil),
			wantErr: ErrMissingName,
		},
		{
			name: "bad timezone",
			store: &models.Store{
				Name:     "x",
				Timezone: "Mars/Olympus",
				Status:   models.StoreActive,
			},
			wantErr: schedule.ErrInvalidTimezone,
		},
		{
			name:    "bad schedule clock",
			store:   utcStore("x", models.StoreActive, mondayWindow("25:00", "26:00")),
			wantErr: schedule.ErrInvalidClock,
		},
		{
			name: "bad schedule day",
			store: utcStore("x", models.StoreActive, schedule.Weekly{
				{Day: "someday", OpensAt: "08:00", ClosesAt: "20:00"},
			}),
			wantErr: schedule.ErrInvalidWeekday,
		},
		{
			name:    "unknown status",
			store:   utcStore("x", "archived", mondayWindow("08:00", "20:00")),
			wantErr: ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.Create(ctx, tt.store); !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	st := utcStore("Original", "", mondayWindow("08:00", "20:00"))
	if err := svc.Create(ctx, st); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	st.Name = "Renamed"
	st.Schedule = mondayWindow("10:00", "14:00")
	if err := svc.Update(ctx, st); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := svc.Get(ctx, st.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "Renamed" || got.Schedule[0].OpensAt != "10:00" {
		t.Errorf("Get() after update = %+v", got)
	}

	missing := utcStore("Ghost", models.StoreActive, nil)
	missing.ID = "00000000-0000-0000-0000-000000000000"
	if err := svc.Update(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestGetNotFound(t *testing.T) {
	svc := testService(t)
	if _, err := svc.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestSoftDelete(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	st := utcStore("Doomed", "", mondayWindow("08:00", "20:00"))
	if err := svc.Create(ctx, st); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := svc.SoftDelete(ctx, st.ID); err != nil {
		t.Fatalf("SoftDelete() error = %v", err)
	}

	got, err := svc.Get(ctx, st.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != models.StoreDeleted {
		t.Errorf("status = %q, want deleted", got.Status)
	}

	if err := svc.SoftDelete(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SoftDelete(missing) error = %v, want ErrNotFound", err)
	}
}

func TestFindReconcilableExcludesTerminal(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	for _, st := range []*models.Store{
		utcStore("active", models.StoreActive, mondayWindow("08:00", "20:00")),
		utcStore("closed", models.StoreClosed, mondayWindow("08:00", "20:00")),
		utcStore("suspended", models.StoreSuspended, mondayWindow("08:00", "20:00")),
		utcStore("deleted", models.StoreDeleted, mondayWindow("08:00", "20:00")),
	} {
		if err := svc.Create(ctx, st); err != nil {
			t.Fatalf("Create(%s) error = %v", st.Name, err)
		}
	}

	stores, err := svc.FindReconcilable(ctx)
	if err != nil {
		t.Fatalf("FindReconcilable() error = %v", err)
	}
	if len(stores) != 2 {
		t.Fatalf("FindReconcilable() returned %d stores, want 2", len(stores))
	}
	for _, st := range stores {
		if st.Status.Terminal() {
			t.Errorf("FindReconcilable() returned terminal store %q", st.Name)
		}
	}
}

func TestSaveGuardsConcurrentStatusChange(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	st := utcStore("store", models.StoreClosed, mondayWindow("08:00", "20:00"))
	if err := svc.Create(ctx, st); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Normal transition applies.
	st.Status = models.StoreActive
	if err := svc.Save(ctx, st); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, _ := svc.Get(ctx, st.ID)
	if got.Status != models.StoreActive {
		t.Fatalf("status = %q, want active", got.Status)
	}

	// An administrator suspends the store; a stale reconciler write must not
	// resurrect it.
	if err := svc.db.Model(&models.Store{}).Where("id = ?", st.ID).
		Update("status", models.StoreSuspended).Error; err != nil {
		t.Fatalf("suspend: %v", err)
	}
	st.Status = models.StoreClosed
	if err := svc.Save(ctx, st); err != nil {
		t.Fatalf("Save() after suspend error = %v", err)
	}
	got, _ = svc.Get(ctx, st.ID)
	if got.Status != models.StoreSuspended {
		t.Errorf("status = %q, want suspended preserved", got.Status)
	}
}

func TestIsOpenAndScheduleQueries(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	st := utcStore("open-now", "", mondayWindow("09:00", "18:00"))
	if err := svc.Create(ctx, st); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	open, err := svc.IsOpen(ctx, st.ID, nil)
	if err != nil {
		t.Fatalf("IsOpen() error = %v", err)
	}
	if !open {
		t.Error("IsOpen() = false at Monday noon for 09:00-18:00 window")
	}

	evening := time.Date(2024, time.January, 1, 20, 0, 0, 0, time.UTC)
	open, err = svc.IsOpen(ctx, st.ID, &evening)
	if err != nil {
		t.Fatalf("IsOpen(at) error = %v", err)
	}
	if open {
		t.Error("IsOpen() = true at 20:00 for 09:00-18:00 window")
	}

	entry, ok, err := svc.TodaysWindow(ctx, st.ID)
	if err != nil || !ok {
		t.Fatalf("TodaysWindow() = %v, %v, %v", entry, ok, err)
	}
	if entry.Day != schedule.Monday {
		t.Errorf("TodaysWindow() day = %q, want monday", entry.Day)
	}

	// Already inside today's window, so the rotation finds nothing later.
	if _, ok, err := svc.NextOpening(ctx, st.ID); err != nil || ok {
		t.Errorf("NextOpening() = %v, %v, want none", ok, err)
	}

	if _, err := svc.IsOpen(ctx, "nope", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("IsOpen(missing) error = %v, want ErrNotFound", err)
	}
}

func TestListPublicHidesTerminal(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	for _, st := range []*models.Store{
		utcStore("a-active", models.StoreActive, nil),
		utcStore("b-closed", models.StoreClosed, nil),
		utcStore("c-suspended", models.StoreSuspended, nil),
	} {
		if err := svc.Create(ctx, st); err != nil {
			t.Fatalf("Create(%s) error = %v", st.Name, err)
		}
	}

	stores, err := svc.ListPublic(ctx, "")
	if err != nil {
		t.Fatalf("ListPublic() error = %v", err)
	}
	if len(stores) != 2 {
		t.Fatalf("ListPublic() returned %d stores, want 2", len(stores))
	}
	if stores[0].Name != "a-active" || stores[1].Name != "b-closed" {
		t.Errorf("ListPublic() order = %q, %q", stores[0].Name, stores[1].Name)
	}
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	st := utcStore("Tienda Norte", "", mondayWindow("08:00", "20:00"))
	if err := svc.Create(ctx, st); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	st.Status = "archived"
	if err := svc.Update(ctx, st); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("Update() error = %v, want ErrInvalidStatus", err)
	}

	got, err := svc.Get(ctx, st.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != models.StoreActive {
		t.Errorf("stored status = %q, want untouched active", got.Status)
	}
}

func TestWritesPublishLifecycleEvents(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Store{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	bus := events.NewBus()
	sub := bus.Subscribe(events.EventStoreCreated, events.EventStoreOpened, events.EventStoreDeleted)
	svc := New(db, nil, bus, schedule.FixedClock{At: mondayNoon}, zerolog.Nop())
	ctx := context.Background()

	st := utcStore("Cafeteria Sur", models.StoreClosed, mondayWindow("09:00", "18:00"))
	if err := svc.Create(ctx, st); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	st.Status = models.StoreActive
	if err := svc.Save(ctx, st); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := svc.SoftDelete(ctx, st.ID); err != nil {
		t.Fatalf("SoftDelete() error = %v", err)
	}

	want := []string{
		string(events.EventStoreCreated),
		string(events.EventStoreOpened),
		string(events.EventStoreDeleted),
	}
	for _, tag := range want {
		select {
		case payload := <-sub:
			if payload["event"] != tag {
				t.Fatalf("event = %v, want %q", payload["event"], tag)
			}
			if payload["store_id"] != st.ID {
				t.Errorf("store_id = %v, want %q", payload["store_id"], st.ID)
			}
		case <-time.After(time.Second):
			t.Fatalf("no %q event published", tag)
		}
	}
}
