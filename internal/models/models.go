/*
Copyright (C) 2026 Andes Retail

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package models defines the persisted entities of the storefront network.
package models

import (
	"time"

	"github.com/andesretail/vitrina/internal/schedule"
)

// RoleName enumerates account roles.
type RoleName string

const (
	RoleAdmin   RoleName = "admin"
	RoleManager RoleName = "manager"
)

// User represents an authenticated account.
type User struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex" json:"email"`
	Password  string    `json:"-"`
	Role      RoleName  `gorm:"type:varchar(16)" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StoreStatus is a store's lifecycle state.
type StoreStatus string

const (
	StoreActive    StoreStatus = "active"
	StoreClosed    StoreStatus = "closed"
	StoreSuspended StoreStatus = "suspended"
	StoreDeleted   StoreStatus = "deleted"
)

// Terminal reports whether the status is outside the reconciliation state
// machine. The reconciler never loads or writes terminal stores.
func (s StoreStatus) Terminal() bool {
	return s == StoreSuspended || s == StoreDeleted
}

// Valid reports whether the status is one of the known lifecycle states.
func (s StoreStatus) Valid() bool {
	switch s {
	case StoreActive, StoreClosed, StoreSuspended, StoreDeleted:
		return true
	}
	return false
}

// DeliveryConfig carries per-store delivery parameters.
type DeliveryConfig struct {
	Cost            float64  `json:"cost"`
	PrepTimeMinutes int      `json:"prep_time_minutes"`
	CoverageZones   []string `json:"coverage_zones,omitempty"`
}

// Store is a retail storefront with a weekly opening schedule in its own
// timezone. Reconciliation flips status between active and closed; suspended
// and deleted are set only by administrative writes.
type Store struct {
	ID        string  `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string  `gorm:"index;not null" json:"name"`
	Address   string  `json:"address"`
	Logo      string  `gorm:"default:none" json:"logo"`
	Banner    string  `gorm:"default:none" json:"banner,omitempty"`
	Phone     string  `gorm:"uniqueIndex" json:"phone"`
	Email     string  `gorm:"uniqueIndex" json:"email"`
	Latitude  float64 `gorm:"index:idx_stores_geo" json:"latitude"`
	Longitude float64 `gorm:"index:idx_stores_geo" json:"longitude"`
	Rating    float64 `gorm:"default:1.2" json:"rating"`
	Kind      string  `gorm:"type:varchar(32);default:none" json:"kind"`

	Timezone string          `gorm:"type:varchar(64);index;not null" json:"timezone"`
	Schedule schedule.Weekly `gorm:"type:jsonb;serializer:json" json:"schedule"`
	Status   StoreStatus     `gorm:"type:varchar(16);index:idx_stores_status_city;default:active" json:"status"`

	CityID   string          `gorm:"type:uuid;index:idx_stores_status_city" json:"city_id"`
	City     *City           `gorm:"foreignKey:CityID" json:"city,omitempty"`
	Delivery *DeliveryConfig `gorm:"type:jsonb;serializer:json" json:"delivery,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// City groups stores and zones.
type City struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex" json:"name"`
	Province  string    `json:"province,omitempty"`
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Point is a polygon vertex in degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Zone is a delivery district within a city, bounded by a polygon of at
// least three vertices.
type Zone struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	CityID      string    `gorm:"type:uuid;index" json:"city_id"`
	Name        string    `gorm:"index" json:"name"`
	Description string    `json:"description,omitempty"`
	Polygon     []Point   `gorm:"type:jsonb;serializer:json" json:"polygon"`
	Color       string    `gorm:"type:varchar(7);default:#3B82F6" json:"color"`
	Surcharge   float64   `json:"surcharge"`
	Active      bool      `gorm:"default:true" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Product belongs to one store's catalog.
type Product struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	StoreID     string    `gorm:"type:uuid;index" json:"store_id"`
	Name        string    `gorm:"index" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Image       string    `gorm:"default:none" json:"image"`
	Price       float64   `json:"price"`
	Available   bool      `gorm:"default:true" json:"available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// All lists every model for auto-migration.
func All() []any {
	return []any{&User{}, &City{}, &Zone{}, &Store{}, &Product{}}
}
