/*
Copyright (C) 2026 Andes Retail

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/andesretail/vitrina/internal/models"
	"github.com/andesretail/vitrina/internal/schedule"
)

// storeCreateRequest is the request body for creating a store.
type storeCreateRequest struct {
	Name      string                 `json:"name"`
	Address   string                 `json:"address"`
	Logo      string                 `json:"logo"`
	Banner    string                 `json:"banner"`
	Phone     string                 `json:"phone"`
	Email     string                 `json:"email"`
	Latitude  float64                `json:"latitude"`
	Longitude float64                `json:"longitude"`
	Kind      string                 `json:"kind"`
	Timezone  string                 `json:"timezone"`
	Schedule  schedule.Weekly        `json:"schedule"`
	CityID    string                 `json:"city_id"`
	Delivery  *models.DeliveryConfig `json:"delivery"`
}

// storeUpdateRequest is the request body for updating a store. Absent fields
// keep their stored value.
type storeUpdateRequest struct {
	Name      *string                `json:"name"`
	Address   *string                `json:"address"`
	Logo      *string                `json:"logo"`
	Banner    *string                `json:"banner"`
	Phone     *string                `json:"phone"`
	Email     *string                `json:"email"`
	Latitude  *float64               `json:"latitude"`
	Longitude *float64               `json:"longitude"`
	Rating    *float64               `json:"rating"`
	Kind      *string                `json:"kind"`
	Timezone  *string                `json:"timezone"`
	Schedule  *schedule.Weekly       `json:"schedule"`
	Status    *models.StoreStatus    `json:"status"`
	CityID    *string                `json:"city_id"`
	Delivery  *models.DeliveryConfig `json:"delivery"`
}

func (a *API) handleCreateStore(w http.ResponseWriter, r *http.Request) {
	var req storeCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tz := req.Timezone
	if tz == "" {
		tz = a.defaultTZ
	}

	st := &models.Store{
		Name:      req.Name,
		Address:   req.Address,
		Logo:      req.Logo,
		Banner:    req.Banner,
		Phone:     req.Phone,
		Email:     req.Email,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Kind:      req.Kind,
		Timezone:  tz,
		Schedule:  req.Schedule,
		CityID:    req.CityID,
		Delivery:  req.Delivery,
	}
	if err := a.stores.Create(r.Context(), st); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (a *API) handleUpdateStore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "storeID")

	st, err := a.stores.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	var req storeUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name != nil {
		st.Name = *req.Name
	}
	if req.Address != nil {
		st.Address = *req.Address
	}
	if req.Logo != nil {
		st.Logo = *req.Logo
	}
	if req.Banner != nil {
		st.Banner = *req.Banner
	}
	if req.Phone != nil {
		st.Phone = *req.Phone
	}
	if req.Email != nil {
		st.Email = *req.Email
	}
	if req.Latitude != nil {
		st.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		st.Longitude = *req.Longitude
	}
	if req.Rating != nil {
		st.Rating = *req.Rating
	}
	if req.Kind != nil {
		st.Kind = *req.Kind
	}
	if req.Timezone != nil {
		st.Timezone = *req.Timezone
	}
	if req.Schedule != nil {
		st.Schedule = *req.Schedule
	}
	if req.Status != nil {
		st.Status = *req.Status
	}
	if req.CityID != nil {
		st.CityID = *req.CityID
	}
	if req.Delivery != nil {
		st.Delivery = req.Delivery
	}

	if err := a.stores.Update(r.Context(), st); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (a *API) handleDeleteStore(w http.ResponseWriter, r *http.Request) {
	if err := a.stores.SoftDelete(r.Context(), chi.URLParam(r, "storeID")); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (a *API) handleGetStore(w http.ResponseWriter, r *http.Request) {
	st, err := a.stores.Get(r.Context(), chi.URLParam(r, "storeID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (a *API) handleListStores(w http.ResponseWriter, r *http.Request) {
	stores, err := a.stores.List(r.Context(), r.URL.Query().Get("city_id"),
		models.StoreStatus(r.URL.Query().Get("status")))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stores)
}

func (a *API) handlePublicStores(w http.ResponseWriter, r *http.Request) {
	stores, err := a.stores.ListPublic(r.Context(), r.URL.Query().Get("city_id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stores)
}

func (a *API) handlePublicStore(w http.ResponseWriter, r *http.Request) {
	st, err := a.stores.Get(r.Context(), chi.URLParam(r, "storeID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if st.Status.Terminal() {
		writeError(w, http.StatusNotFound, "store not found")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleStoreOpen answers whether the store is open now, or at ?at=RFC3339.
func (a *API) handleStoreOpen(w http.ResponseWriter, r *http.Request) {
	var at *time.Time
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid at parameter, expected RFC3339")
			return
		}
		at = &parsed
	}

	open, err := a.stores.IsOpen(r.Context(), chi.URLParam(r, "storeID"), at)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"open": open})
}

func (a *API) handleStoreToday(w http.ResponseWriter, r *http.Request) {
	entry, ok, err := a.stores.TodaysWindow(r.Context(), chi.URLParam(r, "storeID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"window": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"window": entry})
}

func (a *API) handleStoreNextOpening(w http.ResponseWriter, r *http.Request) {
	opening, ok, err := a.stores.NextOpening(r.Context(), chi.URLParam(r, "storeID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"next_opening": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"next_opening": opening})
}
