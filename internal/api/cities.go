/*
Copyright (C) 2026 Andes Retail

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andesretail/vitrina/internal/models"
)

type cityRequest struct {
	Name     string `json:"name"`
	Province string `json:"province"`
	Active   *bool  `json:"active"`
}

func (a *API) handlePublicCities(w http.ResponseWriter, r *http.Request) {
	if a.cache != nil {
		if cached, ok := a.cache.GetCityList(r.Context()); ok {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	var cities []models.City
	if err := a.db.WithContext(r.Context()).
		Where("active = ?", true).Order("name ASC").Find(&cities).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if a.cache != nil {
		if err := a.cache.SetCityList(r.Context(), cities); err != nil {
			a.logger.Debug().Err(err).Msg("failed to cache city list")
		}
	}
	writeJSON(w, http.StatusOK, cities)
}

func (a *API) handleCreateCity(w http.ResponseWriter, r *http.Request) {
	var req cityRequest
	if err := decodeJSON(r, &req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "city name required")
		return
	}

	city := models.City{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Province: req.Province,
		Active:   true,
	}
	if req.Active != nil {
		city.Active = *req.Active
	}
	if err := a.db.WithContext(r.Context()).Create(&city).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if a.cache != nil {
		a.cache.InvalidateCityList(r.Context())
	}
	writeJSON(w, http.StatusCreated, city)
}

func (a *API) handleUpdateCity(w http.ResponseWriter, r *http.Request) {
	var city models.City
	err := a.db.WithContext(r.Context()).First(&city, "id = ?", chi.URLParam(r, "cityID")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "city not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var req cityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name != "" {
		city.Name = req.Name
	}
	if req.Province != "" {
		city.Province = req.Province
	}
	if req.Active != nil {
		city.Active = *req.Active
	}
	if err := a.db.WithContext(r.Context()).Save(&city).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if a.cache != nil {
		a.cache.InvalidateCityList(r.Context())
	}
	writeJSON(w, http.StatusOK, city)
}

func (a *API) handleDeleteCity(w http.ResponseWriter, r *http.Request) {
	res := a.db.WithContext(r.Context()).Delete(&models.City{}, "id = ?", chi.URLParam(r, "cityID"))
	if res.Error != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if res.RowsAffected == 0 {
		writeError(w, http.StatusNotFound, "city not found")
		return
	}
	if a.cache != nil {
		a.cache.InvalidateCityList(r.Context())
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
