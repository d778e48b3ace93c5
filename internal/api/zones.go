/*
Copyright (C) 2026 Andes Retail

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andesretail/vitrina/internal/models"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type zoneRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	CityID      string         `json:"city_id"`
	Polygon     []models.Point `json:"polygon"`
	Color       string         `json:"color"`
	Surcharge   *float64       `json:"surcharge"`
	Active      *bool          `json:"active"`
}

// validateZoneGeometry rejects polygons with fewer than three vertices or
// coordinates outside the valid degree ranges.
func validateZoneGeometry(polygon []models.Point) string {
	if len(polygon) < 3 {
		return "zone polygon requires at least 3 points"
	}
	for _, p := range polygon {
		if p.Latitude < -90 || p.Latitude > 90 || p.Longitude < -180 || p.Longitude > 180 {
			return "zone polygon coordinates out of range"
		}
	}
	return ""
}

func (a *API) cityExists(r *http.Request, cityID string) (bool, error) {
	var count int64
	err := a.db.WithContext(r.Context()).Model(&models.City{}).
		Where("id = ?", cityID).Count(&count).Error
	return count > 0, err
}

func (a *API) handlePublicZones(w http.ResponseWriter, r *http.Request) {
	cityID := chi.URLParam(r, "cityID")

	ok, err := a.cityExists(r, cityID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "city not found")
		return
	}

	var zones []models.Zone
	if err := a.db.WithContext(r.Context()).
		Where("city_id = ? AND active = ?", cityID, true).
		Order("name ASC").Find(&zones).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, zones)
}

func (a *API) handleListZones(w http.ResponseWriter, r *http.Request) {
	q := a.db.WithContext(r.Context()).Order("name ASC")
	if cityID := r.URL.Query().Get("city_id"); cityID != "" {
		q = q.Where("city_id = ?", cityID)
	}
	var zones []models.Zone
	if err := q.Find(&zones).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, zones)
}

func (a *API) handleCreateZone(w http.ResponseWriter, r *http.Request) {
	var req zoneRequest
	if err := decodeJSON(r, &req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "zone name required")
		return
	}
	if req.CityID == "" {
		writeError(w, http.StatusBadRequest, "city_id required")
		return
	}

	ok, err := a.cityExists(r, req.CityID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "city not found")
		return
	}

	if msg := validateZoneGeometry(req.Polygon); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	if req.Color == "" {
		req.Color = "#3B82F6"
	}
	if !hexColor.MatchString(req.Color) {
		writeError(w, http.StatusUnprocessableEntity, "zone color must be #RRGGBB")
		return
	}

	zone := models.Zone{
		ID:          uuid.NewString(),
		CityID:      req.CityID,
		Name:        req.Name,
		Description: req.Description,
		Polygon:     req.Polygon,
		Color:       req.Color,
		Active:      true,
	}
	if req.Surcharge != nil {
		zone.Surcharge = *req.Surcharge
	}
	if req.Active != nil {
		zone.Active = *req.Active
	}
	if err := a.db.WithContext(r.Context()).Create(&zone).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, zone)
}

func (a *API) handleUpdateZone(w http.ResponseWriter, r *http.Request) {
	var zone models.Zone
	err := a.db.WithContext(r.Context()).First(&zone, "id = ?", chi.URLParam(r, "zoneID")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "zone not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var req zoneRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CityID != "" && req.CityID != zone.CityID {
		ok, err := a.cityExists(r, req.CityID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "city not found")
			return
		}
		zone.CityID = req.CityID
	}
	if req.Name != "" {
		zone.Name = req.Name
	}
	if req.Description != "" {
		zone.Description = req.Description
	}
	if req.Polygon != nil {
		if msg := validateZoneGeometry(req.Polygon); msg != "" {
			writeError(w, http.StatusUnprocessableEntity, msg)
			return
		}
		zone.Polygon = req.Polygon
	}
	if req.Color != "" {
		if !hexColor.MatchString(req.Color) {
			writeError(w, http.StatusUnprocessableEntity, "zone color must be #RRGGBB")
			return
		}
		zone.Color = req.Color
	}
	if req.Surcharge != nil {
		zone.Surcharge = *req.Surcharge
	}
	if req.Active != nil {
		zone.Active = *req.Active
	}

	if err := a.db.WithContext(r.Context()).Save(&zone).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, zone)
}

func (a *API) handleDeleteZone(w http.ResponseWriter, r *http.Request) {
	res := a.db.WithContext(r.Context()).Delete(&models.Zone{}, "id = ?", chi.URLParam(r, "zoneID"))
	if res.Error != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if res.RowsAffected == 0 {
		writeError(w, http.StatusNotFound, "zone not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
