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
	"github.com/andesretail/vitrina/internal/store"
)

type productRequest struct {
	StoreID     string   `json:"store_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Price       *float64 `json:"price"`
	Available   *bool    `json:"available"`
}

// handlePublicProducts lists a store's available catalog.
func (a *API) handlePublicProducts(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")
	if _, err := a.stores.Get(r.Context(), storeID); err != nil {
		writeStoreError(w, err)
		return
	}

	var products []models.Product
	err := a.db.WithContext(r.Context()).
		Where("store_id = ? AND available = ?", storeID, true).
		Order("name ASC").Find(&products).Error
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (a *API) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil || req.Name == "" || req.StoreID == "" {
		writeError(w, http.StatusBadRequest, "product name and store_id required")
		return
	}
	if _, err := a.stores.Get(r.Context(), req.StoreID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "store not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	product := models.Product{
		ID:          uuid.NewString(),
		StoreID:     req.StoreID,
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Available:   true,
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Available != nil {
		product.Available = *req.Available
	}
	if err := a.db.WithContext(r.Context()).Create(&product).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (a *API) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	err := a.db.WithContext(r.Context()).First(&product, "id = ?", chi.URLParam(r, "productID")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.Image != "" {
		product.Image = req.Image
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Available != nil {
		product.Available = *req.Available
	}
	if err := a.db.WithContext(r.Context()).Save(&product).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (a *API) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	res := a.db.WithContext(r.Context()).Delete(&models.Product{}, "id = ?", chi.URLParam(r, "productID"))
	if res.Error != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if res.RowsAffected == 0 {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
