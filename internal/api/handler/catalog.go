package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/km0-cafe/restaurant-service/internal/api"
	"github.com/km0-cafe/restaurant-service/internal/apperr"
	"github.com/km0-cafe/restaurant-service/internal/service"
)

// CatalogHandler serves one catalog collection. Menu, patisserie and
// event endpoints are all instances of this handler with their own
// service behind it.
type CatalogHandler[T any, R service.CatalogRequest] struct {
	catalog *service.Catalog[T, R]
	log     *zap.Logger
}

func NewCatalogHandler[T any, R service.CatalogRequest](catalog *service.Catalog[T, R], log *zap.Logger) *CatalogHandler[T, R] {
	return &CatalogHandler[T, R]{catalog: catalog, log: log}
}

func (h *CatalogHandler[T, R]) List(w http.ResponseWriter, r *http.Request) {
	params := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	items, err := h.catalog.List(r.Context(), params)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.RespondJSON(w, http.StatusOK, items)
}

func (h *CatalogHandler[T, R]) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		api.Error(w, err)
		return
	}

	item, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.RespondJSON(w, http.StatusOK, item)
}

func (h *CatalogHandler[T, R]) Create(w http.ResponseWriter, r *http.Request) {
	var req R
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}

	item, err := h.catalog.Create(r.Context(), req)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.RespondJSON(w, http.StatusCreated, item)
}

func (h *CatalogHandler[T, R]) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		api.Error(w, err)
		return
	}

	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		api.Error(w, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}

	item, err := h.catalog.Update(r.Context(), id, patch)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.RespondJSON(w, http.StatusOK, item)
}

func (h *CatalogHandler[T, R]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		api.Error(w, err)
		return
	}

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		api.Error(w, err)
		return
	}

	api.RespondJSON(w, http.StatusOK, map[string]string{"message": "item deleted"})
}
