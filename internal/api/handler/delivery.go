package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/km0-cafe/restaurant-service/internal/api"
	"github.com/km0-cafe/restaurant-service/internal/apperr"
	"github.com/km0-cafe/restaurant-service/internal/middleware"
	"github.com/km0-cafe/restaurant-service/internal/models"
	"github.com/km0-cafe/restaurant-service/internal/service"
)

// DeliveryHandler serves the delivery order endpoints.
type DeliveryHandler struct {
	deliveries *service.DeliveryService
	log        *zap.Logger
}

func NewDeliveryHandler(deliveries *service.DeliveryService, log *zap.Logger) *DeliveryHandler {
	return &DeliveryHandler{deliveries: deliveries, log: log}
}

func (h *DeliveryHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Error(w, apperr.New(apperr.KindAuthentication, "authentication required"))
		return
	}

	var req models.DeliveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}

	delivery, err := h.deliveries.Create(r.Context(), user, req)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.RespondJSON(w, http.StatusCreated, delivery)
}

func (h *DeliveryHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Error(w, apperr.New(apperr.KindAuthentication, "authentication required"))
		return
	}

	list, err := h.deliveries.List(r.Context(), user, r.URL.Query().Get("status"))
	if err != nil {
		api.Error(w, err)
		return
	}

	api.RespondJSON(w, http.StatusOK, list)
}

func (h *DeliveryHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Error(w, apperr.New(apperr.KindAuthentication, "authentication required"))
		return
	}

	id, err := pathID(r)
	if err != nil {
		api.Error(w, err)
		return
	}

	delivery, err := h.deliveries.Get(r.Context(), user, id)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.RespondJSON(w, http.StatusOK, delivery)
}

func (h *DeliveryHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		api.Error(w, err)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		api.Error(w, apperr.New(apperr.KindValidation, "status is required"))
		return
	}

	delivery, err := h.deliveries.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.RespondJSON(w, http.StatusOK, delivery)
}

func (h *DeliveryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Error(w, apperr.New(apperr.KindAuthentication, "authentication required"))
		return
	}

	id, err := pathID(r)
	if err != nil {
		api.Error(w, err)
		return
	}

	if err := h.deliveries.Delete(r.Context(), user, id); err != nil {
		api.Error(w, err)
		return
	}

	api.RespondJSON(w, http.StatusOK, map[string]string{"message": "delivery deleted"})
}
