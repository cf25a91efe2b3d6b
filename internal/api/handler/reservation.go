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
	"github.com/km0-cafe/restaurant-service/internal/websockets"
)

// ReservationHandler serves the reservation lifecycle endpoints and
// pushes lifecycle events to the live feed.
type ReservationHandler struct {
	reservations *service.ReservationService
	hub          *websockets.Hub
	log          *zap.Logger
}

func NewReservationHandler(reservations *service.ReservationService, hub *websockets.Hub, log *zap.Logger) *ReservationHandler {
	return &ReservationHandler{reservations: reservations, hub: hub, log: log}
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Error(w, apperr.New(apperr.KindAuthentication, "authentication required"))
		return
	}

	var req models.ReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}

	res, err := h.reservations.Create(r.Context(), user, req)
	if err != nil {
		api.Error(w, err)
		return
	}

	h.hub.Broadcast(websockets.EventReservationCreated, res,
		websockets.ClientAdmin, websockets.ClientVerifier)

	api.RespondJSON(w, http.StatusCreated, res)
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Error(w, apperr.New(apperr.KindAuthentication, "authentication required"))
		return
	}

	filters := service.ListFilters{
		Type:   r.URL.Query().Get("type"),
		Status: r.URL.Query().Get("status"),
		Date:   r.URL.Query().Get("date"),
	}

	list, err := h.reservations.List(r.Context(), user, filters)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.RespondJSON(w, http.StatusOK, list)
}

func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	res, err := h.reservations.Get(r.Context(), user, id)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.RespondJSON(w, http.StatusOK, res)
}

func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		api.Error(w, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}

	res, err := h.reservations.Update(r.Context(), user, id, patch)
	if err != nil {
		api.Error(w, err)
		return
	}

	h.hub.Broadcast(websockets.EventReservationUpdated, res,
		websockets.ClientAdmin, websockets.ClientVerifier)

	api.RespondJSON(w, http.StatusOK, res)
}

func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.reservations.Delete(r.Context(), user, id); err != nil {
		api.Error(w, err)
		return
	}

	api.RespondJSON(w, http.StatusOK, map[string]string{"message": "reservation deleted"})
}
