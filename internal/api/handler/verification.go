package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/km0-cafe/restaurant-service/internal/api"
	"github.com/km0-cafe/restaurant-service/internal/service"
	"github.com/km0-cafe/restaurant-service/internal/websockets"
)

// VerificationHandler serves the check-in flow: the public summary a
// scanned QR code resolves to, and the verifier-only verify action.
type VerificationHandler struct {
	reservations *service.ReservationService
	hub          *websockets.Hub
	log          *zap.Logger
}

func NewVerificationHandler(reservations *service.ReservationService, hub *websockets.Hub, log *zap.Logger) *VerificationHandler {
	return &VerificationHandler{reservations: reservations, hub: hub, log: log}
}

// Summary is public: scanning a QR code must resolve without a login.
// It exposes only the reduced verification view.
func (h *VerificationHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		api.Error(w, err)
		return
	}

	summary, err := h.reservations.GetVerificationSummary(r.Context(), id)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.RespondJSON(w, http.StatusOK, summary)
}

func (h *VerificationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		api.Error(w, err)
		return
	}

	result, err := h.reservations.Verify(r.Context(), id)
	if err != nil {
		api.Error(w, err)
		return
	}

	h.hub.Broadcast(websockets.EventReservationVerified, result,
		websockets.ClientAdmin, websockets.ClientVerifier, websockets.ClientDisplay)

	api.RespondJSON(w, http.StatusOK, result)
}
