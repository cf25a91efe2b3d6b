package handler

import (
	"net/http"

	"github.com/km0-cafe/restaurant-service/internal/api"
	"github.com/km0-cafe/restaurant-service/internal/db"
)

// HealthHandler reports process and database liveness.
type HealthHandler struct {
	db *db.Postgres
}

func NewHealthHandler(database *db.Postgres) *HealthHandler {
	return &HealthHandler{db: database}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.HealthCheck(r.Context()); err != nil {
		api.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "degraded",
			"database": "unreachable",
		})
		return
	}

	api.RespondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
