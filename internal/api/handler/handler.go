package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/km0-cafe/restaurant-service/internal/apperr"
)

// pathID parses the {id} wildcard of the matched route.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, apperr.New(apperr.KindValidation, "invalid id")
	}
	return id, nil
}
