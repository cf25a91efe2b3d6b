// Package handler contains the HTTP layer: request decoding, principal
// extraction and response shaping. All domain rules live in the
// services.
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

// AuthHandler serves registration, login, token refresh and profile
// management.
type AuthHandler struct {
	auth *service.AuthService
	log  *zap.Logger
}

func NewAuthHandler(auth *service.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

// authResponse pairs the account with its tokens.
type authResponse struct {
	User   *models.User      `json:"user"`
	Tokens *models.TokenPair `json:"tokens"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}

	user, tokens, err := h.auth.Register(r.Context(), req)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.RespondJSON(w, http.StatusCreated, authResponse{User: user, Tokens: tokens})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}

	user, tokens, err := h.auth.Login(r.Context(), req)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.RespondJSON(w, http.StatusOK, authResponse{User: user, Tokens: tokens})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		api.Error(w, apperr.New(apperr.KindValidation, "refreshToken is required"))
		return
	}

	tokens, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.RespondJSON(w, http.StatusOK, tokens)
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Error(w, apperr.New(apperr.KindAuthentication, "authentication required"))
		return
	}

	api.RespondJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Error(w, apperr.New(apperr.KindAuthentication, "authentication required"))
		return
	}

	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		api.Error(w, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}

	updated, err := h.auth.UpdateProfile(r.Context(), user, patch)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.RespondJSON(w, http.StatusOK, updated)
}
