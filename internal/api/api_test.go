package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km0-cafe/restaurant-service/internal/apperr"
)

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apperr.New(apperr.KindValidation, "bad input"), http.StatusBadRequest},
		{apperr.New(apperr.KindConflict, "already verified"), http.StatusBadRequest},
		{apperr.New(apperr.KindAuthentication, "no token provided"), http.StatusUnauthorized},
		{apperr.New(apperr.KindAuthorization, "insufficient role"), http.StatusForbidden},
		{apperr.New(apperr.KindNotFound, "reservation not found"), http.StatusNotFound},
		{apperr.Wrap(apperr.KindDependency, "db down", errors.New("conn refused")), http.StatusInternalServerError},
		{errors.New("untyped"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		Error(rec, tc.err)
		assert.Equal(t, tc.status, rec.Code, "error %v", tc.err)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	}
}

func TestErrorMasksInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, apperr.Wrap(apperr.KindDependency, "db down", errors.New("password=hunter2")))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "internal server error", resp.Message)
}

func TestErrorIncludesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, apperr.New(apperr.KindValidation, "missing or invalid fields").
		WithDetails("contactPhone is required", "contactEmail must be a valid email"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "missing or invalid fields", resp.Message)
	assert.Len(t, resp.Details, 2)
}

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, http.StatusCreated, map[string]string{"url": "/images/menu/x.jpg"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "/images/menu/x.jpg", body["url"])
}
