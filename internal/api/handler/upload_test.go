package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/km0-cafe/restaurant-service/internal/assets"
)

func multipartImage(t *testing.T, field, filename string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-image-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func newUploadRequest(t *testing.T, kind, field, filename string) *http.Request {
	body, contentType := multipartImage(t, field, filename)
	req := httptest.NewRequest(http.MethodPost, "/api/uploads/"+kind, body)
	req.Header.Set("Content-Type", contentType)
	req.SetPathValue("kind", kind)
	return req
}

func TestUpload(t *testing.T) {
	store, err := assets.NewDiskStore(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)
	h := NewUploadHandler(store, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Upload(rec, newUploadRequest(t, "menu", "image", "tajine.jpg"))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp["url"], "http://localhost:8080/images/menu/"), resp["url"])
}

func TestUploadRejections(t *testing.T) {
	store, err := assets.NewDiskStore(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)
	h := NewUploadHandler(store, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Upload(rec, newUploadRequest(t, "avatars", "image", "me.png"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Upload(rec, newUploadRequest(t, "menu", "file", "tajine.jpg"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Upload(rec, newUploadRequest(t, "menu", "image", "script.sh"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
