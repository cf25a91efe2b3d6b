package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/km0-cafe/restaurant-service/internal/api"
	"github.com/km0-cafe/restaurant-service/internal/apperr"
	"github.com/km0-cafe/restaurant-service/internal/assets"
)

// maxUploadBytes caps catalog image uploads at 8 MiB.
const maxUploadBytes = 8 << 20

// UploadHandler stores catalog images and returns the public URL to
// reference from catalog records.
type UploadHandler struct {
	store assets.Store
	log   *zap.Logger
}

func NewUploadHandler(store assets.Store, log *zap.Logger) *UploadHandler {
	return &UploadHandler{store: store, log: log}
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	if !assets.ValidKind(kind) {
		api.Error(w, apperr.Newf(apperr.KindValidation, "unknown upload kind %q", kind))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		api.Error(w, apperr.New(apperr.KindValidation, "invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		api.Error(w, apperr.New(apperr.KindValidation, "image file is required"))
		return
	}
	defer file.Close()

	url, err := h.store.Save(r.Context(), kind, header.Filename, file)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.RespondJSON(w, http.StatusCreated, map[string]string{"url": url})
}
