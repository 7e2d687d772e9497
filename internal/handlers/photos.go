package handlers

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-maintenance/internal/storage"
)

// maxPhotoSize caps dashboard photo uploads at 10 MB.
const maxPhotoSize = 10 << 20

// PhotoHandler handles board photo uploads and retrieval.
type PhotoHandler struct {
	store storage.PhotoStore
}

// NewPhotoHandler creates a new photo handler.
func NewPhotoHandler(store storage.PhotoStore) *PhotoHandler {
	return &PhotoHandler{store: store}
}

// Upload accepts a multipart photo and returns the URL to reference in a
// checkout or check-in request. The upload must succeed before the ticket
// operation that cites it; a storage failure here is a hard error, never a
// silently dropped photo.
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		http.Error(w, "Missing photo field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	url, err := h.store.Save(r.Context(), header.Filename, file)
	if err != nil {
		log.WithError(err).Error("Photo upload failed")
		http.Error(w, "Photo upload failed", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"name": strings.TrimPrefix(url, storage.PhotoURLPrefix),
		"url":  url,
	})
}

// Serve streams a stored photo back by name.
func (h *PhotoHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	data, err := h.store.Open(r.Context(), name)
	if err != nil {
		http.Error(w, "Photo not found", http.StatusNotFound)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(data)
}
