// Package http exposes the library's operations over a chi router the host
// application can mount.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Geeks-Solutions/exmedias/internal/domain"
	"github.com/Geeks-Solutions/exmedias/internal/filter"
	"github.com/Geeks-Solutions/exmedias/internal/service"
	"github.com/Geeks-Solutions/exmedias/pkg/httputil"
)

// MediaHandler handles HTTP requests for media endpoints.
type MediaHandler struct {
	service *service.MediaService
	logger  *slog.Logger
}

// NewMediaHandler creates a new media HTTP handler.
func NewMediaHandler(svc *service.MediaService, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{
		service: svc,
		logger:  logger,
	}
}

// decodeFilterRequest reads a listing filter body. An empty body is a valid
// request that matches everything.
func decodeFilterRequest(w http.ResponseWriter, r *http.Request) (*filter.Request, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req filter.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid filter body: " + err.Error()},
		})
		return nil, false
	}
	return &req, true
}

// ListMedias handles POST /medias/list.
func (h *MediaHandler) ListMedias(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeFilterRequest(w, r)
	if !ok {
		return
	}

	envelope, err := h.service.ListMedias(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, envelope)
}

// CreateMedia handles POST /medias.
func (h *MediaHandler) CreateMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var media domain.Media
	if err := json.NewDecoder(r.Body).Decode(&media); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	created, err := h.service.CreateMedia(r.Context(), &media)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: created})
}

// GetMedia handles GET /medias/{id}.
func (h *MediaHandler) GetMedia(w http.ResponseWriter, r *http.Request) {
	media, err := h.service.GetMedia(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: media})
}

// UpdateMedia handles PUT /medias/{id}.
func (h *MediaHandler) UpdateMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var media domain.Media
	if err := json.NewDecoder(r.Body).Decode(&media); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}
	media.ID = chi.URLParam(r, "id")

	updated, err := h.service.UpdateMedia(r.Context(), &media)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: updated})
}

// DeleteMedia handles DELETE /medias/{id}.
func (h *MediaHandler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteMedia(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id, "status": "deleted"}})
}

// UploadFile handles POST /medias/{id}/files (multipart/form-data).
func (h *MediaHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	maxSize := domain.MaxFileSize + (1 << 20) // form field overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(domain.MaxFileSize); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "failed to parse multipart form: " + err.Error()},
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "file is required: " + err.Error()},
		})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	media, err := h.service.UploadFile(r.Context(), chi.URLParam(r, "id"), &service.UploadFileInput{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		PlatformID:  r.FormValue("platform_id"),
		Data:        file,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: media})
}

// SignedFileURL handles GET /medias/{id}/files/url?file_id=...
// The file id arrives as a query parameter because storage keys contain
// slashes.
func (h *MediaHandler) SignedFileURL(w http.ResponseWriter, r *http.Request) {
	fileID := r.URL.Query().Get("file_id")
	if fileID == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "file_id query parameter is required"},
		})
		return
	}

	url, err := h.service.SignedFileURL(r.Context(), chi.URLParam(r, "id"), fileID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"url": url}})
}

// LinkContent handles POST /medias/{id}/contents/{contentID}.
func (h *MediaHandler) LinkContent(w http.ResponseWriter, r *http.Request) {
	if err := h.service.LinkContent(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "contentID")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusNoContent, nil)
}

// UnlinkContent handles DELETE /medias/{id}/contents/{contentID}.
func (h *MediaHandler) UnlinkContent(w http.ResponseWriter, r *http.Request) {
	if err := h.service.UnlinkContent(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "contentID")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusNoContent, nil)
}

// CountNamespace handles GET /namespaces/{namespace}/count.
func (h *MediaHandler) CountNamespace(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")
	count, err := h.service.CountNamespace(r.Context(), namespace)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"namespace": namespace,
		"count":     count,
	}})
}
