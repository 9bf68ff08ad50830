package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Geeks-Solutions/exmedias/internal/domain"
	"github.com/Geeks-Solutions/exmedias/internal/service"
	"github.com/Geeks-Solutions/exmedias/pkg/httputil"
)

// PlatformHandler handles HTTP requests for platform endpoints.
type PlatformHandler struct {
	service *service.PlatformService
	logger  *slog.Logger
}

// NewPlatformHandler creates a new platform HTTP handler.
func NewPlatformHandler(svc *service.PlatformService, logger *slog.Logger) *PlatformHandler {
	return &PlatformHandler{
		service: svc,
		logger:  logger,
	}
}

// ListPlatforms handles POST /platforms/list.
func (h *PlatformHandler) ListPlatforms(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeFilterRequest(w, r)
	if !ok {
		return
	}

	envelope, err := h.service.ListPlatforms(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, envelope)
}

// CreatePlatform handles POST /platforms.
func (h *PlatformHandler) CreatePlatform(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var platform domain.Platform
	if err := json.NewDecoder(r.Body).Decode(&platform); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	created, err := h.service.CreatePlatform(r.Context(), &platform)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: created})
}

// GetPlatform handles GET /platforms/{id}.
func (h *PlatformHandler) GetPlatform(w http.ResponseWriter, r *http.Request) {
	platform, err := h.service.GetPlatform(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: platform})
}

// UpdatePlatform handles PUT /platforms/{id}.
func (h *PlatformHandler) UpdatePlatform(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var platform domain.Platform
	if err := json.NewDecoder(r.Body).Decode(&platform); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}
	platform.ID = chi.URLParam(r, "id")

	updated, err := h.service.UpdatePlatform(r.Context(), &platform)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: updated})
}

// DeletePlatform handles DELETE /platforms/{id}.
func (h *PlatformHandler) DeletePlatform(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeletePlatform(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id, "status": "deleted"}})
}
