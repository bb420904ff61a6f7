package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/collegeapp/registrar/internal/database"
	"github.com/collegeapp/registrar/internal/relations"
	"github.com/collegeapp/registrar/internal/rows"
	"github.com/collegeapp/registrar/internal/view"
)

// Pinger reports store health
type Pinger interface {
	SchemaVersion() (int, error)
}

// Handlers contains all HTTP handlers
type Handlers struct {
	store        Pinger
	prims        *rows.Primitives
	relations    *relations.Manager
	viewer       *view.Viewer
	viewRowLimit int
}

// New creates a new Handlers instance
func New(store Pinger, prims *rows.Primitives, rel *relations.Manager, viewer *view.Viewer, viewRowLimit int) *Handlers {
	return &Handlers{
		store:        store,
		prims:        prims,
		relations:    rel,
		viewer:       viewer,
		viewRowLimit: viewRowLimit,
	}
}

// Health reports whether the store answers
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	version, err := h.store.SchemaVersion()
	if err != nil {
		log.Error().Err(err).Msg("Health check failed")
		h.jsonError(w, "Database unavailable", http.StatusServiceUnavailable)
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]any{"status": "ok", "schema_version": version})
}

func (h *Handlers) jsonResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handlers) jsonError(w http.ResponseWriter, message string, status int) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}

// storeError maps a storage error to a response
func (h *Handlers) storeError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, rows.ErrUnknownIdentifier):
		h.jsonError(w, err.Error(), http.StatusBadRequest)
	case database.IsConstraint(err):
		h.jsonError(w, message+": constraint violation", http.StatusConflict)
	default:
		log.Error().Err(err).Msg(message)
		h.jsonError(w, message, http.StatusServiceUnavailable)
	}
}

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
