package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/store"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/trigger"
)

// SamplesHandler handles HTTP requests for the sample bank. Changes take
// effect at the next session start.
type SamplesHandler struct {
	store *store.Store
}

// NewSamplesHandler creates a new SamplesHandler with the given store.
func NewSamplesHandler(s *store.Store) *SamplesHandler {
	return &SamplesHandler{store: s}
}

// Request types

type setSampleRequest struct {
	Label string `json:"label"`
	File  string `json:"file"`
}

// Response types

type sampleResponse struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	File      string `json:"file"`
	UpdatedAt string `json:"updated_at"`
}

type listSamplesResponse struct {
	Samples []sampleResponse `json:"samples"`
}

func toSampleResponse(s *store.Sample) sampleResponse {
	return sampleResponse{
		Key:       s.Key.String(),
		Label:     s.Label,
		File:      s.File,
		UpdatedAt: s.UpdatedAt.Format(time.RFC3339),
	}
}

// ServeHTTP implements the http.Handler interface.
// Expected paths: /api/samples, /api/samples/{key}, /api/samples/{key}/reset
// where {key} is e.g. Right/INDEX or ThumbsTogether.
func (h *SamplesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/samples"), "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	reset := false
	if rest, ok := strings.CutSuffix(path, "/reset"); ok {
		path, reset = rest, true
	}

	key, err := trigger.ParseKey(path)
	if err != nil {
		writeError(w, http.StatusNotFound, "Unknown key")
		return
	}

	switch {
	case reset && r.Method == http.MethodPost:
		h.reset(w, r, key)
	case reset:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	case r.Method == http.MethodGet:
		h.get(w, r, key)
	case r.Method == http.MethodPut:
		h.set(w, r, key)
	case r.Method == http.MethodDelete:
		h.delete(w, r, key)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// list handles GET /api/samples
func (h *SamplesHandler) list(w http.ResponseWriter, r *http.Request) {
	samples, err := h.store.Samples().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list samples")
		return
	}

	response := listSamplesResponse{
		Samples: make([]sampleResponse, 0, len(samples)),
	}
	for _, s := range samples {
		response.Samples = append(response.Samples, toSampleResponse(s))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/samples/{key}
func (h *SamplesHandler) get(w http.ResponseWriter, r *http.Request, key trigger.Key) {
	s, err := h.store.Samples().Get(key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No sample bound to key")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get sample")
		return
	}

	writeJSON(w, http.StatusOK, toSampleResponse(s))
}

// set handles PUT /api/samples/{key}
func (h *SamplesHandler) set(w http.ResponseWriter, r *http.Request, key trigger.Key) {
	var req setSampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if strings.TrimSpace(req.File) == "" {
		writeError(w, http.StatusBadRequest, "File is required")
		return
	}

	s := &store.Sample{Key: key, Label: req.Label, File: req.File}
	if err := h.store.Samples().Set(s); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save sample")
		return
	}

	writeJSON(w, http.StatusOK, toSampleResponse(s))
}

// delete handles DELETE /api/samples/{key}
func (h *SamplesHandler) delete(w http.ResponseWriter, r *http.Request, key trigger.Key) {
	if err := h.store.Samples().Delete(key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No sample bound to key")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete sample")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// reset handles POST /api/samples/{key}/reset
func (h *SamplesHandler) reset(w http.ResponseWriter, r *http.Request, key trigger.Key) {
	s, err := h.store.Samples().Reset(key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset sample")
		return
	}

	writeJSON(w, http.StatusOK, toSampleResponse(s))
}
