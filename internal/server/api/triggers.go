package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/store"
)

const (
	defaultTriggerLimit = 50
	maxTriggerLimit     = 500
)

// TriggersHandler lists recently dispatched triggers.
type TriggersHandler struct {
	store *store.Store
}

// NewTriggersHandler creates a TriggersHandler over s.
func NewTriggersHandler(s *store.Store) *TriggersHandler {
	return &TriggersHandler{store: s}
}

type triggerResponse struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Key       string `json:"key"`
	Label     string `json:"label"`
	FiredAt   string `json:"fired_at"`
}

type listTriggersResponse struct {
	Triggers []triggerResponse `json:"triggers"`
}

// ServeHTTP handles GET /api/triggers?limit=N.
func (h *TriggersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := defaultTriggerLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = min(n, maxTriggerLimit)
	}

	triggers, err := h.store.Triggers().Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list triggers")
		return
	}

	response := listTriggersResponse{
		Triggers: make([]triggerResponse, 0, len(triggers)),
	}
	for _, t := range triggers {
		response.Triggers = append(response.Triggers, triggerResponse{
			ID:        t.ID,
			SessionID: t.SessionID,
			Key:       t.Key.String(),
			Label:     t.Label,
			FiredAt:   t.FiredAt.Format(time.RFC3339Nano),
		})
	}

	writeJSON(w, http.StatusOK, response)
}
