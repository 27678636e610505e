package api

import (
	"net/http"
	"strings"

	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/trigger"
)

// RadiiHandler exposes the runtime touch-zone sizes.
type RadiiHandler struct {
	tuning *trigger.Tuning
}

// NewRadiiHandler creates a RadiiHandler over tuning.
func NewRadiiHandler(t *trigger.Tuning) *RadiiHandler {
	return &RadiiHandler{tuning: t}
}

type radiiResponse struct {
	Finger int            `json:"finger"`
	Thumb  int            `json:"thumb"`
	Limits trigger.Limits `json:"limits"`
}

// ServeHTTP implements the http.Handler interface.
// Expected paths: /api/radii, /api/radii/increase, /api/radii/decrease
func (h *RadiiHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	action := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/radii"), "/")

	switch action {
	case "":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.respond(w, h.tuning.Radii())
	case "increase", "decrease":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if action == "increase" {
			h.respond(w, h.tuning.Increase())
		} else {
			h.respond(w, h.tuning.Decrease())
		}
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *RadiiHandler) respond(w http.ResponseWriter, r trigger.Radii) {
	writeJSON(w, http.StatusOK, radiiResponse{
		Finger: r.Finger,
		Thumb:  r.Thumb,
		Limits: h.tuning.Limits(),
	})
}
