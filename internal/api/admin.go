package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

var errMetricsDisabled = errors.New("prometheus exposition is not configured")

/* ---------------- GET /admin/health ---------------- */

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	report := h.analyzer.Analyze()
	writeJSON(w, report)
}

/* ---------------- GET /admin/stats ---------------- */

type statsResponse struct {
	Live     int              `json:"live"`
	Capacity int              `json:"capacity"`
	Metrics  map[string]int64 `json:"metrics"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, statsResponse{
		Live:     h.pastes.Len(),
		Capacity: h.pastes.Capacity(),
		Metrics:  h.metrics.Snapshot(),
	})
}

/* ---------------- GET /admin/pastes ---------------- */

type pasteInfo struct {
	ID       string    `json:"id"`
	Size     int       `json:"size"`
	StoredAt time.Time `json:"stored_at"`
}

// ListPastes lists live pastes oldest first, without their content.
// ?limit=N keeps only the N newest.
func (h *Handler) ListPastes(w http.ResponseWriter, r *http.Request) {
	entries := h.pastes.Entries()

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			ComposeError(http.StatusBadRequest, "invalid limit",
				fmt.Errorf("limit %q: want a non-negative integer", raw)).Write(w)
			return
		}
		if limit < len(entries) {
			entries = entries[len(entries)-limit:]
		}
	}

	resp := make([]pasteInfo, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, pasteInfo{
			ID:       e.ID,
			Size:     e.Size(),
			StoredAt: e.StoredAt,
		})
	}

	writeJSON(w, resp)
}

/* ---------------- GET /metrics ---------------- */

func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	if h.opts.Exposition == nil {
		ComposeError(http.StatusNotFound, "metrics disabled", errMetricsDisabled).Write(w)
		return
	}
	h.opts.Exposition.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
