package http

import (
	"context"
	"net/http"
	"time"

	"financetracker/internal/core"
	"financetracker/internal/log"
)

const readyTimeout = 2 * time.Second

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.summary.Summary(r.Context(), userID(r))
	if err != nil {
		respondError(w, r, err, log.OpList, errorMessages{internal: "Failed to build summary"})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	writeJSON(w, http.StatusOK, core.Categories)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	m := s.tracer.GetMetrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
		"stats": map[string]int64{
			"requests":             m.TotalRequests,
			"last_response_us":     m.LastResponseTime,
			"suspicious_requests":  s.detector.SuspiciousRequests(),
			"rate_limited_clients": int64(s.authLimiter.ActiveClients()),
		},
	})
}

// handleReady checks the database; a server without one is never ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"checks": map[string]string{"database": "not configured"},
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()
	if err := s.db.Ping(ctx); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed",
			"check", "database", log.FieldError, err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"checks": map[string]string{"database": "unreachable"},
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
		"checks": map[string]string{"database": "ok"},
	})
}
