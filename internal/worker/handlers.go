package worker

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/thebtf/autofocus/internal/analytics"
	"github.com/thebtf/autofocus/pkg/models"
)

// defaultListLimit bounds GET /sessions/ when no limit is given.
const defaultListLimit = 50

func (s *Service) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "AutoFocus API is running",
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "starting"
	if s.ready.Load() {
		status = "ready"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         status,
		"version":        s.version,
		"uptime_seconds": int(time.Since(s.startTime).Seconds()),
	})
}

func (s *Service) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		writeError(w, http.StatusServiceUnavailable, "service not ready")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Service) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"classifier": s.classifier.Snapshot(),
	})
}

func (s *Service) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ProjectName == "" {
		writeError(w, http.StatusBadRequest, "project_name is required")
		return
	}
	if !models.ValidMode(req.Mode) {
		writeError(w, http.StatusBadRequest, "mode must be one of: nudge, guardrail, monk")
		return
	}

	sess, err := s.sessionStore.Create(r.Context(), req)
	if err != nil {
		log.Error().Err(err).Str("project", req.ProjectName).Msg("Failed to create session")
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

func (s *Service) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", defaultListLimit)
	offset := parseQueryInt(r, "offset", 0)

	sessions, err := s.sessionStore.List(r.Context(), limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list sessions")
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []*models.FocusSession{}
	}

	writeJSON(w, http.StatusOK, sessions)
}

func (s *Service) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	ended, err := s.sessionStore.End(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Int64("id", id).Msg("Failed to end session")
		writeError(w, http.StatusInternalServerError, "failed to end session")
		return
	}
	if !ended {
		writeError(w, http.StatusNotFound, "Active session not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Session ended successfully"})
}

func (s *Service) handleSetDistractions(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	countParam := r.URL.Query().Get("count")
	count, err := strconv.ParseInt(countParam, 10, 64)
	if err != nil || count < 0 {
		writeError(w, http.StatusBadRequest, "count must be a non-negative integer")
		return
	}

	// Overwrite, not increment; succeeds even for unknown ids
	if err := s.sessionStore.SetDistractions(r.Context(), id, count); err != nil {
		log.Error().Err(err).Int64("id", id).Msg("Failed to update distraction count")
		writeError(w, http.StatusInternalServerError, "failed to update distraction count")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Distraction count updated"})
}

func (s *Service) handleWeeklyAnalytics(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	weekAgo := now.AddDate(0, 0, -7)

	sessions, err := s.sessionStore.ListSince(r.Context(), weekAgo)
	if err != nil {
		log.Error().Err(err).Msg("Failed to query weekly sessions")
		writeError(w, http.StatusInternalServerError, "failed to compute analytics")
		return
	}

	writeJSON(w, http.StatusOK, analytics.Summarize(sessions, now))
}

func (s *Service) handleAnalyzePage(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Classify never fails: service errors resolve to a permissive
	// default so the extension is never blocked on infrastructure
	assessment := s.classifier.Classify(r.Context(),
		req.ProjectDescription, req.URL, req.Title, req.ContentPreview)

	writeJSON(w, http.StatusOK, assessment)
}

func (s *Service) handleModes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"modes": s.modes.Load().All(),
	})
}

// parseQueryInt parses an integer query parameter with a default.
func parseQueryInt(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return def
}
