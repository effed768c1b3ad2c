package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cardlight/cardlight/internal/httputil"
	"github.com/cardlight/cardlight/internal/logging"
	"github.com/cardlight/cardlight/internal/metrics"
	"github.com/cardlight/cardlight/internal/models"
	"github.com/cardlight/cardlight/internal/service"
)

// Handler translates HTTP requests into service calls.
type Handler struct {
	analytics *service.AnalyticsService
	gift      *service.GiftService
	logger    *logging.Logger
	started   time.Time
}

func NewHandler(analytics *service.AnalyticsService, gift *service.GiftService, logger *logging.Logger) *Handler {
	return &Handler{
		analytics: analytics,
		gift:      gift,
		logger:    logger,
		started:   time.Now(),
	}
}

// TrackEvent handles POST /api/analytics/track.
func (h *Handler) TrackEvent(w http.ResponseWriter, r *http.Request) {
	var req models.TrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	_, err := h.analytics.RecordEvent(r.Context(), &req)
	if err != nil {
		if models.IsValidation(err) {
			metrics.EventsTotal.WithLabelValues(req.Event, "rejected").Inc()
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		metrics.EventsTotal.WithLabelValues(req.Event, "error").Inc()
		h.logger.ErrorContext(r.Context(), "failed to record event", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to record event")
		return
	}

	metrics.EventsTotal.WithLabelValues(req.Event, "accepted").Inc()
	// The client fires and forgets; an empty 200 is all it needs.
	w.WriteHeader(http.StatusOK)
}

// GetSessionTimeline handles GET /api/analytics/session/{id}.
func (h *Handler) GetSessionTimeline(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		httputil.WriteError(w, http.StatusBadRequest, "Session ID required")
		return
	}

	events, err := h.analytics.SessionTimeline(r.Context(), sessionID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load session timeline", "session_id", sessionID, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to load session timeline")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, events)
}

// GetVisitorHistory handles GET /api/analytics/visitor/{id}.
func (h *Handler) GetVisitorHistory(w http.ResponseWriter, r *http.Request) {
	visitorID := r.PathValue("id")
	if visitorID == "" {
		httputil.WriteError(w, http.StatusBadRequest, "Visitor ID required")
		return
	}

	events, err := h.analytics.VisitorHistory(r.Context(), visitorID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load visitor history", "visitor_id", visitorID, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to load visitor history")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, events)
}

// ListSessions handles GET /api/analytics/sessions.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.analytics.ListSessions(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list sessions", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, sessions)
}

// SubmitGiftResponse handles POST /api/gift/respond.
func (h *Handler) SubmitGiftResponse(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	outcome, _, err := h.gift.SubmitResponse(r.Context(), &req)
	if err != nil {
		if models.IsValidation(err) {
			metrics.ResponsesTotal.WithLabelValues("invalid").Inc()
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		metrics.ResponsesTotal.WithLabelValues("error").Inc()
		h.logger.ErrorContext(r.Context(), "failed to save gift response", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to save response")
		return
	}

	if outcome == service.OutcomeAlreadyRecorded {
		metrics.ResponsesTotal.WithLabelValues("duplicate").Inc()
		httputil.WriteMessage(w, http.StatusOK, "Response already recorded")
		return
	}

	metrics.ResponsesTotal.WithLabelValues("created").Inc()
	httputil.WriteMessage(w, http.StatusCreated, "Response saved")
}

// ListGiftResponses handles GET /api/gift/all.
func (h *Handler) ListGiftResponses(w http.ResponseWriter, r *http.Request) {
	responses, err := h.gift.ListResponses(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list gift responses", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to list responses")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, responses)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    time.Since(h.started).Seconds(),
		"timestamp": time.Now().UnixMilli(),
	})
}
