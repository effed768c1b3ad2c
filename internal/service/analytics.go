package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cardlight/cardlight/internal/models"
	"github.com/cardlight/cardlight/internal/repository"
)

// DefaultReferrer is stored when the client did not report one.
const DefaultReferrer = "direct"

// AnalyticsService handles the event-ingestion write path and the two read
// projections (session timeline, visitor history).
type AnalyticsService struct {
	repo repository.Repository
}

// NewAnalyticsService creates a new analytics service instance.
func NewAnalyticsService(repo repository.Repository) *AnalyticsService {
	return &AnalyticsService{repo: repo}
}

// RecordEvent validates and appends one analytics event. Duplicate
// submissions of the same logical event are stored as duplicate rows on
// purpose: delivery is fire-and-forget telemetry, and suppressing repeats
// here would hide client retry behavior.
func (s *AnalyticsService) RecordEvent(ctx context.Context, req *models.TrackRequest) (*models.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	referrer := req.Referrer
	if referrer == "" {
		referrer = DefaultReferrer
	}
	meta := req.Meta
	if meta == nil {
		meta = map[string]any{}
	}

	eventUUID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate event id: %w", err)
	}
	e := &models.Event{
		ID:             eventUUID.String(),
		VisitorID:      req.VisitorID,
		SessionID:      req.SessionID,
		PageInstanceID: req.PageInstanceID,
		Referrer:       referrer,
		EntryType:      req.EntryType,
		URL:            req.URL,
		UserAgent:      req.UserAgent,
		Screen:         req.Screen,
		Event:          req.Event,
		Meta:           meta,
		Timestamp:      req.Timestamp,
	}

	if err := s.repo.InsertEvent(ctx, e); err != nil {
		return nil, err
	}

	return e, nil
}

// SessionTimeline returns all events for one session, timestamp-ascending.
// An unknown session yields an empty slice, not an error.
func (s *AnalyticsService) SessionTimeline(ctx context.Context, sessionID string) ([]*models.Event, error) {
	return s.repo.EventsBySession(ctx, sessionID)
}

// VisitorHistory returns all events for one visitor, timestamp-ascending.
// An unknown visitor yields an empty slice, not an error.
func (s *AnalyticsService) VisitorHistory(ctx context.Context, visitorID string) ([]*models.Event, error) {
	return s.repo.EventsByVisitor(ctx, visitorID)
}

// ListSessions returns the distinct session ids seen across all events.
func (s *AnalyticsService) ListSessions(ctx context.Context) ([]string, error) {
	return s.repo.ListSessions(ctx)
}
