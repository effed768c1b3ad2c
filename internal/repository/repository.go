package repository

import (
	"context"
	"errors"

	"github.com/cardlight/cardlight/internal/models"
)

var (
	ErrResponseNotFound = errors.New("gift response not found")
	ErrResponseExists   = errors.New("gift response already exists for visitor/session pair")
)

// Repository defines the interface for event and gift-response persistence.
type Repository interface {
	// Event store (append-only)
	InsertEvent(ctx context.Context, e *models.Event) error
	EventsBySession(ctx context.Context, sessionID string) ([]*models.Event, error)
	EventsByVisitor(ctx context.Context, visitorID string) ([]*models.Event, error)
	ListSessions(ctx context.Context) ([]string, error)

	// Response store (at most one row per visitor/session pair)
	InsertResponse(ctx context.Context, r *models.GiftResponse) error
	ResponseByPair(ctx context.Context, visitorID, sessionID string) (*models.GiftResponse, error)
	ListResponses(ctx context.Context) ([]*models.GiftResponse, error)

	// Utility
	Close() error
}
