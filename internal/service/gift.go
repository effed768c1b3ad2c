package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cardlight/cardlight/internal/models"
	"github.com/cardlight/cardlight/internal/repository"
)

// SubmitOutcome distinguishes a fresh insert from a dedup hit. Both are
// successful outcomes; AlreadyRecorded is not an error.
type SubmitOutcome int

const (
	OutcomeCreated SubmitOutcome = iota
	OutcomeAlreadyRecorded
)

// GiftService handles the at-most-once gift-response write path.
type GiftService struct {
	repo repository.Repository
}

// NewGiftService creates a new gift service instance.
func NewGiftService(repo repository.Repository) *GiftService {
	return &GiftService{repo: repo}
}

// SubmitResponse validates, deduplicates and stores a gift response. The
// read-first check keeps the common duplicate path cheap; the store's unique
// (visitorId, sessionId) constraint is what actually guarantees at most one
// row when two submissions for the same pair race.
func (s *GiftService) SubmitResponse(ctx context.Context, req *models.SubmitResponseRequest) (SubmitOutcome, *models.GiftResponse, error) {
	if err := req.Validate(); err != nil {
		return 0, nil, err
	}

	existing, err := s.repo.ResponseByPair(ctx, req.VisitorID, req.SessionID)
	if err == nil {
		return OutcomeAlreadyRecorded, existing, nil
	}
	if !errors.Is(err, repository.ErrResponseNotFound) {
		return 0, nil, fmt.Errorf("failed to check existing response: %w", err)
	}

	responseUUID, err := uuid.NewV7()
	if err != nil {
		return 0, nil, fmt.Errorf("failed to generate response id: %w", err)
	}
	gr := &models.GiftResponse{
		ID:             responseUUID.String(),
		VisitorID:      req.VisitorID,
		SessionID:      req.SessionID,
		CoffeeResponse: req.CoffeeResponse,
		Coupon:         req.Coupon.Normalize(),
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.repo.InsertResponse(ctx, gr); err != nil {
		if errors.Is(err, repository.ErrResponseExists) {
			// Lost the race to a concurrent submission for the same pair.
			winner, lookupErr := s.repo.ResponseByPair(ctx, req.VisitorID, req.SessionID)
			if lookupErr != nil {
				return OutcomeAlreadyRecorded, nil, nil
			}
			return OutcomeAlreadyRecorded, winner, nil
		}
		return 0, nil, err
	}

	return OutcomeCreated, gr, nil
}

// ListResponses returns all gift responses, newest-created first.
func (s *GiftService) ListResponses(ctx context.Context) ([]*models.GiftResponse, error) {
	return s.repo.ListResponses(ctx)
}
