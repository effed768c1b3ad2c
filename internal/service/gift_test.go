package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardlight/cardlight/internal/models"
	"github.com/cardlight/cardlight/internal/repository"
)

func validSubmit() *models.SubmitResponseRequest {
	return &models.SubmitResponseRequest{
		VisitorID:      "v1",
		SessionID:      "s1",
		CoffeeResponse: models.CoffeeYes,
	}
}

func TestSubmitResponseCreated(t *testing.T) {
	var inserted *models.GiftResponse
	repo := &mockRepository{
		insertResponseFunc: func(ctx context.Context, r *models.GiftResponse) error {
			inserted = r
			return nil
		},
	}
	svc := NewGiftService(repo)

	outcome, gr, err := svc.SubmitResponse(context.Background(), validSubmit())
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)
	require.NotNil(t, gr)
	assert.Equal(t, inserted, gr)
	assert.NotEmpty(t, gr.ID)
	assert.WithinDuration(t, time.Now().UTC(), gr.CreatedAt, 5*time.Second)
	assert.Nil(t, gr.Coupon)
}

func TestSubmitResponseAlreadyRecorded(t *testing.T) {
	existing := &models.GiftResponse{
		ID:             "existing-id",
		VisitorID:      "v1",
		SessionID:      "s1",
		CoffeeResponse: models.CoffeeNo,
	}
	repo := &mockRepository{
		responseByPairFunc: func(ctx context.Context, visitorID, sessionID string) (*models.GiftResponse, error) {
			return existing, nil
		},
		insertResponseFunc: func(ctx context.Context, r *models.GiftResponse) error {
			t.Fatal("InsertResponse must not be called when a response exists")
			return nil
		},
	}
	svc := NewGiftService(repo)

	outcome, gr, err := svc.SubmitResponse(context.Background(), validSubmit())
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyRecorded, outcome)
	assert.Equal(t, existing, gr)
}

func TestSubmitResponseValidation(t *testing.T) {
	tests := []struct {
		name string
		req  *models.SubmitResponseRequest
	}{
		{
			name: "missing coffeeResponse",
			req:  &models.SubmitResponseRequest{VisitorID: "v1", SessionID: "s1"},
		},
		{
			name: "coffeeResponse outside closed set",
			req:  &models.SubmitResponseRequest{VisitorID: "v1", SessionID: "s1", CoffeeResponse: "definitely"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepository{
				insertResponseFunc: func(ctx context.Context, r *models.GiftResponse) error {
					t.Fatal("InsertResponse must not be called for invalid payloads")
					return nil
				},
			}
			svc := NewGiftService(repo)

			_, gr, err := svc.SubmitResponse(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, models.IsValidation(err))
			assert.Nil(t, gr)
		})
	}
}

func TestSubmitResponseCouponNormalization(t *testing.T) {
	var inserted *models.GiftResponse
	repo := &mockRepository{
		insertResponseFunc: func(ctx context.Context, r *models.GiftResponse) error {
			inserted = r
			return nil
		},
	}
	svc := NewGiftService(repo)

	req := validSubmit()
	req.Coupon = &models.CouponRequest{ContactMethod: "email", Contact: "a@b.com"}

	outcome, _, err := svc.SubmitResponse(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)

	require.NotNil(t, inserted.Coupon)
	assert.Equal(t, "GIFT", inserted.Coupon.Code)
	assert.Equal(t, "Contact via email", inserted.Coupon.Description)
	assert.Equal(t, float64(0), inserted.Coupon.Value)
	assert.Equal(t, "a@b.com", inserted.Coupon.Contact)
}

func TestSubmitResponseLostRace(t *testing.T) {
	winner := &models.GiftResponse{ID: "winner", VisitorID: "v1", SessionID: "s1", CoffeeResponse: models.CoffeeYes}
	lookups := 0
	repo := &mockRepository{
		responseByPairFunc: func(ctx context.Context, visitorID, sessionID string) (*models.GiftResponse, error) {
			lookups++
			if lookups == 1 {
				// First check misses; the concurrent writer lands in between.
				return nil, repository.ErrResponseNotFound
			}
			return winner, nil
		},
		insertResponseFunc: func(ctx context.Context, r *models.GiftResponse) error {
			return repository.ErrResponseExists
		},
	}
	svc := NewGiftService(repo)

	outcome, gr, err := svc.SubmitResponse(context.Background(), validSubmit())
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyRecorded, outcome)
	assert.Equal(t, winner, gr)
}

func TestSubmitResponseIDGenerationFailure(t *testing.T) {
	withFailingUUIDSource(t)

	repo := &mockRepository{
		insertResponseFunc: func(ctx context.Context, r *models.GiftResponse) error {
			t.Fatal("InsertResponse must not be called without a valid id")
			return nil
		},
	}
	svc := NewGiftService(repo)

	_, gr, err := svc.SubmitResponse(context.Background(), validSubmit())
	require.Error(t, err)
	assert.False(t, models.IsValidation(err))
	assert.Nil(t, gr)
}

func TestSubmitResponseStoreError(t *testing.T) {
	repo := &mockRepository{
		insertResponseFunc: func(ctx context.Context, r *models.GiftResponse) error {
			return errors.New("connection refused")
		},
	}
	svc := NewGiftService(repo)

	_, _, err := svc.SubmitResponse(context.Background(), validSubmit())
	require.Error(t, err)
	assert.False(t, models.IsValidation(err))
}

// fakePairStore emulates the store-level unique constraint so the dedup
// guarantee can be exercised under real goroutine concurrency.
type fakePairStore struct {
	mockRepository
	mu   sync.Mutex
	rows map[string]*models.GiftResponse
}

func newFakePairStore() *fakePairStore {
	return &fakePairStore{rows: map[string]*models.GiftResponse{}}
}

func (f *fakePairStore) InsertResponse(ctx context.Context, r *models.GiftResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := r.VisitorID + "/" + r.SessionID
	if _, ok := f.rows[key]; ok {
		return repository.ErrResponseExists
	}
	f.rows[key] = r
	return nil
}

func (f *fakePairStore) ResponseByPair(ctx context.Context, visitorID, sessionID string) (*models.GiftResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.rows[visitorID+"/"+sessionID]; ok {
		return r, nil
	}
	return nil, repository.ErrResponseNotFound
}

func TestSubmitResponseConcurrentDuplicates(t *testing.T) {
	store := newFakePairStore()
	svc := NewGiftService(store)

	const racers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := &models.SubmitResponseRequest{
				VisitorID:      "v2",
				SessionID:      "s2",
				CoffeeResponse: models.CoffeeYes,
			}
			outcome, _, err := svc.SubmitResponse(context.Background(), req)
			assert.NoError(t, err)
			if outcome == OutcomeCreated {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Len(t, store.rows, 1)
}

func TestListResponses(t *testing.T) {
	want := []*models.GiftResponse{{ID: "r2"}, {ID: "r1"}}
	repo := &mockRepository{
		listResponsesFunc: func(ctx context.Context) ([]*models.GiftResponse, error) {
			return want, nil
		},
	}
	svc := NewGiftService(repo)

	got, err := svc.ListResponses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
