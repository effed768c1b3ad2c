package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cardlight/cardlight/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository.
func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 2
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// InsertEvent appends one analytics event. Events are never updated or
// deleted afterward.
func (r *PostgresRepository) InsertEvent(ctx context.Context, e *models.Event) error {
	query := `
		INSERT INTO events (id, visitor_id, session_id, page_instance_id,
			referrer, entry_type, url, user_agent, screen, event, meta, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		e.ID, e.VisitorID, e.SessionID, e.PageInstanceID,
		e.Referrer, nullable(e.EntryType), nullable(e.URL), nullable(e.UserAgent),
		e.Screen, e.Event, e.Meta, e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	return nil
}

const eventColumns = `id, visitor_id, session_id, page_instance_id,
	referrer, COALESCE(entry_type, ''), COALESCE(url, ''), COALESCE(user_agent, ''),
	screen, event, meta, ts`

// EventsBySession returns the session timeline, ascending by the
// client-supplied timestamp.
func (r *PostgresRepository) EventsBySession(ctx context.Context, sessionID string) ([]*models.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM events
		WHERE session_id = $1
		ORDER BY ts ASC
	`, eventColumns)

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// EventsByVisitor returns the visitor history across sessions, ascending by
// the client-supplied timestamp.
func (r *PostgresRepository) EventsByVisitor(ctx context.Context, visitorID string) ([]*models.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM events
		WHERE visitor_id = $1
		ORDER BY ts ASC
	`, eventColumns)

	rows, err := r.pool.Query(ctx, query, visitorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query visitor events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows pgx.Rows) ([]*models.Event, error) {
	events := []*models.Event{}
	for rows.Next() {
		e := &models.Event{}
		if err := rows.Scan(
			&e.ID, &e.VisitorID, &e.SessionID, &e.PageInstanceID,
			&e.Referrer, &e.EntryType, &e.URL, &e.UserAgent,
			&e.Screen, &e.Event, &e.Meta, &e.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if e.Meta == nil {
			e.Meta = map[string]any{}
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return events, nil
}

// ListSessions returns the distinct session ids seen across all events.
func (r *PostgresRepository) ListSessions(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT session_id FROM events ORDER BY session_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		sessions = append(sessions, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return sessions, nil
}

// InsertResponse stores a gift response. The (visitor_id, session_id) pair is
// unique at the schema level, so concurrent duplicate submissions cannot
// produce a second row; the loser gets ErrResponseExists.
func (r *PostgresRepository) InsertResponse(ctx context.Context, gr *models.GiftResponse) error {
	query := `
		INSERT INTO gift_responses (id, visitor_id, session_id, coffee_response, coupon, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (visitor_id, session_id) DO NOTHING
	`

	tag, err := r.pool.Exec(ctx, query,
		gr.ID, gr.VisitorID, gr.SessionID, gr.CoffeeResponse, gr.Coupon, gr.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert gift response: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrResponseExists
	}

	return nil
}

// ResponseByPair looks up the response for one (visitor, session) pair.
func (r *PostgresRepository) ResponseByPair(ctx context.Context, visitorID, sessionID string) (*models.GiftResponse, error) {
	query := `
		SELECT id, visitor_id, session_id, coffee_response, coupon, created_at
		FROM gift_responses
		WHERE visitor_id = $1 AND session_id = $2
	`

	gr := &models.GiftResponse{}
	err := r.pool.QueryRow(ctx, query, visitorID, sessionID).Scan(
		&gr.ID, &gr.VisitorID, &gr.SessionID, &gr.CoffeeResponse, &gr.Coupon, &gr.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResponseNotFound
		}
		return nil, fmt.Errorf("failed to get gift response: %w", err)
	}

	return gr, nil
}

// ListResponses returns all gift responses, newest first.
func (r *PostgresRepository) ListResponses(ctx context.Context) ([]*models.GiftResponse, error) {
	query := `
		SELECT id, visitor_id, session_id, coffee_response, coupon, created_at
		FROM gift_responses
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list gift responses: %w", err)
	}
	defer rows.Close()

	responses := []*models.GiftResponse{}
	for rows.Next() {
		gr := &models.GiftResponse{}
		if err := rows.Scan(
			&gr.ID, &gr.VisitorID, &gr.SessionID, &gr.CoffeeResponse, &gr.Coupon, &gr.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan gift response: %w", err)
		}
		responses = append(responses, gr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return responses, nil
}

// Close releases the connection pool.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// nullable maps "" to NULL for optional text columns.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
