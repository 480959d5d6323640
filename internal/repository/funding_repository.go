package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Brownie44l1/propvest/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const fundingColumns = `reference, user_id, email, amount::text, method, state,
	checkout_url, verify_attempts, last_error, created_at, updated_at`

type FundingRepository struct {
	db *pgxpool.Pool
}

func NewFundingRepository(db *pgxpool.Pool) *FundingRepository {
	return &FundingRepository{db: db}
}

// Create stores a new session. The reference must not exist yet.
func (r *FundingRepository) Create(ctx context.Context, s *models.FundingSession) error {
	query := `
		INSERT INTO funding_sessions
			(reference, user_id, email, amount, method, state, checkout_url, verify_attempts, last_error, created_at, updated_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(ctx, query,
		s.Reference, s.UserID, s.Email, s.Amount.String(), s.Method, s.State,
		s.CheckoutURL, s.Attempts, s.LastError, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create funding session: %w", err)
	}
	return nil
}

// Get retrieves a session by reference
func (r *FundingRepository) Get(ctx context.Context, reference string) (*models.FundingSession, error) {
	query := `SELECT ` + fundingColumns + ` FROM funding_sessions WHERE reference = $1`

	s, err := scanSession(r.db.QueryRow(ctx, query, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get funding session: %w", err)
	}
	return s, nil
}

// Update overwrites the mutable fields of a session.
func (r *FundingRepository) Update(ctx context.Context, s *models.FundingSession) error {
	query := `
		UPDATE funding_sessions
		SET state = $2, checkout_url = $3, verify_attempts = $4, last_error = $5, updated_at = $6
		WHERE reference = $1`

	tag, err := r.db.Exec(ctx, query,
		s.Reference, s.State, s.CheckoutURL, s.Attempts, s.LastError, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update funding session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrSessionNotFound
	}
	return nil
}

// ListByState returns up to limit sessions in state last touched before
// olderThan, oldest first.
func (r *FundingRepository) ListByState(ctx context.Context, state models.FundingState, olderThan time.Time, limit int) ([]*models.FundingSession, error) {
	query := `SELECT ` + fundingColumns + `
		FROM funding_sessions
		WHERE state = $1 AND updated_at < $2
		ORDER BY updated_at ASC
		LIMIT $3`

	rows, err := r.db.Query(ctx, query, state, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list funding sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.FundingSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan funding session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating funding sessions: %w", err)
	}
	return sessions, nil
}

func scanSession(row pgx.Row) (*models.FundingSession, error) {
	var (
		s      models.FundingSession
		amount string
	)
	err := row.Scan(&s.Reference, &s.UserID, &s.Email, &amount, &s.Method, &s.State,
		&s.CheckoutURL, &s.Attempts, &s.LastError, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	return &s, nil
}
