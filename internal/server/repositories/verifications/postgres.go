// Package verifications provides the PostgreSQL-backed repository for
// outstanding phone verifications.
package verifications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/clipfeed/clipfeed/internal/common"
	"github.com/clipfeed/clipfeed/internal/dbx"
	"github.com/clipfeed/clipfeed/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, v *models.PhoneVerification) error {
	query := `
		INSERT INTO phone_verifications (id, phone, code_hash, attempts, confirmed, sent_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		v.ID, v.Phone, v.CodeHash, v.Attempts, v.Confirmed, v.SentAt, v.ExpiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.PhoneVerification, error) {
	query := `
		SELECT id, phone, code_hash, attempts, confirmed, sent_at, expires_at
		FROM phone_verifications WHERE id = $1`
	var v models.PhoneVerification
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&v.ID, &v.Phone, &v.CodeHash, &v.Attempts, &v.Confirmed, &v.SentAt, &v.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &v, nil
}

// IncrementAttempts bumps the attempt counter and returns the new value.
func (r *PostgresRepository) IncrementAttempts(ctx context.Context, id string) (int, error) {
	query := `
		UPDATE phone_verifications SET attempts = attempts + 1
		WHERE id = $1
		RETURNING attempts`
	var attempts int
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&attempts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return attempts, nil
}

func (r *PostgresRepository) MarkConfirmed(ctx context.Context, id string) error {
	query := `UPDATE phone_verifications SET confirmed = TRUE WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) CountRecentByPhone(ctx context.Context, phone string, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM phone_verifications WHERE phone = $1 AND sent_at > $2`
	var n int
	if err := r.db.QueryRowContext(ctx, query, phone, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
