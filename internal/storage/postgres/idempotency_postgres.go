package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
)

type IdempotencyPostgres struct {
	db *pgxpool.Pool
}

func NewIdempotencyPostgres(db *pgxpool.Pool) *IdempotencyPostgres {
	return &IdempotencyPostgres{db: db}
}

func (r *IdempotencyPostgres) Lookup(ctx context.Context, studentID uuid.UUID, scope, key string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx, `
        SELECT resource_id FROM idempotency_keys WHERE student_id = $1 AND scope = $2 AND key = $3
    `, studentID, scope, key).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, app_errors.ErrIdempotencyKeyNotFound
		}
		return uuid.Nil, err
	}
	return id, nil
}

// ExpireBefore deletes keys created before t and returns how many were removed.
func (r *IdempotencyPostgres) ExpireBefore(ctx context.Context, t time.Time) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM idempotency_keys WHERE created_at < $1`, t)
	if err != nil {
		return 0, err
	}
	return cmdTag.RowsAffected(), nil
}

// saveIdempotencyKey runs inside the transaction that creates the resource.
func saveIdempotencyKey(ctx context.Context, tx pgx.Tx, studentID uuid.UUID, scope string, key *string, resourceID uuid.UUID) error {
	if key == nil || *key == "" {
		return nil
	}
	_, err := tx.Exec(ctx, `
        INSERT INTO idempotency_keys (student_id, scope, key, resource_id, created_at)
        VALUES ($1, $2, $3, $4, NOW())
    `, studentID, scope, *key, resourceID)
	if isUniqueViolation(err, "idempotency_keys_pkey") {
		return app_errors.ErrIdempotencyReplay
	}
	return err
}
