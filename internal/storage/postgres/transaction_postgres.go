package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
)

type TransactionPostgres struct {
	db *pgxpool.Pool
}

func NewTransactionPostgres(db *pgxpool.Pool) *TransactionPostgres {
	return &TransactionPostgres{db: db}
}

const transactionSelect = `
        SELECT t.id, t.student_id, u.name, u.email, t.course_id, COALESCE(c.title, ''),
               t.session_type, t.amount, t.proof_object_key, t.status,
               t.approved_by, t.approved_at, t.rejected_reason, t.idempotency_key,
               t.created_at, t.updated_at
          FROM transactions t
          JOIN users u ON u.id = t.student_id
          LEFT JOIN courses c ON c.id = t.course_id
`

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(
		&t.ID, &t.StudentID, &t.StudentName, &t.StudentEmail, &t.CourseID, &t.CourseTitle,
		&t.SessionType, &t.Amount, &t.ProofObjectKey, &t.Status,
		&t.ApprovedBy, &t.ApprovedAt, &t.RejectedReason, &t.IdempotencyKey,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrTransactionNotFound
		}
		return nil, err
	}
	return &t, nil
}

func collectTransactions(rows pgx.Rows) ([]models.Transaction, error) {
	defer rows.Close()
	list := make([]models.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *t)
	}
	return list, rows.Err()
}

func (r *TransactionPostgres) HasOpenTransaction(ctx context.Context, studentID, courseID uuid.UUID, sessionType string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
        SELECT EXISTS(
            SELECT 1 FROM transactions
             WHERE student_id = $1 AND course_id = $2 AND session_type = $3
               AND status IN ('pending', 'approved', 'verified')
        )
    `, studentID, courseID, sessionType).Scan(&exists)
	return exists, err
}

// CreateTransaction stores a pending transaction and, when key is set, its idempotency key.
func (r *TransactionPostgres) CreateTransaction(ctx context.Context, t models.Transaction) (*models.Transaction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	t.ID = uuid.New()
	t.Status = models.TxStatusPending
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err = tx.Exec(ctx, `
        INSERT INTO transactions (
            id, student_id, course_id, session_type, amount, proof_object_key,
            status, idempotency_key, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `, t.ID, t.StudentID, t.CourseID, t.SessionType, t.Amount, t.ProofObjectKey,
		t.Status, t.IdempotencyKey, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "transactions_open_key") {
			return nil, app_errors.ErrTransactionExists
		}
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}
	if err = saveIdempotencyKey(ctx, tx, t.StudentID, models.IdempotencyScopeTransaction, t.IdempotencyKey, t.ID); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionPostgres) TransactionByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	return scanTransaction(r.db.QueryRow(ctx, transactionSelect+` WHERE t.id = $1`, id))
}

func (r *TransactionPostgres) ListTransactions(ctx context.Context, status string) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx, transactionSelect+`
         WHERE ($1::text = '' OR t.status = $1)
         ORDER BY t.created_at DESC
    `, status)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

func (r *TransactionPostgres) StudentTransactions(ctx context.Context, studentID uuid.UUID, status string) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx, transactionSelect+`
         WHERE t.student_id = $1 AND ($2::text = '' OR t.status = $2)
         ORDER BY t.created_at DESC
    `, studentID, status)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

// UpdateStatus applies an admin decision. When the new status grants access the
// enrollment is written in the same transaction; an existing one is left as is.
func (r *TransactionPostgres) UpdateStatus(ctx context.Context, id uuid.UUID, status string, adminID uuid.UUID, reason string) (*models.Transaction, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	var current, sessionType string
	var studentID, courseID uuid.UUID
	err = tx.QueryRow(ctx, `
        SELECT status, student_id, course_id, session_type FROM transactions WHERE id = $1 FOR UPDATE
    `, id).Scan(&current, &studentID, &courseID, &sessionType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, app_errors.ErrTransactionNotFound
		}
		return nil, false, err
	}

	changed, err := models.TransactionTransition(current, status)
	if err != nil {
		return nil, false, err
	}

	if changed {
		now := time.Now().UTC()
		switch status {
		case models.TxStatusRejected:
			_, err = tx.Exec(ctx, `
                UPDATE transactions SET status = $2, rejected_reason = $3, updated_at = $4 WHERE id = $1
            `, id, status, reason, now)
		default:
			_, err = tx.Exec(ctx, `
                UPDATE transactions
                   SET status = $2,
                       approved_by = COALESCE(approved_by, $3),
                       approved_at = COALESCE(approved_at, $4),
                       updated_at = $4
                 WHERE id = $1
            `, id, status, adminID, now)
		}
		if err != nil {
			return nil, false, fmt.Errorf("failed to update transaction status: %w", err)
		}

		if models.Grants(status) {
			_, err = insertEnrollment(ctx, tx, models.Enrollment{
				StudentID:   studentID,
				CourseID:    courseID,
				SessionType: sessionType,
				Source:      models.SourceTransaction,
				CreatedAt:   now,
			})
			if err != nil {
				return nil, false, err
			}
		}
	}

	t, err := scanTransaction(tx.QueryRow(ctx, transactionSelect+` WHERE t.id = $1`, id))
	if err != nil {
		return nil, false, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return t, changed, nil
}
