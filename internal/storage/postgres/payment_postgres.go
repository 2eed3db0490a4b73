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

type PaymentPostgres struct {
	db *pgxpool.Pool
}

func NewPaymentPostgres(db *pgxpool.Pool) *PaymentPostgres {
	return &PaymentPostgres{db: db}
}

const paymentSelect = `
        SELECT p.id, p.kit_order_id, p.student_id, u.email, p.amount, p.proof_object_key,
               p.status, p.verified_by, p.verified_at, p.rejected_reason, p.created_at, p.updated_at
          FROM payments p
          JOIN users u ON u.id = p.student_id
`

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(
		&p.ID, &p.KitOrderID, &p.StudentID, &p.StudentEmail, &p.Amount, &p.ProofObjectKey,
		&p.Status, &p.VerifiedBy, &p.VerifiedAt, &p.RejectedReason, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

// CreatePayment records a pending payment for an order awaiting payment. The
// amount is taken from the order, never from the caller.
func (r *PaymentPostgres) CreatePayment(ctx context.Context, orderID, studentID uuid.UUID, proofKey string) (*models.Payment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var owner uuid.UUID
	var status string
	var payable float64
	err = tx.QueryRow(ctx, `
        SELECT student_id, status, payable FROM kit_orders WHERE id = $1 FOR UPDATE
    `, orderID).Scan(&owner, &status, &payable)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrKitOrderNotFound
		}
		return nil, err
	}
	if owner != studentID {
		return nil, app_errors.ErrKitOrderNotFound
	}
	if status != models.KitOrderPendingPayment {
		return nil, app_errors.ErrKitOrderNotPayable
	}

	now := time.Now().UTC()
	id := uuid.New()
	_, err = tx.Exec(ctx, `
        INSERT INTO payments (id, kit_order_id, student_id, amount, proof_object_key, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
    `, id, orderID, studentID, payable, proofKey, models.PaymentStatusPending, now)
	if err != nil {
		if isUniqueViolation(err, "payments_pending_key") {
			return nil, app_errors.ErrPaymentPending
		}
		return nil, fmt.Errorf("failed to insert payment: %w", err)
	}

	p, err := scanPayment(tx.QueryRow(ctx, paymentSelect+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, err
	}
	return p, tx.Commit(ctx)
}

func (r *PaymentPostgres) PaymentByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return scanPayment(r.db.QueryRow(ctx, paymentSelect+` WHERE p.id = $1`, id))
}

func (r *PaymentPostgres) ListPayments(ctx context.Context, status string) ([]models.Payment, error) {
	rows, err := r.db.Query(ctx, paymentSelect+`
         WHERE ($1::text = '' OR p.status = $1)
         ORDER BY p.created_at DESC
    `, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]models.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

// UpdateStatus verifies or rejects a pending payment. Verification marks the
// order paid in the same transaction.
func (r *PaymentPostgres) UpdateStatus(ctx context.Context, id uuid.UUID, status string, adminID uuid.UUID, reason string) (*models.Payment, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	var current string
	var orderID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT status, kit_order_id FROM payments WHERE id = $1 FOR UPDATE`, id).Scan(&current, &orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, app_errors.ErrPaymentNotFound
		}
		return nil, false, err
	}

	changed, err := models.PaymentTransition(current, status)
	if err != nil {
		return nil, false, err
	}

	if changed {
		now := time.Now().UTC()
		if status == models.PaymentStatusVerified {
			_, err = tx.Exec(ctx, `
                UPDATE payments SET status = $2, verified_by = $3, verified_at = $4, updated_at = $4 WHERE id = $1
            `, id, status, adminID, now)
			if err == nil {
				_, err = tx.Exec(ctx, `UPDATE kit_orders SET status = $2, updated_at = $3 WHERE id = $1`,
					orderID, models.KitOrderPaid, now)
			}
		} else {
			_, err = tx.Exec(ctx, `
                UPDATE payments SET status = $2, rejected_reason = $3, updated_at = $4 WHERE id = $1
            `, id, status, reason, now)
		}
		if err != nil {
			return nil, false, fmt.Errorf("failed to update payment status: %w", err)
		}
	}

	p, err := scanPayment(tx.QueryRow(ctx, paymentSelect+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, false, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return p, changed, nil
}
