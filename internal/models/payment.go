package models

import (
	"fmt"
	"time"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"

	"github.com/google/uuid"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusVerified = "verified"
	PaymentStatusRejected = "rejected"
)

type Payment struct {
	ID             uuid.UUID  `json:"id"`
	KitOrderID     uuid.UUID  `json:"kit_order_id"`
	StudentID      uuid.UUID  `json:"student_id"`
	StudentEmail   string     `json:"student_email,omitempty"`
	Amount         float64    `json:"amount"`
	ProofObjectKey string     `json:"-"`
	Status         string     `json:"status"`
	VerifiedBy     *uuid.UUID `json:"verified_by,omitempty"`
	VerifiedAt     *time.Time `json:"verified_at,omitempty"`
	RejectedReason string     `json:"rejected_reason,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// PaymentTransition allows pending to verified or rejected. Same status is a no-op.
func PaymentTransition(from, to string) (changed bool, err error) {
	if from == to {
		return false, nil
	}
	if from == PaymentStatusPending && (to == PaymentStatusVerified || to == PaymentStatusRejected) {
		return true, nil
	}
	return false, fmt.Errorf("%w: %s to %s", app_errors.ErrInvalidTransition, from, to)
}
