package models

import (
	"fmt"
	"time"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"

	"github.com/google/uuid"
)

const (
	TxStatusPending  = "pending"
	TxStatusApproved = "approved"
	TxStatusVerified = "verified"
	TxStatusRejected = "rejected"
)

type Transaction struct {
	ID             uuid.UUID  `json:"id"`
	StudentID      uuid.UUID  `json:"student_id"`
	StudentName    string     `json:"student_name,omitempty"`
	StudentEmail   string     `json:"student_email,omitempty"`
	CourseID       uuid.UUID  `json:"course_id"`
	CourseTitle    string     `json:"course_title,omitempty"`
	SessionType    string     `json:"session_type"`
	Amount         float64    `json:"amount"`
	ProofObjectKey string     `json:"-"`
	Status         string     `json:"status"`
	ApprovedBy     *uuid.UUID `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
	RejectedReason string     `json:"rejected_reason,omitempty"`
	IdempotencyKey *string    `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Grants reports whether the status gives the student access to the course.
func Grants(status string) bool {
	return status == TxStatusApproved || status == TxStatusVerified
}

// TransactionTransition validates a move and reports whether it changes anything.
// Re-applying the current status is allowed and is a no-op.
func TransactionTransition(from, to string) (changed bool, err error) {
	if from == to {
		return false, nil
	}
	switch {
	case from == TxStatusPending && (to == TxStatusApproved || to == TxStatusVerified || to == TxStatusRejected):
		return true, nil
	case from == TxStatusApproved && to == TxStatusVerified:
		return true, nil
	}
	return false, fmt.Errorf("%w: %s to %s", app_errors.ErrInvalidTransition, from, to)
}
