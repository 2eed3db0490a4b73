package transaction

import (
	"context"
	"errors"
	"io"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
	"github.com/IICPAS/IICPAS-sub003/internal/notify"
	"github.com/IICPAS/IICPAS-sub003/internal/service/proof"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

type transactionRepo interface {
	HasOpenTransaction(ctx context.Context, studentID, courseID uuid.UUID, sessionType string) (bool, error)
	CreateTransaction(ctx context.Context, t models.Transaction) (*models.Transaction, error)
	TransactionByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	ListTransactions(ctx context.Context, status string) ([]models.Transaction, error)
	StudentTransactions(ctx context.Context, studentID uuid.UUID, status string) ([]models.Transaction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, adminID uuid.UUID, reason string) (*models.Transaction, bool, error)
}

type idempotencyRepo interface {
	Lookup(ctx context.Context, studentID uuid.UUID, scope, key string) (uuid.UUID, error)
}

type courseRepo interface {
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
}

type enrollmentRepo interface {
	IsEnrolled(ctx context.Context, studentID, courseID uuid.UUID, sessionType string) (bool, error)
}

type proofRepo interface {
	UploadProof(ctx context.Context, ownerID uuid.UUID, data []byte, contentType, ext string) (string, error)
	ProofURL(ctx context.Context, objectKey string) (string, error)
	DeleteProof(ctx context.Context, objectKey string) error
}

type TransactionService struct {
	log             logger.Log
	txRepo          transactionRepo
	idempotencyRepo idempotencyRepo
	courseRepo      courseRepo
	enrollmentRepo  enrollmentRepo
	proofRepo       proofRepo
	mailer          notify.Mailer
	limits          proof.Limits
}

func NewTransactionService(
	log logger.Log,
	txRepo transactionRepo,
	idempotencyRepo idempotencyRepo,
	courseRepo courseRepo,
	enrollmentRepo enrollmentRepo,
	proofRepo proofRepo,
	mailer notify.Mailer,
	limits proof.Limits,
) *TransactionService {
	return &TransactionService{
		log:             log,
		txRepo:          txRepo,
		idempotencyRepo: idempotencyRepo,
		courseRepo:      courseRepo,
		enrollmentRepo:  enrollmentRepo,
		proofRepo:       proofRepo,
		mailer:          mailer,
		limits:          limits,
	}
}

type Submission struct {
	StudentID      uuid.UUID
	CourseID       uuid.UUID
	SessionType    string
	Amount         float64
	Screenshot     io.Reader
	IdempotencyKey string
}

// Submit records a pending purchase with its payment screenshot. With an
// idempotency key already used by the student, the original transaction is
// returned and replayed is true.
func (s *TransactionService) Submit(ctx context.Context, sub Submission) (t *models.Transaction, replayed bool, err error) {
	key := strings.TrimSpace(sub.IdempotencyKey)
	if key != "" {
		if t, err := s.replay(ctx, sub.StudentID, key); !errors.Is(err, app_errors.ErrIdempotencyKeyNotFound) {
			return t, err == nil, err
		}
	}

	if !models.ValidSessionType(sub.SessionType) {
		return nil, false, app_errors.ErrInvalidSessionType
	}
	if sub.Amount <= 0 || math.IsNaN(sub.Amount) || math.IsInf(sub.Amount, 0) {
		return nil, false, app_errors.ErrInvalidAmount
	}
	course, err := s.courseRepo.CourseByID(ctx, sub.CourseID)
	if err != nil {
		return nil, false, err
	}
	if course.Status != models.CourseStatusPublished {
		return nil, false, app_errors.ErrCourseNotPublished
	}
	if models.RoundMoney(sub.Amount) != course.EffectivePrice() {
		return nil, false, app_errors.ErrAmountMismatch
	}

	enrolled, err := s.enrollmentRepo.IsEnrolled(ctx, sub.StudentID, sub.CourseID, sub.SessionType)
	if err != nil {
		return nil, false, err
	}
	if enrolled {
		return nil, false, app_errors.ErrAlreadyEnrolled
	}
	open, err := s.txRepo.HasOpenTransaction(ctx, sub.StudentID, sub.CourseID, sub.SessionType)
	if err != nil {
		return nil, false, err
	}
	if open {
		return nil, false, app_errors.ErrTransactionExists
	}

	data, err := s.limits.Prepare(sub.Screenshot)
	if err != nil {
		return nil, false, err
	}
	objectKey, err := s.proofRepo.UploadProof(ctx, sub.StudentID, data, proof.ContentType, proof.Ext)
	if err != nil {
		s.log.ErrorErr("failed to upload payment proof", err, "student_id", sub.StudentID)
		return nil, false, err
	}

	record := models.Transaction{
		StudentID:      sub.StudentID,
		CourseID:       sub.CourseID,
		SessionType:    sub.SessionType,
		Amount:         models.RoundMoney(sub.Amount),
		ProofObjectKey: objectKey,
	}
	if key != "" {
		record.IdempotencyKey = &key
	}
	created, err := s.txRepo.CreateTransaction(ctx, record)
	if err != nil {
		s.discardProof(ctx, objectKey)
		if errors.Is(err, app_errors.ErrIdempotencyReplay) {
			t, err := s.replay(ctx, sub.StudentID, key)
			return t, err == nil, err
		}
		return nil, false, err
	}

	s.log.Info("transaction submitted", "transaction_id", created.ID, "student_id", created.StudentID, "course_id", created.CourseID)
	return created, false, nil
}

func (s *TransactionService) replay(ctx context.Context, studentID uuid.UUID, key string) (*models.Transaction, error) {
	id, err := s.idempotencyRepo.Lookup(ctx, studentID, models.IdempotencyScopeTransaction, key)
	if err != nil {
		return nil, err
	}
	return s.txRepo.TransactionByID(ctx, id)
}

func (s *TransactionService) discardProof(ctx context.Context, objectKey string) {
	if err := s.proofRepo.DeleteProof(ctx, objectKey); err != nil {
		s.log.ErrorErr("failed to delete orphaned proof", err, "object_key", objectKey)
	}
}

func validStatus(status string) bool {
	switch status {
	case models.TxStatusPending, models.TxStatusApproved, models.TxStatusVerified, models.TxStatusRejected:
		return true
	}
	return false
}

// UpdateStatus applies an admin decision. Granting statuses enroll the student
// in the same database transaction. Mail goes out after commit and its failure
// is only logged.
func (s *TransactionService) UpdateStatus(ctx context.Context, id uuid.UUID, status string, adminID uuid.UUID, reason string) (*models.Transaction, error) {
	if !validStatus(status) {
		return nil, app_errors.ErrInvalidStatus
	}
	reason = strings.TrimSpace(reason)
	if status == models.TxStatusRejected && reason == "" {
		return nil, app_errors.ErrReasonRequired
	}

	before, err := s.txRepo.TransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	t, changed, err := s.txRepo.UpdateStatus(ctx, id, status, adminID, reason)
	if err != nil {
		return nil, err
	}
	if !changed {
		return t, nil
	}

	s.log.Info("transaction status changed", "transaction_id", id, "from", before.Status, "to", t.Status, "admin_id", adminID)
	switch {
	case t.Status == models.TxStatusRejected:
		s.send(ctx, notify.TransactionRejected(*t))
	case models.Grants(t.Status) && !models.Grants(before.Status):
		s.send(ctx, notify.TransactionReceipt(*t))
	}
	return t, nil
}

func (s *TransactionService) send(ctx context.Context, msg notify.Message) {
	if msg.To == "" {
		return
	}
	if err := s.mailer.Send(context.WithoutCancel(ctx), msg); err != nil {
		s.log.ErrorErr("failed to send mail", err, "to", msg.To, "subject", msg.Subject)
	}
}

func (s *TransactionService) List(ctx context.Context, status string) ([]models.Transaction, error) {
	if status != "" && !validStatus(status) {
		return nil, app_errors.ErrInvalidStatus
	}
	return s.txRepo.ListTransactions(ctx, status)
}

func (s *TransactionService) StudentTransactions(ctx context.Context, studentID uuid.UUID, status string) ([]models.Transaction, error) {
	if status != "" && !validStatus(status) {
		return nil, app_errors.ErrInvalidStatus
	}
	return s.txRepo.StudentTransactions(ctx, studentID, status)
}

func (s *TransactionService) ProofURL(ctx context.Context, id uuid.UUID) (string, error) {
	t, err := s.txRepo.TransactionByID(ctx, id)
	if err != nil {
		return "", err
	}
	if t.ProofObjectKey == "" {
		return "", app_errors.ErrImageNotFound
	}
	return s.proofRepo.ProofURL(ctx, t.ProofObjectKey)
}
