package payment

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
	"github.com/IICPAS/IICPAS-sub003/internal/notify"
	"github.com/IICPAS/IICPAS-sub003/internal/service/proof"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

type paymentRepo interface {
	CreatePayment(ctx context.Context, orderID, studentID uuid.UUID, proofKey string) (*models.Payment, error)
	PaymentByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	ListPayments(ctx context.Context, status string) ([]models.Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, adminID uuid.UUID, reason string) (*models.Payment, bool, error)
}

type orderRepo interface {
	KitOrderByID(ctx context.Context, id uuid.UUID) (*models.KitOrder, error)
}

type proofRepo interface {
	UploadProof(ctx context.Context, ownerID uuid.UUID, data []byte, contentType, ext string) (string, error)
	ProofURL(ctx context.Context, objectKey string) (string, error)
	DeleteProof(ctx context.Context, objectKey string) error
}

type PaymentService struct {
	log         logger.Log
	paymentRepo paymentRepo
	orderRepo   orderRepo
	proofRepo   proofRepo
	mailer      notify.Mailer
	limits      proof.Limits
}

func NewPaymentService(log logger.Log, paymentRepo paymentRepo, orderRepo orderRepo, proofRepo proofRepo, mailer notify.Mailer, limits proof.Limits) *PaymentService {
	return &PaymentService{
		log:         log,
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		proofRepo:   proofRepo,
		mailer:      mailer,
		limits:      limits,
	}
}

// Submit attaches a screenshot to the student's kit order. The amount comes
// from the order.
func (s *PaymentService) Submit(ctx context.Context, orderID, studentID uuid.UUID, screenshot io.Reader) (*models.Payment, error) {
	order, err := s.orderRepo.KitOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.StudentID != studentID {
		return nil, app_errors.ErrKitOrderNotFound
	}
	if order.Status != models.KitOrderPendingPayment {
		return nil, app_errors.ErrKitOrderNotPayable
	}

	data, err := s.limits.Prepare(screenshot)
	if err != nil {
		return nil, err
	}
	objectKey, err := s.proofRepo.UploadProof(ctx, studentID, data, proof.ContentType, proof.Ext)
	if err != nil {
		s.log.ErrorErr("failed to upload payment proof", err, "order_id", orderID)
		return nil, err
	}

	p, err := s.paymentRepo.CreatePayment(ctx, orderID, studentID, objectKey)
	if err != nil {
		if derr := s.proofRepo.DeleteProof(ctx, objectKey); derr != nil {
			s.log.ErrorErr("failed to delete orphaned proof", derr, "object_key", objectKey)
		}
		return nil, err
	}
	s.log.Info("kit payment submitted", "payment_id", p.ID, "order_id", orderID, "amount", p.Amount)
	return p, nil
}

func validStatus(status string) bool {
	switch status {
	case models.PaymentStatusPending, models.PaymentStatusVerified, models.PaymentStatusRejected:
		return true
	}
	return false
}

// UpdateStatus verifies or rejects a payment. Verification marks the order
// paid and mails the invoice after commit.
func (s *PaymentService) UpdateStatus(ctx context.Context, id uuid.UUID, status string, adminID uuid.UUID, reason string) (*models.Payment, error) {
	if !validStatus(status) {
		return nil, app_errors.ErrInvalidStatus
	}
	reason = strings.TrimSpace(reason)
	if status == models.PaymentStatusRejected && reason == "" {
		return nil, app_errors.ErrReasonRequired
	}

	p, changed, err := s.paymentRepo.UpdateStatus(ctx, id, status, adminID, reason)
	if err != nil {
		return nil, err
	}
	if !changed {
		return p, nil
	}

	s.log.Info("kit payment status changed", "payment_id", id, "status", p.Status, "admin_id", adminID)
	switch p.Status {
	case models.PaymentStatusVerified:
		order, err := s.orderRepo.KitOrderByID(ctx, p.KitOrderID)
		if err != nil {
			s.log.ErrorErr("failed to load order for invoice", err, "order_id", p.KitOrderID)
			return p, nil
		}
		s.send(ctx, notify.KitInvoice(p.StudentEmail, *order))
	case models.PaymentStatusRejected:
		s.send(ctx, notify.KitPaymentRejected(*p))
	}
	return p, nil
}

func (s *PaymentService) send(ctx context.Context, msg notify.Message) {
	if msg.To == "" {
		return
	}
	if err := s.mailer.Send(context.WithoutCancel(ctx), msg); err != nil {
		s.log.ErrorErr("failed to send mail", err, "to", msg.To, "subject", msg.Subject)
	}
}

func (s *PaymentService) List(ctx context.Context, status string) ([]models.Payment, error) {
	if status != "" && !validStatus(status) {
		return nil, app_errors.ErrInvalidStatus
	}
	return s.paymentRepo.ListPayments(ctx, status)
}

func (s *PaymentService) ProofURL(ctx context.Context, id uuid.UUID) (string, error) {
	p, err := s.paymentRepo.PaymentByID(ctx, id)
	if err != nil {
		return "", err
	}
	if p.ProofObjectKey == "" {
		return "", app_errors.ErrImageNotFound
	}
	return s.proofRepo.ProofURL(ctx, p.ProofObjectKey)
}
