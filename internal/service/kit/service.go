package kit

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

type kitRepo interface {
	CreateKit(ctx context.Context, k models.Kit) (*models.Kit, error)
	UpdateKit(ctx context.Context, k models.Kit) (*models.Kit, error)
	DeleteKit(ctx context.Context, id uuid.UUID) error
	KitByID(ctx context.Context, id uuid.UUID) (*models.Kit, error)
	ListKits(ctx context.Context, activeOnly bool) ([]models.Kit, error)
	KitsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Kit, error)
}

type orderRepo interface {
	CreateKitOrder(ctx context.Context, o models.KitOrder) (*models.KitOrder, error)
	KitOrderByID(ctx context.Context, id uuid.UUID) (*models.KitOrder, error)
	ListKitOrders(ctx context.Context, studentID *uuid.UUID, status string) ([]models.KitOrder, error)
}

type idempotencyRepo interface {
	Lookup(ctx context.Context, studentID uuid.UUID, scope, key string) (uuid.UUID, error)
}

type KitService struct {
	log             logger.Log
	kitRepo         kitRepo
	orderRepo       orderRepo
	idempotencyRepo idempotencyRepo
}

func NewKitService(log logger.Log, kitRepo kitRepo, orderRepo orderRepo, idempotencyRepo idempotencyRepo) *KitService {
	return &KitService{
		log:             log,
		kitRepo:         kitRepo,
		orderRepo:       orderRepo,
		idempotencyRepo: idempotencyRepo,
	}
}

type OrderItem struct {
	KitID    uuid.UUID
	Quantity int
}

func validateKit(k *models.Kit) error {
	k.Name = strings.TrimSpace(k.Name)
	if k.Price < 0 {
		return app_errors.ErrInvalidPrice
	}
	return nil
}

func (s *KitService) CreateKit(ctx context.Context, k models.Kit) (*models.Kit, error) {
	if err := validateKit(&k); err != nil {
		return nil, err
	}
	return s.kitRepo.CreateKit(ctx, k)
}

func (s *KitService) UpdateKit(ctx context.Context, k models.Kit) (*models.Kit, error) {
	if err := validateKit(&k); err != nil {
		return nil, err
	}
	return s.kitRepo.UpdateKit(ctx, k)
}

// DeleteKit deactivates the kit. Past orders keep their lines.
func (s *KitService) DeleteKit(ctx context.Context, id uuid.UUID) error {
	return s.kitRepo.DeleteKit(ctx, id)
}

func (s *KitService) KitByID(ctx context.Context, id uuid.UUID) (*models.Kit, error) {
	return s.kitRepo.KitByID(ctx, id)
}

func (s *KitService) ListKits(ctx context.Context, activeOnly bool) ([]models.Kit, error) {
	return s.kitRepo.ListKits(ctx, activeOnly)
}

// Quote prices the items from stored kit prices. Repeated kits are merged.
func (s *KitService) Quote(ctx context.Context, items []OrderItem) (models.KitQuote, error) {
	if len(items) == 0 {
		return models.KitQuote{}, app_errors.ErrEmptyOrder
	}

	order := make([]uuid.UUID, 0, len(items))
	qty := make(map[uuid.UUID]int, len(items))
	for _, it := range items {
		if it.Quantity < 1 || it.Quantity > models.MaxQuantity-qty[it.KitID] {
			return models.KitQuote{}, app_errors.ErrInvalidQuantity
		}
		if _, ok := qty[it.KitID]; !ok {
			order = append(order, it.KitID)
		}
		qty[it.KitID] += it.Quantity
	}

	kits, err := s.kitRepo.KitsByIDs(ctx, order)
	if err != nil {
		return models.KitQuote{}, err
	}
	lines := make([]models.KitLine, 0, len(order))
	for _, id := range order {
		k, ok := kits[id]
		if !ok {
			return models.KitQuote{}, app_errors.ErrKitNotFound
		}
		if !k.Active {
			return models.KitQuote{}, app_errors.ErrKitInactive
		}
		lines = append(lines, models.KitLine{KitID: k.ID, KitName: k.Name, Quantity: qty[id], Price: k.Price})
	}
	return models.QuoteKitOrder(lines)
}

// CreateOrder stores a pending_payment order priced on the server. An
// idempotency key already used by the student returns the original order.
func (s *KitService) CreateOrder(ctx context.Context, studentID uuid.UUID, items []OrderItem, shippingAddress, idempotencyKey string) (*models.KitOrder, bool, error) {
	key := strings.TrimSpace(idempotencyKey)
	if key != "" {
		if o, err := s.replay(ctx, studentID, key); !errors.Is(err, app_errors.ErrIdempotencyKeyNotFound) {
			return o, err == nil, err
		}
	}

	quote, err := s.Quote(ctx, items)
	if err != nil {
		return nil, false, err
	}
	order := models.KitOrder{
		StudentID:       studentID,
		ShippingAddress: strings.TrimSpace(shippingAddress),
		KitQuote:        quote,
	}
	if key != "" {
		order.IdempotencyKey = &key
	}

	created, err := s.orderRepo.CreateKitOrder(ctx, order)
	if err != nil {
		if errors.Is(err, app_errors.ErrIdempotencyReplay) {
			o, err := s.replay(ctx, studentID, key)
			return o, err == nil, err
		}
		return nil, false, err
	}
	s.log.Info("kit order created", "order_id", created.ID, "student_id", studentID, "payable", created.Payable)
	return created, false, nil
}

func (s *KitService) replay(ctx context.Context, studentID uuid.UUID, key string) (*models.KitOrder, error) {
	id, err := s.idempotencyRepo.Lookup(ctx, studentID, models.IdempotencyScopeKitOrder, key)
	if err != nil {
		return nil, err
	}
	return s.orderRepo.KitOrderByID(ctx, id)
}

func validOrderStatus(status string) bool {
	return status == models.KitOrderPendingPayment || status == models.KitOrderPaid || status == models.KitOrderCancelled
}

func (s *KitService) StudentOrders(ctx context.Context, studentID uuid.UUID) ([]models.KitOrder, error) {
	return s.orderRepo.ListKitOrders(ctx, &studentID, "")
}

func (s *KitService) ListOrders(ctx context.Context, status string) ([]models.KitOrder, error) {
	if status != "" && !validOrderStatus(status) {
		return nil, app_errors.ErrInvalidStatus
	}
	return s.orderRepo.ListKitOrders(ctx, nil, status)
}
