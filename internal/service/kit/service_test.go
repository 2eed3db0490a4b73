package kit

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

type fakeStore struct {
	kits   map[uuid.UUID]models.Kit
	orders map[uuid.UUID]models.KitOrder
	keys   map[string]uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{kits: map[uuid.UUID]models.Kit{}, orders: map[uuid.UUID]models.KitOrder{}, keys: map[string]uuid.UUID{}}
}

func (f *fakeStore) CreateKit(_ context.Context, k models.Kit) (*models.Kit, error) {
	k.ID = uuid.New()
	f.kits[k.ID] = k
	return &k, nil
}

func (f *fakeStore) UpdateKit(_ context.Context, k models.Kit) (*models.Kit, error) {
	if _, ok := f.kits[k.ID]; !ok {
		return nil, app_errors.ErrKitNotFound
	}
	f.kits[k.ID] = k
	return &k, nil
}

func (f *fakeStore) DeleteKit(_ context.Context, id uuid.UUID) error {
	k, ok := f.kits[id]
	if !ok {
		return app_errors.ErrKitNotFound
	}
	k.Active = false
	f.kits[id] = k
	return nil
}

func (f *fakeStore) KitByID(_ context.Context, id uuid.UUID) (*models.Kit, error) {
	k, ok := f.kits[id]
	if !ok {
		return nil, app_errors.ErrKitNotFound
	}
	return &k, nil
}

func (f *fakeStore) ListKits(_ context.Context, activeOnly bool) ([]models.Kit, error) {
	out := []models.Kit{}
	for _, k := range f.kits {
		if !activeOnly || k.Active {
			out = append(out, k)
		}
	}
	return out, nil
}

func (f *fakeStore) KitsByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Kit, error) {
	out := map[uuid.UUID]models.Kit{}
	for _, id := range ids {
		if k, ok := f.kits[id]; ok {
			out[id] = k
		}
	}
	return out, nil
}

func (f *fakeStore) CreateKitOrder(_ context.Context, o models.KitOrder) (*models.KitOrder, error) {
	o.ID = uuid.New()
	o.Status = models.KitOrderPendingPayment
	f.orders[o.ID] = o
	if o.IdempotencyKey != nil {
		f.keys[o.StudentID.String()+*o.IdempotencyKey] = o.ID
	}
	return &o, nil
}

func (f *fakeStore) KitOrderByID(_ context.Context, id uuid.UUID) (*models.KitOrder, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, app_errors.ErrKitOrderNotFound
	}
	return &o, nil
}

func (f *fakeStore) ListKitOrders(_ context.Context, studentID *uuid.UUID, status string) ([]models.KitOrder, error) {
	out := []models.KitOrder{}
	for _, o := range f.orders {
		if (studentID == nil || o.StudentID == *studentID) && (status == "" || o.Status == status) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeStore) Lookup(_ context.Context, studentID uuid.UUID, _, key string) (uuid.UUID, error) {
	id, ok := f.keys[studentID.String()+key]
	if !ok {
		return uuid.Nil, app_errors.ErrIdempotencyKeyNotFound
	}
	return id, nil
}

func setup(t *testing.T) (*KitService, *fakeStore, uuid.UUID, uuid.UUID) {
	store := newFakeStore()
	svc := NewKitService(logger.Discard(), store, store, store)
	a, err := svc.CreateKit(context.Background(), models.Kit{Name: "Stationery", Price: 10, Active: true})
	require.NoError(t, err)
	b, err := svc.CreateKit(context.Background(), models.Kit{Name: "Books", Price: 2, Active: true})
	require.NoError(t, err)
	return svc, store, a.ID, b.ID
}

func TestQuoteUsesStoredPrices(t *testing.T) {
	svc, _, a, b := setup(t)
	ctx := context.Background()

	q, err := svc.Quote(ctx, []OrderItem{{KitID: a, Quantity: 3}, {KitID: b, Quantity: 1}, {KitID: a, Quantity: 1}})
	require.NoError(t, err)
	require.Len(t, q.Lines, 2)
	assert.Equal(t, 4, q.Lines[0].Quantity)
	assert.Equal(t, 5, q.TotalQuantity)
	assert.Equal(t, 42.0, q.GrossTotal)
	assert.Equal(t, 5.0, q.BulkDiscountPercent)
	assert.Equal(t, 39.9, q.Payable)
}

func TestQuoteRejects(t *testing.T) {
	svc, _, a, b := setup(t)
	ctx := context.Background()

	_, err := svc.Quote(ctx, nil)
	assert.ErrorIs(t, err, app_errors.ErrEmptyOrder)

	_, err = svc.Quote(ctx, []OrderItem{{KitID: a, Quantity: 0}})
	assert.ErrorIs(t, err, app_errors.ErrInvalidQuantity)

	_, err = svc.Quote(ctx, []OrderItem{{KitID: a, Quantity: math.MaxInt}, {KitID: a, Quantity: 10}})
	assert.ErrorIs(t, err, app_errors.ErrInvalidQuantity)

	_, err = svc.Quote(ctx, []OrderItem{{KitID: a, Quantity: models.MaxQuantity}, {KitID: b, Quantity: 1}})
	assert.ErrorIs(t, err, app_errors.ErrInvalidQuantity)

	_, err = svc.Quote(ctx, []OrderItem{{KitID: uuid.New(), Quantity: 1}})
	assert.ErrorIs(t, err, app_errors.ErrKitNotFound)

	require.NoError(t, svc.DeleteKit(ctx, a))
	_, err = svc.Quote(ctx, []OrderItem{{KitID: a, Quantity: 1}})
	assert.ErrorIs(t, err, app_errors.ErrKitInactive)
}

func TestCreateOrderIdempotent(t *testing.T) {
	svc, store, a, _ := setup(t)
	ctx := context.Background()
	student := uuid.New()
	items := []OrderItem{{KitID: a, Quantity: 10}}

	first, replayed, err := svc.CreateOrder(ctx, student, items, " 12 MG Road ", "key-1")
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.Equal(t, "12 MG Road", first.ShippingAddress)
	assert.Equal(t, 90.0, first.Payable)
	assert.Equal(t, models.KitOrderPendingPayment, first.Status)

	second, replayed, err := svc.CreateOrder(ctx, student, items, "elsewhere", "key-1")
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.orders, 1)

	_, _, err = svc.CreateOrder(ctx, uuid.New(), items, "", "key-1")
	require.NoError(t, err)
	assert.Len(t, store.orders, 2)

	_, err = svc.ListOrders(ctx, "shipped")
	assert.ErrorIs(t, err, app_errors.ErrInvalidStatus)
}
