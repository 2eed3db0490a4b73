package kit

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/internal/delivery/http/controllers"
	"github.com/IICPAS/IICPAS-sub003/internal/delivery/http/controllers/middleware"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
	kitservice "github.com/IICPAS/IICPAS-sub003/internal/service/kit"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

type fakeKits struct {
	created []models.Kit
	orders  map[string]*models.KitOrder
	quoted  [][]kitservice.OrderItem
}

func (f *fakeKits) CreateKit(_ context.Context, k models.Kit) (*models.Kit, error) {
	k.ID = uuid.New()
	f.created = append(f.created, k)
	return &k, nil
}

func (f *fakeKits) UpdateKit(_ context.Context, k models.Kit) (*models.Kit, error) {
	return &k, nil
}

func (f *fakeKits) DeleteKit(context.Context, uuid.UUID) error { return nil }

func (f *fakeKits) KitByID(context.Context, uuid.UUID) (*models.Kit, error) {
	return nil, app_errors.ErrKitNotFound
}

func (f *fakeKits) ListKits(context.Context, bool) ([]models.Kit, error) {
	return []models.Kit{}, nil
}

func (f *fakeKits) Quote(_ context.Context, items []kitservice.OrderItem) (models.KitQuote, error) {
	f.quoted = append(f.quoted, items)
	qty := 0
	for _, it := range items {
		qty += it.Quantity
	}
	return models.KitQuote{TotalQuantity: qty, Payable: float64(qty) * 10}, nil
}

func (f *fakeKits) CreateOrder(_ context.Context, studentID uuid.UUID, items []kitservice.OrderItem, addr, key string) (*models.KitOrder, bool, error) {
	if o, ok := f.orders[key]; ok && key != "" {
		return o, true, nil
	}
	o := &models.KitOrder{ID: uuid.New(), StudentID: studentID, Status: models.KitOrderPendingPayment, ShippingAddress: addr}
	f.orders[key] = o
	return o, false, nil
}

func (f *fakeKits) StudentOrders(context.Context, uuid.UUID) ([]models.KitOrder, error) {
	return []models.KitOrder{}, nil
}

func (f *fakeKits) ListOrders(_ context.Context, status string) ([]models.KitOrder, error) {
	if status == "shipped" {
		return nil, app_errors.ErrInvalidStatus
	}
	return []models.KitOrder{}, nil
}

func newRouter() (*gin.Engine, *fakeKits) {
	gin.SetMode(gin.TestMode)
	svc := &fakeKits{orders: map[string]*models.KitOrder{}}
	h := NewHandler(logger.Discard(), svc)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.ClientIDCtx, uuid.New()) })
	r.POST("/kits", h.CreateKit)
	r.GET("/kits/:id", h.KitByID)
	r.POST("/kit-orders/preview", h.Preview)
	r.POST("/kit-orders", h.CreateOrder)
	r.GET("/admin/kit-orders", h.AdminOrders)
	return r, svc
}

func do(r http.Handler, method, path, body, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(controllers.IdempotencyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateKitDefaultsActive(t *testing.T) {
	r, svc := newRouter()

	w := do(r, http.MethodPost, "/kits", `{"name":"Stationery","price":120}`, "")
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, svc.created, 1)
	assert.True(t, svc.created[0].Active)

	w = do(r, http.MethodPost, "/kits", `{"name":"Books","price":-1}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreview(t *testing.T) {
	r, svc := newRouter()
	kitID := uuid.NewString()

	w := do(r, http.MethodPost, "/kit-orders/preview", `{"items":[{"kit_id":"`+kitID+`","quantity":3}]}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, svc.quoted, 1)
	assert.Equal(t, 3, svc.quoted[0][0].Quantity)

	var quote models.KitQuote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
	assert.Equal(t, 30.0, quote.Payable)

	w = do(r, http.MethodPost, "/kit-orders/preview", `{"items":[{"kit_id":"`+kitID+`","quantity":0}]}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/kit-orders/preview", `{"items":[{"kit_id":"`+kitID+`","quantity":10001}]}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/kit-orders/preview", `{"items":[{"kit_id":"`+kitID+`","quantity":9223372036854775807}]}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, svc.quoted, 1)

	w = do(r, http.MethodPost, "/kit-orders/preview", `{"items":[]}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOrderIdempotent(t *testing.T) {
	r, _ := newRouter()
	body := `{"items":[{"kit_id":"` + uuid.NewString() + `","quantity":2}],"shipping_address":"12 MG Road, Delhi"}`

	w := do(r, http.MethodPost, "/kit-orders", body, "order-1")
	require.Equal(t, http.StatusCreated, w.Code)
	var first models.KitOrder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))

	w = do(r, http.MethodPost, "/kit-orders", body, "order-1")
	require.Equal(t, http.StatusOK, w.Code)
	var second models.KitOrder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, first.ID, second.ID)

	w = do(r, http.MethodPost, "/kit-orders", `{"items":[{"kit_id":"`+uuid.NewString()+`","quantity":2}]}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminOrdersStatusFilter(t *testing.T) {
	r, _ := newRouter()
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/admin/kit-orders?status=paid", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/admin/kit-orders?status=shipped", "", "").Code)
}

func TestKitByIDNotFound(t *testing.T) {
	r, _ := newRouter()
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/kits/"+uuid.NewString(), "", "").Code)
}
