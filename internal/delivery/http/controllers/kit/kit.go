package kit

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/IICPAS/IICPAS-sub003/internal/delivery/http/controllers"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
	kitservice "github.com/IICPAS/IICPAS-sub003/internal/service/kit"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

type KitService interface {
	CreateKit(ctx context.Context, k models.Kit) (*models.Kit, error)
	UpdateKit(ctx context.Context, k models.Kit) (*models.Kit, error)
	DeleteKit(ctx context.Context, id uuid.UUID) error
	KitByID(ctx context.Context, id uuid.UUID) (*models.Kit, error)
	ListKits(ctx context.Context, activeOnly bool) ([]models.Kit, error)
	Quote(ctx context.Context, items []kitservice.OrderItem) (models.KitQuote, error)
	CreateOrder(ctx context.Context, studentID uuid.UUID, items []kitservice.OrderItem, shippingAddress, idempotencyKey string) (*models.KitOrder, bool, error)
	StudentOrders(ctx context.Context, studentID uuid.UUID) ([]models.KitOrder, error)
	ListOrders(ctx context.Context, status string) ([]models.KitOrder, error)
}

type Handler struct {
	log     logger.Log
	service KitService
}

func NewHandler(log logger.Log, s KitService) *Handler {
	return &Handler{log: log, service: s}
}

type kitRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"gte=0"`
	Active      *bool   `json:"active"`
}

func (r kitRequest) model() models.Kit {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return models.Kit{Name: r.Name, Description: r.Description, Price: r.Price, Active: active}
}

func (h *Handler) CreateKit(c *gin.Context) {
	var input kitRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	k, err := h.service.CreateKit(c.Request.Context(), input.model())
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, k)
}

func (h *Handler) UpdateKit(c *gin.Context) {
	id, ok := controllers.UUIDParam(c, "id")
	if !ok {
		return
	}
	var input kitRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	m := input.model()
	m.ID = id
	k, err := h.service.UpdateKit(c.Request.Context(), m)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, k)
}

func (h *Handler) DeleteKit(c *gin.Context) {
	id, ok := controllers.UUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteKit(c.Request.Context(), id); err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "kit deactivated"})
}

func (h *Handler) KitByID(c *gin.Context) {
	id, ok := controllers.UUIDParam(c, "id")
	if !ok {
		return
	}
	k, err := h.service.KitByID(c.Request.Context(), id)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, k)
}

func (h *Handler) listKits(c *gin.Context, activeOnly bool) {
	kits, err := h.service.ListKits(c.Request.Context(), activeOnly)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kits": kits})
}

func (h *Handler) ActiveKits(c *gin.Context) {
	h.listKits(c, true)
}

func (h *Handler) AllKits(c *gin.Context) {
	h.listKits(c, false)
}

type orderItem struct {
	KitID    uuid.UUID `json:"kit_id" binding:"required"`
	Quantity int       `json:"quantity" binding:"required,min=1,max=10000"`
}

type previewRequest struct {
	Items []orderItem `json:"items" binding:"required,min=1,dive"`
}

type orderRequest struct {
	Items           []orderItem `json:"items" binding:"required,min=1,dive"`
	ShippingAddress string      `json:"shipping_address" binding:"required"`
}

func toItems(in []orderItem) []kitservice.OrderItem {
	out := make([]kitservice.OrderItem, len(in))
	for i, it := range in {
		out[i] = kitservice.OrderItem{KitID: it.KitID, Quantity: it.Quantity}
	}
	return out
}

func (h *Handler) Preview(c *gin.Context) {
	var input previewRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	quote, err := h.service.Quote(c.Request.Context(), toItems(input.Items))
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	studentID, ok := controllers.CurrentUser(c)
	if !ok {
		return
	}
	var input orderRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	order, replayed, err := h.service.CreateOrder(
		c.Request.Context(),
		studentID,
		toItems(input.Items),
		input.ShippingAddress,
		c.GetHeader(controllers.IdempotencyHeader),
	)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	controllers.Created(c, replayed, order)
}

func (h *Handler) MyOrders(c *gin.Context) {
	studentID, ok := controllers.CurrentUser(c)
	if !ok {
		return
	}
	orders, err := h.service.StudentOrders(c.Request.Context(), studentID)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) AdminOrders(c *gin.Context) {
	orders, err := h.service.ListOrders(c.Request.Context(), c.Query("status"))
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}
