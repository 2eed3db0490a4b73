package cart

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/IICPAS/IICPAS-sub003/internal/delivery/http/controllers"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

type CartService interface {
	Cart(ctx context.Context, studentID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, studentID, courseID uuid.UUID, sessionType string, qty int) (*models.Cart, error)
	UpdateItem(ctx context.Context, studentID, courseID uuid.UUID, sessionType string, qty int) (*models.Cart, error)
	RemoveItem(ctx context.Context, studentID, courseID uuid.UUID, sessionType string) (*models.Cart, error)
	Clear(ctx context.Context, studentID uuid.UUID) error
}

type Handler struct {
	log     logger.Log
	service CartService
}

func NewHandler(log logger.Log, s CartService) *Handler {
	return &Handler{log: log, service: s}
}

func (h *Handler) Cart(c *gin.Context) {
	studentID, ok := controllers.CurrentUser(c)
	if !ok {
		return
	}
	cart, err := h.service.Cart(c.Request.Context(), studentID)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

type addItemRequest struct {
	CourseID    uuid.UUID `json:"course_id" binding:"required"`
	SessionType string    `json:"session_type" binding:"required,session_type"`
	Quantity    int       `json:"quantity" binding:"omitempty,min=1,max=10000"`
}

func (h *Handler) AddItem(c *gin.Context) {
	studentID, ok := controllers.CurrentUser(c)
	if !ok {
		return
	}
	var input addItemRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}
	cart, err := h.service.AddItem(c.Request.Context(), studentID, input.CourseID, input.SessionType, input.Quantity)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

type updateItemRequest struct {
	SessionType string `json:"session_type" binding:"required,session_type"`
	Quantity    int    `json:"quantity" binding:"required,min=1,max=10000"`
}

func (h *Handler) UpdateItem(c *gin.Context) {
	studentID, ok := controllers.CurrentUser(c)
	if !ok {
		return
	}
	courseID, ok := controllers.UUIDParam(c, "course_id")
	if !ok {
		return
	}
	var input updateItemRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	cart, err := h.service.UpdateItem(c.Request.Context(), studentID, courseID, input.SessionType, input.Quantity)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *Handler) RemoveItem(c *gin.Context) {
	studentID, ok := controllers.CurrentUser(c)
	if !ok {
		return
	}
	courseID, ok := controllers.UUIDParam(c, "course_id")
	if !ok {
		return
	}
	cart, err := h.service.RemoveItem(c.Request.Context(), studentID, courseID, c.Query("session_type"))
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *Handler) Clear(c *gin.Context) {
	studentID, ok := controllers.CurrentUser(c)
	if !ok {
		return
	}
	if err := h.service.Clear(c.Request.Context(), studentID); err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}
