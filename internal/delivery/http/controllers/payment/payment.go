package payment

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/IICPAS/IICPAS-sub003/internal/delivery/http/controllers"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

type PaymentService interface {
	Submit(ctx context.Context, orderID, studentID uuid.UUID, screenshot io.Reader) (*models.Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, adminID uuid.UUID, reason string) (*models.Payment, error)
	List(ctx context.Context, status string) ([]models.Payment, error)
	ProofURL(ctx context.Context, id uuid.UUID) (string, error)
}

type Handler struct {
	log     logger.Log
	service PaymentService
}

func NewHandler(log logger.Log, s PaymentService) *Handler {
	return &Handler{log: log, service: s}
}

func (h *Handler) Submit(c *gin.Context) {
	studentID, ok := controllers.CurrentUser(c)
	if !ok {
		return
	}
	orderID, ok := controllers.UUIDParam(c, "order_id")
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("screenshot")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "screenshot is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.log.ErrorErr("cannot open uploaded file", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot open uploaded file"})
		return
	}
	defer file.Close()

	p, err := h.service.Submit(c.Request.Context(), orderID, studentID, file)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) AdminList(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": list})
}

func (h *Handler) Proof(c *gin.Context) {
	id, ok := controllers.UUIDParam(c, "id")
	if !ok {
		return
	}
	url, err := h.service.ProofURL(c.Request.Context(), id)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	adminID, ok := controllers.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := controllers.UUIDParam(c, "id")
	if !ok {
		return
	}
	var input updateStatusRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	p, err := h.service.UpdateStatus(c.Request.Context(), id, input.Status, adminID, input.Reason)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
