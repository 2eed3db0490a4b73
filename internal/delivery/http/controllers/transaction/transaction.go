package transaction

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/IICPAS/IICPAS-sub003/internal/delivery/http/controllers"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
	txservice "github.com/IICPAS/IICPAS-sub003/internal/service/transaction"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

type TransactionService interface {
	Submit(ctx context.Context, sub txservice.Submission) (*models.Transaction, bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, adminID uuid.UUID, reason string) (*models.Transaction, error)
	List(ctx context.Context, status string) ([]models.Transaction, error)
	StudentTransactions(ctx context.Context, studentID uuid.UUID, status string) ([]models.Transaction, error)
	ProofURL(ctx context.Context, id uuid.UUID) (string, error)
}

type Handler struct {
	log     logger.Log
	service TransactionService
}

func NewHandler(log logger.Log, s TransactionService) *Handler {
	return &Handler{log: log, service: s}
}

type submitForm struct {
	CourseID    string `form:"course_id" binding:"required,uuid"`
	SessionType string `form:"session_type" binding:"required,session_type"`
	Amount      string `form:"amount" binding:"required"`
}

func (h *Handler) SubmitPayment(c *gin.Context) {
	studentID, ok := controllers.CurrentUser(c)
	if !ok {
		return
	}
	var input submitForm
	if err := c.ShouldBind(&input); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	amount, err := strconv.ParseFloat(input.Amount, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
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

	t, replayed, err := h.service.Submit(c.Request.Context(), txservice.Submission{
		StudentID:      studentID,
		CourseID:       uuid.MustParse(input.CourseID),
		SessionType:    input.SessionType,
		Amount:         amount,
		Screenshot:     file,
		IdempotencyKey: c.GetHeader(controllers.IdempotencyHeader),
	})
	if err != nil {
		controllers.Error(c, err)
		return
	}
	controllers.Created(c, replayed, gin.H{"message": "payment submitted for verification", "transaction": t})
}

func (h *Handler) Mine(c *gin.Context) {
	studentID, ok := controllers.CurrentUser(c)
	if !ok {
		return
	}
	list, err := h.service.StudentTransactions(c.Request.Context(), studentID, c.Query("status"))
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
}

func (h *Handler) AdminList(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
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
	t, err := h.service.UpdateStatus(c.Request.Context(), id, input.Status, adminID, input.Reason)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}
