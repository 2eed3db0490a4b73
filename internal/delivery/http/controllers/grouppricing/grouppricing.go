package grouppricing

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/IICPAS/IICPAS-sub003/internal/delivery/http/controllers"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

type GroupPricingService interface {
	Create(ctx context.Context, g models.GroupPricing) (*models.GroupPricing, error)
	Update(ctx context.Context, g models.GroupPricing) (*models.GroupPricing, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ByID(ctx context.Context, id uuid.UUID) (*models.GroupPricing, error)
	List(ctx context.Context) ([]models.GroupPricing, error)
	Enroll(ctx context.Context, studentID, groupID uuid.UUID, sessionType string) (*models.GroupPricing, error)
}

type Handler struct {
	log     logger.Log
	service GroupPricingService
}

func NewHandler(log logger.Log, s GroupPricingService) *Handler {
	return &Handler{log: log, service: s}
}

type groupPricingRequest struct {
	Title     string         `json:"title" binding:"required"`
	Level     string         `json:"level" binding:"required"`
	CourseIDs []uuid.UUID    `json:"course_ids" binding:"required,min=1"`
	Pricing   models.Pricing `json:"pricing"`
}

func (r groupPricingRequest) model() models.GroupPricing {
	return models.GroupPricing{Title: r.Title, Level: r.Level, CourseIDs: r.CourseIDs, Pricing: r.Pricing}
}

func (h *Handler) Create(c *gin.Context) {
	var input groupPricingRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	g, err := h.service.Create(c.Request.Context(), input.model())
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := controllers.UUIDParam(c, "id")
	if !ok {
		return
	}
	var input groupPricingRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	m := input.model()
	m.ID = id
	g, err := h.service.Update(c.Request.Context(), m)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := controllers.UUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "group pricing deleted"})
}

func (h *Handler) ByID(c *gin.Context) {
	id, ok := controllers.UUIDParam(c, "id")
	if !ok {
		return
	}
	g, err := h.service.ByID(c.Request.Context(), id)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group_pricing": list})
}

type enrollRequest struct {
	SessionType string `json:"session_type" binding:"required,session_type"`
}

func (h *Handler) Enroll(c *gin.Context) {
	studentID, ok := controllers.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := controllers.UUIDParam(c, "id")
	if !ok {
		return
	}
	var input enrollRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.BadRequest(c, err)
		return
	}

	g, err := h.service.Enroll(c.Request.Context(), studentID, id, input.SessionType)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "enrolled in all package courses",
		"session_type": input.SessionType,
		"course_ids":   g.CourseIDs,
	})
}
