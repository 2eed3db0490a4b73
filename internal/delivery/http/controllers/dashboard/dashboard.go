package dashboard

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/IICPAS/IICPAS-sub003/internal/delivery/http/controllers"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

type DashboardService interface {
	Admin(ctx context.Context) (*models.AdminDashboard, error)
	Student(ctx context.Context, studentID uuid.UUID) (*models.StudentDashboard, error)
}

type Handler struct {
	log     logger.Log
	service DashboardService
}

func NewHandler(log logger.Log, s DashboardService) *Handler {
	return &Handler{log: log, service: s}
}

func (h *Handler) Admin(c *gin.Context) {
	d, err := h.service.Admin(c.Request.Context())
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) Student(c *gin.Context) {
	studentID, ok := controllers.CurrentUser(c)
	if !ok {
		return
	}
	d, err := h.service.Student(c.Request.Context(), studentID)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
