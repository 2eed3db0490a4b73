package student

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/IICPAS/IICPAS-sub003/internal/delivery/http/controllers"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

type StudentService interface {
	Profile(ctx context.Context, id uuid.UUID) (*models.Student, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, u models.StudentProfileUpdate) (*models.Student, error)
	Enrollments(ctx context.Context, id uuid.UUID) (models.EnrollmentSets, error)
	List(ctx context.Context, search string, limit, offset int) ([]models.Student, int, error)
	GrantEnrollment(ctx context.Context, studentID, courseID uuid.UUID, sessionType string) (bool, error)
}

type Handler struct {
	log     logger.Log
	service StudentService
}

func NewHandler(log logger.Log, s StudentService) *Handler {
	return &Handler{log: log, service: s}
}

func (h *Handler) Me(c *gin.Context) {
	id, ok := controllers.CurrentUser(c)
	if !ok {
		return
	}
	h.profile(c, id)
}

func (h *Handler) ByID(c *gin.Context) {
	id, ok := controllers.UUIDParam(c, "id")
	if !ok {
		return
	}
	h.profile(c, id)
}

func (h *Handler) profile(c *gin.Context, id uuid.UUID) {
	s, err := h.service.Profile(c.Request.Context(), id)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

type updateProfileRequest struct {
	Name          *string `json:"name"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
	Qualification *string `json:"qualification"`
}

func (h *Handler) UpdateMe(c *gin.Context) {
	id, ok := controllers.CurrentUser(c)
	if !ok {
		return
	}
	var input updateProfileRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	s, err := h.service.UpdateProfile(c.Request.Context(), id, models.StudentProfileUpdate{
		Name:          input.Name,
		Phone:         input.Phone,
		Address:       input.Address,
		Qualification: input.Qualification,
	})
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) MyEnrollments(c *gin.Context) {
	id, ok := controllers.CurrentUser(c)
	if !ok {
		return
	}
	sets, err := h.service.Enrollments(c.Request.Context(), id)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, sets)
}

func (h *Handler) List(c *gin.Context) {
	limit, ok := controllers.IntQuery(c, "limit", 0)
	if !ok {
		return
	}
	offset, ok := controllers.IntQuery(c, "offset", 0)
	if !ok {
		return
	}
	students, total, err := h.service.List(c.Request.Context(), c.Query("search"), limit, offset)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": students, "total": total})
}

type grantRequest struct {
	CourseID    uuid.UUID `json:"course_id" binding:"required"`
	SessionType string    `json:"session_type" binding:"required,session_type"`
}

func (h *Handler) GrantEnrollment(c *gin.Context) {
	studentID, ok := controllers.UUIDParam(c, "id")
	if !ok {
		return
	}
	var input grantRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	created, err := h.service.GrantEnrollment(c.Request.Context(), studentID, input.CourseID, input.SessionType)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"created": created})
}
