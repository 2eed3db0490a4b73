package course

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

type ManagementService interface {
	CreateCourse(ctx context.Context, course models.Course) (*models.Course, error)
	UpdateCourse(ctx context.Context, id uuid.UUID, u models.CourseUpdate) (*models.Course, error)
	DeleteCourse(ctx context.Context, id uuid.UUID) error
	ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*models.Course, error)
	UploadCourseLogo(ctx context.Context, courseID uuid.UUID, filename string, reader io.Reader) (string, error)
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	ListCourses(ctx context.Context, f models.CourseFilter) ([]models.Course, int, error)
}

type ManagementHandler struct {
	log     logger.Log
	service ManagementService
}

func NewManagementHandler(l logger.Log, s ManagementService) *ManagementHandler {
	return &ManagementHandler{
		log:     l,
		service: s,
	}
}

type newCourseRequest struct {
	Title       string  `json:"title" binding:"required"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"gte=0"`
	Discount    float64 `json:"discount" binding:"gte=0,lte=100"`
	Level       string  `json:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
	Status      string  `json:"status" binding:"omitempty,oneof=draft published archived"`
}

func (h *ManagementHandler) CreateCourse(c *gin.Context) {
	var input newCourseRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.BadRequest(c, err)
		return
	}

	course, err := h.service.CreateCourse(c.Request.Context(), models.Course{
		Title:       input.Title,
		Slug:        input.Slug,
		Description: input.Description,
		Price:       input.Price,
		Discount:    input.Discount,
		Level:       input.Level,
		Status:      input.Status,
	})
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

type updateCourseRequest struct {
	Title       *string  `json:"title"`
	Slug        *string  `json:"slug"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Discount    *float64 `json:"discount"`
	Level       *string  `json:"level"`
}

func (h *ManagementHandler) UpdateCourse(c *gin.Context) {
	courseID, ok := controllers.UUIDParam(c, "course_id")
	if !ok {
		return
	}
	var input updateCourseRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.BadRequest(c, err)
		return
	}

	course, err := h.service.UpdateCourse(c.Request.Context(), courseID, models.CourseUpdate{
		Title:       input.Title,
		Slug:        input.Slug,
		Description: input.Description,
		Price:       input.Price,
		Discount:    input.Discount,
		Level:       input.Level,
	})
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *ManagementHandler) DeleteCourse(c *gin.Context) {
	courseID, ok := controllers.UUIDParam(c, "course_id")
	if !ok {
		return
	}
	if err := h.service.DeleteCourse(c.Request.Context(), courseID); err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "course deleted"})
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *ManagementHandler) ChangeStatus(c *gin.Context) {
	courseID, ok := controllers.UUIDParam(c, "course_id")
	if !ok {
		return
	}
	var input statusRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.BadRequest(c, err)
		return
	}

	course, err := h.service.ChangeStatus(c.Request.Context(), courseID, input.Status)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *ManagementHandler) CourseByID(c *gin.Context) {
	courseID, ok := controllers.UUIDParam(c, "course_id")
	if !ok {
		return
	}
	course, err := h.service.CourseByID(c.Request.Context(), courseID)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *ManagementHandler) ListCourses(c *gin.Context) {
	f, ok := courseFilter(c)
	if !ok {
		return
	}
	f.Status = c.Query("status")

	courses, total, err := h.service.ListCourses(c.Request.Context(), f)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses, "total": total})
}

func (h *ManagementHandler) UploadCourseLogo(c *gin.Context) {
	courseID, ok := controllers.UUIDParam(c, "course_id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.log.ErrorErr("cannot open uploaded file", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot open uploaded file"})
		return
	}
	defer file.Close()

	url, err := h.service.UploadCourseLogo(c.Request.Context(), courseID, fileHeader.Filename, file)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"url":    url,
	})
}
