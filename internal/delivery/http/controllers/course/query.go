package course

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/IICPAS/IICPAS-sub003/internal/delivery/http/controllers"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

type QueryService interface {
	PublishedCourse(ctx context.Context, id uuid.UUID) (*models.Course, error)
	PublishedCourseBySlug(ctx context.Context, slug string) (*models.Course, error)
	PublishedCourses(ctx context.Context, f models.CourseFilter) ([]models.Course, int, error)
}

type QueryHandler struct {
	log     logger.Log
	service QueryService
}

func NewQueryHandler(log logger.Log, s QueryService) *QueryHandler {
	return &QueryHandler{
		log:     log,
		service: s,
	}
}

func courseFilter(c *gin.Context) (models.CourseFilter, bool) {
	limit, ok := controllers.IntQuery(c, "limit", 0)
	if !ok {
		return models.CourseFilter{}, false
	}
	offset, ok := controllers.IntQuery(c, "offset", 0)
	if !ok {
		return models.CourseFilter{}, false
	}
	return models.CourseFilter{
		Query:  c.Query("query"),
		Level:  c.Query("level"),
		Limit:  limit,
		Offset: offset,
	}, true
}

func (h *QueryHandler) ListCourses(c *gin.Context) {
	f, ok := courseFilter(c)
	if !ok {
		return
	}
	courses, total, err := h.service.PublishedCourses(c.Request.Context(), f)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses, "total": total})
}

func (h *QueryHandler) CourseByID(c *gin.Context) {
	courseID, ok := controllers.UUIDParam(c, "course_id")
	if !ok {
		return
	}
	course, err := h.service.PublishedCourse(c.Request.Context(), courseID)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *QueryHandler) CourseBySlug(c *gin.Context) {
	course, err := h.service.PublishedCourseBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}
