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

type RatingService interface {
	Submit(ctx context.Context, studentID, courseID uuid.UUID, value int, review string) (*models.CourseRating, error)
	Approve(ctx context.Context, id, adminID uuid.UUID) (*models.CourseRating, error)
	Reject(ctx context.Context, id, adminID uuid.UUID, reason string) (*models.CourseRating, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f models.RatingFilter) ([]models.CourseRating, error)
	StudentRatings(ctx context.Context, studentID uuid.UUID) ([]models.CourseRating, error)
	CourseRatings(ctx context.Context, courseID uuid.UUID) ([]models.CourseRating, error)
}

type RatingHandler struct {
	log     logger.Log
	service RatingService
}

func NewRatingHandler(log logger.Log, s RatingService) *RatingHandler {
	return &RatingHandler{
		log:     log,
		service: s,
	}
}

type rateCourseRequest struct {
	CourseID uuid.UUID `json:"course_id" binding:"required"`
	Rating   int       `json:"rating" binding:"required,rating_value"`
	Review   string    `json:"review"`
}

func (h *RatingHandler) RateCourse(c *gin.Context) {
	studentID, ok := controllers.CurrentUser(c)
	if !ok {
		return
	}
	var input rateCourseRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.BadRequest(c, err)
		return
	}

	rating, err := h.service.Submit(c.Request.Context(), studentID, input.CourseID, input.Rating, input.Review)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "rating submitted for review", "rating": rating})
}

func (h *RatingHandler) MyRatings(c *gin.Context) {
	studentID, ok := controllers.CurrentUser(c)
	if !ok {
		return
	}
	ratings, err := h.service.StudentRatings(c.Request.Context(), studentID)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ratings": ratings})
}

func (h *RatingHandler) CourseRatings(c *gin.Context) {
	courseID, ok := controllers.UUIDParam(c, "course_id")
	if !ok {
		return
	}
	ratings, err := h.service.CourseRatings(c.Request.Context(), courseID)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ratings": ratings})
}

func (h *RatingHandler) AdminList(c *gin.Context) {
	courseID, ok := controllers.OptionalUUIDQuery(c, "course_id")
	if !ok {
		return
	}
	ratings, err := h.service.List(c.Request.Context(), models.RatingFilter{Status: c.Query("status"), CourseID: courseID})
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ratings": ratings})
}

func (h *RatingHandler) Approve(c *gin.Context) {
	adminID, ok := controllers.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := controllers.UUIDParam(c, "id")
	if !ok {
		return
	}
	rating, err := h.service.Approve(c.Request.Context(), id, adminID)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, rating)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *RatingHandler) Reject(c *gin.Context) {
	adminID, ok := controllers.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := controllers.UUIDParam(c, "id")
	if !ok {
		return
	}
	var input rejectRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	rating, err := h.service.Reject(c.Request.Context(), id, adminID, input.Reason)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, rating)
}

func (h *RatingHandler) Delete(c *gin.Context) {
	id, ok := controllers.UUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "rating deleted"})
}
