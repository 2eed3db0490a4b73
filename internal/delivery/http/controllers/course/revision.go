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

type RevisionService interface {
	Create(ctx context.Context, t models.RevisionTest) (*models.RevisionTest, error)
	Update(ctx context.Context, t models.RevisionTest) (*models.RevisionTest, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ByID(ctx context.Context, id uuid.UUID) (*models.RevisionTest, error)
	List(ctx context.Context, courseID *uuid.UUID, status string) ([]models.RevisionTest, error)
	StudentTests(ctx context.Context, studentID, courseID uuid.UUID) ([]models.RevisionTest, error)
	Submit(ctx context.Context, studentID, testID uuid.UUID, answers []int) (*models.RevisionResult, error)
}

type RevisionHandler struct {
	log     logger.Log
	service RevisionService
}

func NewRevisionHandler(log logger.Log, s RevisionService) *RevisionHandler {
	return &RevisionHandler{log: log, service: s}
}

type revisionTestRequest struct {
	CourseID        uuid.UUID         `json:"course_id" binding:"required"`
	ChapterID       *uuid.UUID        `json:"chapter_id"`
	Title           string            `json:"title" binding:"required"`
	DurationMinutes int               `json:"duration_minutes" binding:"gte=0"`
	Questions       []models.Question `json:"questions" binding:"required"`
	Status          string            `json:"status"`
}

func (r revisionTestRequest) model() models.RevisionTest {
	return models.RevisionTest{
		CourseID:        r.CourseID,
		ChapterID:       r.ChapterID,
		Title:           r.Title,
		DurationMinutes: r.DurationMinutes,
		Questions:       r.Questions,
		Status:          r.Status,
	}
}

func (h *RevisionHandler) Create(c *gin.Context) {
	var input revisionTestRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	t, err := h.service.Create(c.Request.Context(), input.model())
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *RevisionHandler) Update(c *gin.Context) {
	testID, ok := controllers.UUIDParam(c, "test_id")
	if !ok {
		return
	}
	var input revisionTestRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	m := input.model()
	m.ID = testID
	t, err := h.service.Update(c.Request.Context(), m)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *RevisionHandler) Delete(c *gin.Context) {
	testID, ok := controllers.UUIDParam(c, "test_id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), testID); err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "revision test deleted"})
}

func (h *RevisionHandler) ByID(c *gin.Context) {
	testID, ok := controllers.UUIDParam(c, "test_id")
	if !ok {
		return
	}
	t, err := h.service.ByID(c.Request.Context(), testID)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *RevisionHandler) List(c *gin.Context) {
	courseID, ok := controllers.OptionalUUIDQuery(c, "course_id")
	if !ok {
		return
	}
	tests, err := h.service.List(c.Request.Context(), courseID, c.Query("status"))
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"revision_tests": tests})
}

func (h *RevisionHandler) StudentTests(c *gin.Context) {
	studentID, ok := controllers.CurrentUser(c)
	if !ok {
		return
	}
	courseID, ok := controllers.UUIDParam(c, "course_id")
	if !ok {
		return
	}
	tests, err := h.service.StudentTests(c.Request.Context(), studentID, courseID)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"revision_tests": tests})
}

type submitAnswersRequest struct {
	Answers []int `json:"answers" binding:"required"`
}

func (h *RevisionHandler) Submit(c *gin.Context) {
	studentID, ok := controllers.CurrentUser(c)
	if !ok {
		return
	}
	testID, ok := controllers.UUIDParam(c, "test_id")
	if !ok {
		return
	}
	var input submitAnswersRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	res, err := h.service.Submit(c.Request.Context(), studentID, testID, input.Answers)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
