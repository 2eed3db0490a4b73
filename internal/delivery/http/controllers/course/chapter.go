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

type ChapterService interface {
	CreateChapter(ctx context.Context, chapter models.Chapter) (*models.Chapter, error)
	UpdateChapter(ctx context.Context, id uuid.UUID, title, status *string) (*models.Chapter, error)
	DeleteChapter(ctx context.Context, id uuid.UUID) error
	SwapChapters(ctx context.Context, firstID, secondID uuid.UUID) error
	CreateTopic(ctx context.Context, topic models.Topic) (*models.Topic, error)
	DeleteTopic(ctx context.Context, id uuid.UUID) error
	CourseChapters(ctx context.Context, courseID uuid.UUID, all bool) ([]models.Chapter, error)
}

type ChapterHandler struct {
	log     logger.Log
	service ChapterService
}

func NewChapterHandler(log logger.Log, s ChapterService) *ChapterHandler {
	return &ChapterHandler{log: log, service: s}
}

type createChapterRequest struct {
	Title        string `json:"title" binding:"required"`
	ChapterOrder int    `json:"chapter_order" binding:"gte=0"`
	Status       string `json:"status"`
}

func (h *ChapterHandler) CreateChapter(c *gin.Context) {
	courseID, ok := controllers.UUIDParam(c, "course_id")
	if !ok {
		return
	}
	var input createChapterRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.BadRequest(c, err)
		return
	}

	chapter, err := h.service.CreateChapter(c.Request.Context(), models.Chapter{
		CourseID:     courseID,
		Title:        input.Title,
		ChapterOrder: input.ChapterOrder,
		Status:       input.Status,
	})
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, chapter)
}

type updateChapterRequest struct {
	Title  *string `json:"title"`
	Status *string `json:"status"`
}

func (h *ChapterHandler) UpdateChapter(c *gin.Context) {
	chapterID, ok := controllers.UUIDParam(c, "chapter_id")
	if !ok {
		return
	}
	var input updateChapterRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.BadRequest(c, err)
		return
	}

	chapter, err := h.service.UpdateChapter(c.Request.Context(), chapterID, input.Title, input.Status)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, chapter)
}

func (h *ChapterHandler) DeleteChapter(c *gin.Context) {
	chapterID, ok := controllers.UUIDParam(c, "chapter_id")
	if !ok {
		return
	}
	if err := h.service.DeleteChapter(c.Request.Context(), chapterID); err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "chapter deleted"})
}

type swapChaptersRequest struct {
	FirstID  uuid.UUID `json:"first_id" binding:"required"`
	SecondID uuid.UUID `json:"second_id" binding:"required"`
}

func (h *ChapterHandler) SwapChapters(c *gin.Context) {
	var input swapChaptersRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	if err := h.service.SwapChapters(c.Request.Context(), input.FirstID, input.SecondID); err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "chapters swapped"})
}

type createTopicRequest struct {
	Title      string `json:"title" binding:"required"`
	Content    string `json:"content"`
	VideoURL   string `json:"video_url" binding:"omitempty,url"`
	TopicOrder int    `json:"topic_order" binding:"gte=0"`
}

func (h *ChapterHandler) CreateTopic(c *gin.Context) {
	chapterID, ok := controllers.UUIDParam(c, "chapter_id")
	if !ok {
		return
	}
	var input createTopicRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.BadRequest(c, err)
		return
	}

	topic, err := h.service.CreateTopic(c.Request.Context(), models.Topic{
		ChapterID:  chapterID,
		Title:      input.Title,
		Content:    input.Content,
		VideoURL:   input.VideoURL,
		TopicOrder: input.TopicOrder,
	})
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, topic)
}

func (h *ChapterHandler) DeleteTopic(c *gin.Context) {
	topicID, ok := controllers.UUIDParam(c, "topic_id")
	if !ok {
		return
	}
	if err := h.service.DeleteTopic(c.Request.Context(), topicID); err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "topic deleted"})
}

func (h *ChapterHandler) courseChapters(c *gin.Context, all bool) {
	courseID, ok := controllers.UUIDParam(c, "course_id")
	if !ok {
		return
	}
	chapters, err := h.service.CourseChapters(c.Request.Context(), courseID, all)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chapters": chapters})
}

// CourseChapters is the public view: published courses, active chapters.
func (h *ChapterHandler) CourseChapters(c *gin.Context) {
	h.courseChapters(c, false)
}

func (h *ChapterHandler) AdminCourseChapters(c *gin.Context) {
	h.courseChapters(c, true)
}
