package chapter

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

type chapterRepo interface {
	CreateChapter(ctx context.Context, chapter models.Chapter) (*models.Chapter, error)
	ChapterByID(ctx context.Context, id uuid.UUID) (*models.Chapter, error)
	UpdateChapter(ctx context.Context, id uuid.UUID, title, status *string) (*models.Chapter, error)
	DeleteChapter(ctx context.Context, id uuid.UUID) error
	SwapChapters(ctx context.Context, firstID, secondID uuid.UUID) error
	CreateTopic(ctx context.Context, topic models.Topic) (*models.Topic, error)
	DeleteTopic(ctx context.Context, id uuid.UUID) error
	CourseChapters(ctx context.Context, courseID uuid.UUID) ([]models.Chapter, error)
}

type courseRepo interface {
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
}

type ChapterService struct {
	log         logger.Log
	chapterRepo chapterRepo
	courseRepo  courseRepo
}

func NewChapterService(log logger.Log, chapterRepo chapterRepo, courseRepo courseRepo) *ChapterService {
	return &ChapterService{
		log:         log,
		chapterRepo: chapterRepo,
		courseRepo:  courseRepo,
	}
}

func validChapterStatus(s string) bool {
	return s == models.ChapterStatusActive || s == models.ChapterStatusInactive
}

func (s *ChapterService) CreateChapter(ctx context.Context, chapter models.Chapter) (*models.Chapter, error) {
	chapter.Title = strings.TrimSpace(chapter.Title)
	if chapter.Status != "" && !validChapterStatus(chapter.Status) {
		return nil, app_errors.ErrInvalidStatus
	}
	return s.chapterRepo.CreateChapter(ctx, chapter)
}

func (s *ChapterService) UpdateChapter(ctx context.Context, id uuid.UUID, title, status *string) (*models.Chapter, error) {
	if status != nil && !validChapterStatus(*status) {
		return nil, app_errors.ErrInvalidStatus
	}
	return s.chapterRepo.UpdateChapter(ctx, id, title, status)
}

func (s *ChapterService) DeleteChapter(ctx context.Context, id uuid.UUID) error {
	return s.chapterRepo.DeleteChapter(ctx, id)
}

func (s *ChapterService) SwapChapters(ctx context.Context, firstID, secondID uuid.UUID) error {
	if firstID == secondID {
		return nil
	}
	return s.chapterRepo.SwapChapters(ctx, firstID, secondID)
}

func (s *ChapterService) CreateTopic(ctx context.Context, topic models.Topic) (*models.Topic, error) {
	topic.Title = strings.TrimSpace(topic.Title)
	return s.chapterRepo.CreateTopic(ctx, topic)
}

func (s *ChapterService) DeleteTopic(ctx context.Context, id uuid.UUID) error {
	return s.chapterRepo.DeleteTopic(ctx, id)
}

// CourseChapters returns the ordered chapters of a course. Unpublished courses
// and inactive chapters are hidden unless all is set.
func (s *ChapterService) CourseChapters(ctx context.Context, courseID uuid.UUID, all bool) ([]models.Chapter, error) {
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !all && course.Status != models.CourseStatusPublished {
		return nil, app_errors.ErrCourseNotFound
	}

	chapters, err := s.chapterRepo.CourseChapters(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if all {
		return chapters, nil
	}
	visible := make([]models.Chapter, 0, len(chapters))
	for _, ch := range chapters {
		if ch.Status == models.ChapterStatusActive {
			visible = append(visible, ch)
		}
	}
	return visible, nil
}
