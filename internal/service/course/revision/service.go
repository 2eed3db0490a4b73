package revision

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

type revisionRepo interface {
	CreateRevisionTest(ctx context.Context, t models.RevisionTest) (*models.RevisionTest, error)
	RevisionTestByID(ctx context.Context, id uuid.UUID) (*models.RevisionTest, error)
	UpdateRevisionTest(ctx context.Context, t models.RevisionTest) (*models.RevisionTest, error)
	DeleteRevisionTest(ctx context.Context, id uuid.UUID) error
	ListRevisionTests(ctx context.Context, courseID *uuid.UUID, status string) ([]models.RevisionTest, error)
}

type enrollmentRepo interface {
	IsEnrolled(ctx context.Context, studentID, courseID uuid.UUID, sessionType string) (bool, error)
}

type RevisionService struct {
	log            logger.Log
	revisionRepo   revisionRepo
	enrollmentRepo enrollmentRepo
}

func NewRevisionService(log logger.Log, revisionRepo revisionRepo, enrollmentRepo enrollmentRepo) *RevisionService {
	return &RevisionService{
		log:            log,
		revisionRepo:   revisionRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

func validate(t *models.RevisionTest) error {
	t.Title = strings.TrimSpace(t.Title)
	if t.Status == "" {
		t.Status = models.RevisionStatusDraft
	}
	if t.Status != models.RevisionStatusDraft && t.Status != models.RevisionStatusPublished {
		return app_errors.ErrInvalidStatus
	}
	if !models.ValidQuestions(t.Questions) {
		return app_errors.ErrInvalidQuestions
	}
	return nil
}

func (s *RevisionService) Create(ctx context.Context, t models.RevisionTest) (*models.RevisionTest, error) {
	if err := validate(&t); err != nil {
		return nil, err
	}
	return s.revisionRepo.CreateRevisionTest(ctx, t)
}

// Update replaces the test. The course it belongs to never changes.
func (s *RevisionService) Update(ctx context.Context, t models.RevisionTest) (*models.RevisionTest, error) {
	current, err := s.revisionRepo.RevisionTestByID(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	if err := validate(&t); err != nil {
		return nil, err
	}
	t.CourseID = current.CourseID
	t.CreatedAt = current.CreatedAt
	return s.revisionRepo.UpdateRevisionTest(ctx, t)
}

func (s *RevisionService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.revisionRepo.DeleteRevisionTest(ctx, id)
}

func (s *RevisionService) ByID(ctx context.Context, id uuid.UUID) (*models.RevisionTest, error) {
	return s.revisionRepo.RevisionTestByID(ctx, id)
}

func (s *RevisionService) List(ctx context.Context, courseID *uuid.UUID, status string) ([]models.RevisionTest, error) {
	return s.revisionRepo.ListRevisionTests(ctx, courseID, status)
}

// StudentTests lists the published tests of a course the student is enrolled in, without answers.
func (s *RevisionService) StudentTests(ctx context.Context, studentID, courseID uuid.UUID) ([]models.RevisionTest, error) {
	if err := s.requireEnrollment(ctx, studentID, courseID); err != nil {
		return nil, err
	}
	tests, err := s.revisionRepo.ListRevisionTests(ctx, &courseID, models.RevisionStatusPublished)
	if err != nil {
		return nil, err
	}
	stripped := make([]models.RevisionTest, len(tests))
	for i, t := range tests {
		stripped[i] = t.WithoutAnswers()
	}
	return stripped, nil
}

func (s *RevisionService) Submit(ctx context.Context, studentID, testID uuid.UUID, answers []int) (*models.RevisionResult, error) {
	test, err := s.revisionRepo.RevisionTestByID(ctx, testID)
	if err != nil {
		return nil, err
	}
	if test.Status != models.RevisionStatusPublished {
		return nil, app_errors.ErrRevisionTestNotFound
	}
	if err := s.requireEnrollment(ctx, studentID, test.CourseID); err != nil {
		return nil, err
	}
	if len(answers) != len(test.Questions) {
		return nil, app_errors.ErrAnswerCount
	}
	res := test.Grade(answers)
	return &res, nil
}

func (s *RevisionService) requireEnrollment(ctx context.Context, studentID, courseID uuid.UUID) error {
	enrolled, err := s.enrollmentRepo.IsEnrolled(ctx, studentID, courseID, "")
	if err != nil {
		return err
	}
	if !enrolled {
		return app_errors.ErrNotEnrolled
	}
	return nil
}
