package grouppricing

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

type groupPricingRepo interface {
	CreateGroupPricing(ctx context.Context, g models.GroupPricing) (*models.GroupPricing, error)
	GroupPricingByID(ctx context.Context, id uuid.UUID) (*models.GroupPricing, error)
	ListGroupPricing(ctx context.Context) ([]models.GroupPricing, error)
	UpdateGroupPricing(ctx context.Context, g models.GroupPricing) (*models.GroupPricing, error)
	DeleteGroupPricing(ctx context.Context, id uuid.UUID) error
}

type courseRepo interface {
	CoursesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Course, error)
}

type studentRepo interface {
	StudentByID(ctx context.Context, id uuid.UUID) (*models.Student, error)
}

type enrollmentRepo interface {
	EnrollBundle(ctx context.Context, studentID uuid.UUID, courses []models.Course, sessionType string) error
}

type GroupPricingService struct {
	log            logger.Log
	repo           groupPricingRepo
	courseRepo     courseRepo
	studentRepo    studentRepo
	enrollmentRepo enrollmentRepo
}

func NewGroupPricingService(log logger.Log, repo groupPricingRepo, courseRepo courseRepo, studentRepo studentRepo, enrollmentRepo enrollmentRepo) *GroupPricingService {
	return &GroupPricingService{
		log:            log,
		repo:           repo,
		courseRepo:     courseRepo,
		studentRepo:    studentRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

// validate requires at least one course and that every listed course exists.
// Duplicate ids are dropped, keeping the first occurrence.
func (s *GroupPricingService) validate(ctx context.Context, g *models.GroupPricing) error {
	g.Title = strings.TrimSpace(g.Title)
	if g.Level != "" && !models.ValidLevel(g.Level) {
		return app_errors.ErrInvalidLevel
	}

	seen := make(map[uuid.UUID]struct{}, len(g.CourseIDs))
	ids := make([]uuid.UUID, 0, len(g.CourseIDs))
	for _, id := range g.CourseIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return app_errors.ErrGroupPricingCourses
	}
	courses, err := s.courseRepo.CoursesByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(courses) != len(ids) {
		return app_errors.ErrGroupPricingCourses
	}
	g.CourseIDs = ids
	return nil
}

func (s *GroupPricingService) Create(ctx context.Context, g models.GroupPricing) (*models.GroupPricing, error) {
	if err := s.validate(ctx, &g); err != nil {
		return nil, err
	}
	created, err := s.repo.CreateGroupPricing(ctx, g)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, created)
}

func (s *GroupPricingService) Update(ctx context.Context, g models.GroupPricing) (*models.GroupPricing, error) {
	if err := s.validate(ctx, &g); err != nil {
		return nil, err
	}
	updated, err := s.repo.UpdateGroupPricing(ctx, g)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, updated)
}

func (s *GroupPricingService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteGroupPricing(ctx, id)
}

func (s *GroupPricingService) ByID(ctx context.Context, id uuid.UUID) (*models.GroupPricing, error) {
	g, err := s.repo.GroupPricingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, g)
}

func (s *GroupPricingService) List(ctx context.Context) ([]models.GroupPricing, error) {
	list, err := s.repo.ListGroupPricing(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if _, err := s.decorate(ctx, &list[i]); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// decorate fills the read-only view: default center blocks, course titles
// and the bundle rating.
func (s *GroupPricingService) decorate(ctx context.Context, g *models.GroupPricing) (*models.GroupPricing, error) {
	g.BackfillCenter()

	courses, err := s.courseRepo.CoursesByIDs(ctx, g.CourseIDs)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(courses))
	ratings := make([]float64, 0, len(courses))
	for _, c := range courses {
		titles = append(titles, c.Title)
		ratings = append(ratings, c.Rating)
	}
	g.CourseTitles = titles
	g.CourseRating = models.BundleRating(ratings)
	return g, nil
}

// Enroll adds every bundle course to the student's enrollments for sessionType.
// It fails with an EnrollmentConflictError when any course is already held.
func (s *GroupPricingService) Enroll(ctx context.Context, studentID, groupID uuid.UUID, sessionType string) (*models.GroupPricing, error) {
	if !models.ValidSessionType(sessionType) {
		return nil, app_errors.ErrInvalidSessionType
	}
	if _, err := s.studentRepo.StudentByID(ctx, studentID); err != nil {
		return nil, err
	}
	g, err := s.repo.GroupPricingByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	courses, err := s.courseRepo.CoursesByIDs(ctx, g.CourseIDs)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return nil, app_errors.ErrGroupPricingCourses
	}

	if err := s.enrollmentRepo.EnrollBundle(ctx, studentID, courses, sessionType); err != nil {
		return nil, err
	}
	s.log.Info("group enrollment", "student_id", studentID, "group_pricing_id", groupID, "session_type", sessionType, "courses", len(courses))
	return s.decorate(ctx, g)
}
