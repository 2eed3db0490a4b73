package student

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type studentRepo interface {
	StudentByID(ctx context.Context, id uuid.UUID) (*models.Student, error)
	ListStudents(ctx context.Context, search string, limit, offset int) ([]models.Student, int, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, u models.StudentProfileUpdate) (*models.Student, error)
}

type enrollmentRepo interface {
	Enrollments(ctx context.Context, studentID uuid.UUID) ([]models.Enrollment, error)
	Enroll(ctx context.Context, e models.Enrollment) (created bool, err error)
}

type courseRepo interface {
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
}

type StudentService struct {
	log            logger.Log
	studentRepo    studentRepo
	enrollmentRepo enrollmentRepo
	courseRepo     courseRepo
}

func NewStudentService(log logger.Log, s studentRepo, e enrollmentRepo, c courseRepo) *StudentService {
	return &StudentService{
		log:            log,
		studentRepo:    s,
		enrollmentRepo: e,
		courseRepo:     c,
	}
}

func (s *StudentService) Profile(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	return s.studentRepo.StudentByID(ctx, id)
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

func (s *StudentService) UpdateProfile(ctx context.Context, id uuid.UUID, u models.StudentProfileUpdate) (*models.Student, error) {
	u.Name = trimmed(u.Name)
	if u.Name != nil && *u.Name == "" {
		u.Name = nil
	}
	u.Phone = trimmed(u.Phone)
	u.Address = trimmed(u.Address)
	u.Qualification = trimmed(u.Qualification)
	return s.studentRepo.UpdateProfile(ctx, id, u)
}

func (s *StudentService) Enrollments(ctx context.Context, id uuid.UUID) (models.EnrollmentSets, error) {
	enrollments, err := s.enrollmentRepo.Enrollments(ctx, id)
	if err != nil {
		return models.EnrollmentSets{}, err
	}
	return models.NewEnrollmentSets(enrollments), nil
}

func (s *StudentService) List(ctx context.Context, search string, limit, offset int) ([]models.Student, int, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.studentRepo.ListStudents(ctx, strings.TrimSpace(search), limit, offset)
}

// GrantEnrollment is the manual admin grant. Granting twice is not an error.
func (s *StudentService) GrantEnrollment(ctx context.Context, studentID, courseID uuid.UUID, sessionType string) (bool, error) {
	if !models.ValidSessionType(sessionType) {
		return false, app_errors.ErrInvalidSessionType
	}
	if _, err := s.studentRepo.StudentByID(ctx, studentID); err != nil {
		return false, err
	}
	if _, err := s.courseRepo.CourseByID(ctx, courseID); err != nil {
		return false, err
	}
	created, err := s.enrollmentRepo.Enroll(ctx, models.Enrollment{
		StudentID:   studentID,
		CourseID:    courseID,
		SessionType: sessionType,
		Source:      models.SourceAdmin,
	})
	if err != nil {
		return false, err
	}
	if created {
		s.log.Info("manual enrollment granted", "student_id", studentID, "course_id", courseID, "session_type", sessionType)
	}
	return created, nil
}
