package rating

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

type ratingRepo interface {
	IsRated(ctx context.Context, courseID, studentID uuid.UUID) (bool, error)
	AddRating(ctx context.Context, rating models.CourseRating) (*models.CourseRating, error)
	ListRatings(ctx context.Context, f models.RatingFilter) ([]models.CourseRating, error)
	StudentRatings(ctx context.Context, studentID uuid.UUID) ([]models.CourseRating, error)
	ApprovedCourseRatings(ctx context.Context, courseID uuid.UUID) ([]models.CourseRating, error)
	Moderate(ctx context.Context, id uuid.UUID, status string, adminID uuid.UUID, reason string) (*models.CourseRating, models.RatingAggregate, error)
	DeleteRating(ctx context.Context, id uuid.UUID) (models.RatingAggregate, error)
	RecomputeAggregate(ctx context.Context, courseID uuid.UUID) (models.RatingAggregate, error)
}

type courseRepo interface {
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	CourseIDs(ctx context.Context) ([]uuid.UUID, error)
}

type enrollmentRepo interface {
	IsEnrolled(ctx context.Context, studentID, courseID uuid.UUID, sessionType string) (bool, error)
}

type CourseRatingService struct {
	log            logger.Log
	ratingRepo     ratingRepo
	courseRepo     courseRepo
	enrollmentRepo enrollmentRepo
}

func NewCourseRatingService(l logger.Log, r ratingRepo, c courseRepo, e enrollmentRepo) *CourseRatingService {
	return &CourseRatingService{
		log:            l,
		ratingRepo:     r,
		courseRepo:     c,
		enrollmentRepo: e,
	}
}

// Submit records a pending rating. The course must exist, the student must be
// enrolled under either session type and may rate a course only once.
func (s *CourseRatingService) Submit(ctx context.Context, studentID, courseID uuid.UUID, value int, review string) (*models.CourseRating, error) {
	if value < 1 || value > 5 {
		return nil, app_errors.ErrInvalidRating
	}
	if _, err := s.courseRepo.CourseByID(ctx, courseID); err != nil {
		return nil, err
	}

	enrolled, err := s.enrollmentRepo.IsEnrolled(ctx, studentID, courseID, "")
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, app_errors.ErrNotEnrolled
	}

	rated, err := s.ratingRepo.IsRated(ctx, courseID, studentID)
	if err != nil {
		return nil, err
	}
	if rated {
		return nil, app_errors.ErrAlreadyRated
	}

	return s.ratingRepo.AddRating(ctx, models.CourseRating{
		StudentID: studentID,
		CourseID:  courseID,
		Rating:    value,
		Review:    strings.TrimSpace(review),
	})
}

func (s *CourseRatingService) Approve(ctx context.Context, id, adminID uuid.UUID) (*models.CourseRating, error) {
	rating, agg, err := s.ratingRepo.Moderate(ctx, id, models.RatingStatusApproved, adminID, "")
	if err != nil {
		return nil, err
	}
	s.log.Info("rating approved", "rating_id", id, "course_id", rating.CourseID, "course_rating", agg.Rating, "review_count", agg.ReviewCount)
	return rating, nil
}

func (s *CourseRatingService) Reject(ctx context.Context, id, adminID uuid.UUID, reason string) (*models.CourseRating, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, app_errors.ErrReasonRequired
	}
	rating, agg, err := s.ratingRepo.Moderate(ctx, id, models.RatingStatusRejected, adminID, reason)
	if err != nil {
		return nil, err
	}
	s.log.Info("rating rejected", "rating_id", id, "course_id", rating.CourseID, "course_rating", agg.Rating, "review_count", agg.ReviewCount)
	return rating, nil
}

func (s *CourseRatingService) Delete(ctx context.Context, id uuid.UUID) error {
	agg, err := s.ratingRepo.DeleteRating(ctx, id)
	if err != nil {
		return err
	}
	s.log.Info("rating deleted", "rating_id", id, "course_rating", agg.Rating, "review_count", agg.ReviewCount)
	return nil
}

func (s *CourseRatingService) List(ctx context.Context, f models.RatingFilter) ([]models.CourseRating, error) {
	if f.Status != "" && f.Status != models.RatingStatusPending &&
		f.Status != models.RatingStatusApproved && f.Status != models.RatingStatusRejected {
		return nil, app_errors.ErrInvalidStatus
	}
	return s.ratingRepo.ListRatings(ctx, f)
}

func (s *CourseRatingService) StudentRatings(ctx context.Context, studentID uuid.UUID) ([]models.CourseRating, error) {
	return s.ratingRepo.StudentRatings(ctx, studentID)
}

func (s *CourseRatingService) CourseRatings(ctx context.Context, courseID uuid.UUID) ([]models.CourseRating, error) {
	if _, err := s.courseRepo.CourseByID(ctx, courseID); err != nil {
		return nil, err
	}
	return s.ratingRepo.ApprovedCourseRatings(ctx, courseID)
}

// ReconcileAll recomputes every course aggregate. A failing course is logged and skipped.
func (s *CourseRatingService) ReconcileAll(ctx context.Context) (int, error) {
	ids, err := s.courseRepo.CourseIDs(ctx)
	if err != nil {
		return 0, err
	}
	done := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		if _, err := s.ratingRepo.RecomputeAggregate(ctx, id); err != nil {
			s.log.ErrorErr("failed to recompute rating aggregate", err, "course_id", id)
			continue
		}
		done++
	}
	return done, nil
}
