package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
)

type CourseRatingPostgres struct {
	db *pgxpool.Pool
}

func NewCourseRatingPostgres(db *pgxpool.Pool) *CourseRatingPostgres {
	return &CourseRatingPostgres{db: db}
}

const ratingSelect = `
        SELECT cr.id, cr.student_id, u.name, cr.course_id, c.title,
               cr.rating, cr.review, cr.status, cr.approved_by, cr.approved_at,
               cr.rejected_reason, cr.created_at, cr.updated_at
          FROM course_ratings cr
          JOIN users u ON u.id = cr.student_id
          JOIN courses c ON c.id = cr.course_id
`

func scanRating(row pgx.Row) (*models.CourseRating, error) {
	var cr models.CourseRating
	err := row.Scan(
		&cr.ID, &cr.StudentID, &cr.StudentName, &cr.CourseID, &cr.CourseTitle,
		&cr.Rating, &cr.Review, &cr.Status, &cr.ApprovedBy, &cr.ApprovedAt,
		&cr.RejectedReason, &cr.CreatedAt, &cr.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrRatingNotFound
		}
		return nil, err
	}
	return &cr, nil
}

func collectRatings(rows pgx.Rows) ([]models.CourseRating, error) {
	defer rows.Close()
	ratings := make([]models.CourseRating, 0)
	for rows.Next() {
		cr, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, *cr)
	}
	return ratings, rows.Err()
}

func (r *CourseRatingPostgres) IsRated(ctx context.Context, courseID, studentID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
        SELECT EXISTS(
            SELECT 1 FROM course_ratings WHERE course_id=$1 AND student_id=$2
        )
    `, courseID, studentID).Scan(&exists)
	return exists, err
}

// AddRating relies on the unique (student, course) index when two submissions race.
func (r *CourseRatingPostgres) AddRating(ctx context.Context, rating models.CourseRating) (*models.CourseRating, error) {
	now := time.Now().UTC()
	rating.ID = uuid.New()
	rating.Status = models.RatingStatusPending
	rating.CreatedAt = now
	rating.UpdatedAt = now
	_, err := r.db.Exec(ctx, `
        INSERT INTO course_ratings (id, student_id, course_id, rating, review, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, rating.ID, rating.StudentID, rating.CourseID, rating.Rating, rating.Review, rating.Status, rating.CreatedAt, rating.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "course_ratings_student_course_key") {
			return nil, app_errors.ErrAlreadyRated
		}
		if pgErr := UnwrapPgError(err); pgErr != nil && pgErr.Code == "23503" {
			return nil, app_errors.ErrCourseNotFound
		}
		return nil, err
	}
	return &rating, nil
}

func (r *CourseRatingPostgres) ListRatings(ctx context.Context, f models.RatingFilter) ([]models.CourseRating, error) {
	rows, err := r.db.Query(ctx, ratingSelect+`
         WHERE ($1::text = '' OR cr.status = $1)
           AND ($2::uuid IS NULL OR cr.course_id = $2)
         ORDER BY cr.created_at DESC
    `, f.Status, f.CourseID)
	if err != nil {
		return nil, err
	}
	return collectRatings(rows)
}

func (r *CourseRatingPostgres) StudentRatings(ctx context.Context, studentID uuid.UUID) ([]models.CourseRating, error) {
	rows, err := r.db.Query(ctx, ratingSelect+` WHERE cr.student_id = $1 ORDER BY cr.created_at DESC`, studentID)
	if err != nil {
		return nil, err
	}
	return collectRatings(rows)
}

func (r *CourseRatingPostgres) ApprovedCourseRatings(ctx context.Context, courseID uuid.UUID) ([]models.CourseRating, error) {
	rows, err := r.db.Query(ctx, ratingSelect+`
         WHERE cr.course_id = $1 AND cr.status = 'approved'
         ORDER BY cr.created_at DESC
    `, courseID)
	if err != nil {
		return nil, err
	}
	return collectRatings(rows)
}

// Moderate moves a pending rating to approved or rejected and rewrites the
// course aggregate in the same transaction.
func (r *CourseRatingPostgres) Moderate(ctx context.Context, id uuid.UUID, status string, adminID uuid.UUID, reason string) (*models.CourseRating, models.RatingAggregate, error) {
	var agg models.RatingAggregate

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, agg, err
	}
	defer tx.Rollback(ctx)

	var courseID uuid.UUID
	var current string
	err = tx.QueryRow(ctx, `SELECT course_id, status FROM course_ratings WHERE id = $1 FOR UPDATE`, id).Scan(&courseID, &current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, agg, app_errors.ErrRatingNotFound
		}
		return nil, agg, err
	}
	if !models.CanModerate(current, status) {
		return nil, agg, app_errors.ErrRatingNotPending
	}

	if err = lockCourse(ctx, tx, courseID); err != nil {
		return nil, agg, err
	}

	now := time.Now().UTC()
	if status == models.RatingStatusApproved {
		_, err = tx.Exec(ctx, `
            UPDATE course_ratings
               SET status = $2, approved_by = $3, approved_at = $4, updated_at = $4
             WHERE id = $1
        `, id, status, adminID, now)
	} else {
		_, err = tx.Exec(ctx, `
            UPDATE course_ratings
               SET status = $2, rejected_reason = $3, updated_at = $4
             WHERE id = $1
        `, id, status, reason, now)
	}
	if err != nil {
		return nil, agg, fmt.Errorf("failed to update rating status: %w", err)
	}

	if agg, err = rewriteAggregate(ctx, tx, courseID); err != nil {
		return nil, agg, err
	}

	rating, err := scanRating(tx.QueryRow(ctx, ratingSelect+` WHERE cr.id = $1`, id))
	if err != nil {
		return nil, agg, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, agg, err
	}
	return rating, agg, nil
}

func (r *CourseRatingPostgres) DeleteRating(ctx context.Context, id uuid.UUID) (models.RatingAggregate, error) {
	var agg models.RatingAggregate

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return agg, err
	}
	defer tx.Rollback(ctx)

	var courseID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT course_id FROM course_ratings WHERE id = $1 FOR UPDATE`, id).Scan(&courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return agg, app_errors.ErrRatingNotFound
		}
		return agg, err
	}
	if err = lockCourse(ctx, tx, courseID); err != nil {
		return agg, err
	}
	if _, err = tx.Exec(ctx, `DELETE FROM course_ratings WHERE id = $1`, id); err != nil {
		return agg, err
	}
	if agg, err = rewriteAggregate(ctx, tx, courseID); err != nil {
		return agg, err
	}

	return agg, tx.Commit(ctx)
}

// RecomputeAggregate rewrites one course's aggregate from its approved ratings.
func (r *CourseRatingPostgres) RecomputeAggregate(ctx context.Context, courseID uuid.UUID) (models.RatingAggregate, error) {
	var agg models.RatingAggregate

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return agg, err
	}
	defer tx.Rollback(ctx)

	if err = lockCourse(ctx, tx, courseID); err != nil {
		return agg, err
	}
	if agg, err = rewriteAggregate(ctx, tx, courseID); err != nil {
		return agg, err
	}
	return agg, tx.Commit(ctx)
}

// lockCourse serializes aggregate rewrites for one course.
func lockCourse(ctx context.Context, tx pgx.Tx, courseID uuid.UUID) error {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM courses WHERE id = $1 FOR UPDATE`, courseID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return app_errors.ErrCourseNotFound
	}
	return err
}

func rewriteAggregate(ctx context.Context, tx pgx.Tx, courseID uuid.UUID) (models.RatingAggregate, error) {
	rows, err := tx.Query(ctx, `SELECT rating FROM course_ratings WHERE course_id = $1 AND status = 'approved'`, courseID)
	if err != nil {
		return models.RatingAggregate{}, err
	}
	approved, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return models.RatingAggregate{}, err
	}

	agg := models.AggregateRatings(approved)
	_, err = tx.Exec(ctx, `
        UPDATE courses SET rating = $2, review_count = $3, updated_at = NOW() WHERE id = $1
    `, courseID, agg.Rating, agg.ReviewCount)
	if err != nil {
		return models.RatingAggregate{}, fmt.Errorf("failed to write rating aggregate: %w", err)
	}
	return agg, nil
}
