package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
)

type RevisionTestPostgres struct {
	db *pgxpool.Pool
}

func NewRevisionTestPostgres(db *pgxpool.Pool) *RevisionTestPostgres {
	return &RevisionTestPostgres{db: db}
}

const revisionColumns = `id, course_id, chapter_id, title, duration_minutes, questions, status, created_at, updated_at`

func scanRevisionTest(row pgx.Row) (*models.RevisionTest, error) {
	var t models.RevisionTest
	err := row.Scan(&t.ID, &t.CourseID, &t.ChapterID, &t.Title, &t.DurationMinutes, &t.Questions, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrRevisionTestNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *RevisionTestPostgres) CreateRevisionTest(ctx context.Context, t models.RevisionTest) (*models.RevisionTest, error) {
	now := time.Now().UTC()
	t.ID = uuid.New()
	t.CreatedAt = now
	t.UpdatedAt = now
	_, err := r.db.Exec(ctx, `
        INSERT INTO revision_tests (`+revisionColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `, t.ID, t.CourseID, t.ChapterID, t.Title, t.DurationMinutes, t.Questions, t.Status, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if pgErr := UnwrapPgError(err); pgErr != nil && pgErr.Code == "23503" {
			return nil, app_errors.ErrCourseNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *RevisionTestPostgres) RevisionTestByID(ctx context.Context, id uuid.UUID) (*models.RevisionTest, error) {
	return scanRevisionTest(r.db.QueryRow(ctx, `SELECT `+revisionColumns+` FROM revision_tests WHERE id = $1`, id))
}

func (r *RevisionTestPostgres) UpdateRevisionTest(ctx context.Context, t models.RevisionTest) (*models.RevisionTest, error) {
	t.UpdatedAt = time.Now().UTC()
	cmdTag, err := r.db.Exec(ctx, `
        UPDATE revision_tests
           SET chapter_id = $2, title = $3, duration_minutes = $4,
               questions = $5, status = $6, updated_at = $7
         WHERE id = $1
    `, t.ID, t.ChapterID, t.Title, t.DurationMinutes, t.Questions, t.Status, t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, app_errors.ErrRevisionTestNotFound
	}
	return &t, nil
}

func (r *RevisionTestPostgres) DeleteRevisionTest(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM revision_tests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrRevisionTestNotFound
	}
	return nil
}

// ListRevisionTests filters by course when courseID is set and by status when status is not empty.
func (r *RevisionTestPostgres) ListRevisionTests(ctx context.Context, courseID *uuid.UUID, status string) ([]models.RevisionTest, error) {
	rows, err := r.db.Query(ctx, `
        SELECT `+revisionColumns+`
          FROM revision_tests
         WHERE ($1::uuid IS NULL OR course_id = $1)
           AND ($2::text = '' OR status = $2)
         ORDER BY created_at
    `, courseID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tests := make([]models.RevisionTest, 0)
	for rows.Next() {
		t, err := scanRevisionTest(rows)
		if err != nil {
			return nil, err
		}
		tests = append(tests, *t)
	}
	return tests, rows.Err()
}
