package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
)

type CoursePostgres struct {
	db *pgxpool.Pool
}

func NewCoursePostgres(db *pgxpool.Pool) *CoursePostgres {
	return &CoursePostgres{db: db}
}

const courseColumns = `
            c.id,
            c.title,
            c.slug,
            c.description,
            c.price,
            c.discount,
            c.level,
            c.status,
            c.logo_object_key,
            c.rating,
            c.review_count,
            ARRAY(SELECT ch.id FROM chapters ch WHERE ch.course_id = c.id ORDER BY ch.chapter_order),
            c.created_at,
            c.updated_at
`

func scanCourse(row pgx.Row) (*models.Course, error) {
	course := &models.Course{}
	err := row.Scan(
		&course.ID,
		&course.Title,
		&course.Slug,
		&course.Description,
		&course.Price,
		&course.Discount,
		&course.Level,
		&course.Status,
		&course.LogoObjectKey,
		&course.Rating,
		&course.ReviewCount,
		&course.ChapterIDs,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

func (r *CoursePostgres) NewCourse(ctx context.Context, course *models.Course) error {
	if course.ID == uuid.Nil {
		course.ID = uuid.New()
	}
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now
	course.ChapterIDs = []uuid.UUID{}
	query := `
		INSERT INTO courses (
			id, title, slug, description, price, discount,
			level, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10
		)
	`
	_, err := r.db.Exec(
		ctx,
		query,
		course.ID,
		course.Title,
		course.Slug,
		course.Description,
		course.Price,
		course.Discount,
		course.Level,
		course.Status,
		course.CreatedAt,
		course.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "courses_slug_key") {
			return app_errors.ErrCourseExists
		}
		return err
	}
	return nil
}

func (r *CoursePostgres) CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses c WHERE c.id = $1`
	return scanCourse(r.db.QueryRow(ctx, query, id))
}

func (r *CoursePostgres) CourseBySlug(ctx context.Context, slug string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses c WHERE c.slug = $1`
	return scanCourse(r.db.QueryRow(ctx, query, slug))
}

// ListCourses returns a page and the total number of matching rows.
func (r *CoursePostgres) ListCourses(ctx context.Context, f models.CourseFilter) ([]models.Course, int, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("c.status = $%d", len(args)))
	}
	if f.Level != "" {
		args = append(args, f.Level)
		where = append(where, fmt.Sprintf("c.level = $%d", len(args)))
	}
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		where = append(where, fmt.Sprintf("(c.title ILIKE $%d OR c.description ILIKE $%d)", len(args), len(args)))
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM courses c`+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM courses c%s ORDER BY c.created_at DESC LIMIT $%d OFFSET $%d`,
		courseColumns, cond, len(args)-1, len(args))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	courses := make([]models.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, 0, err
		}
		courses = append(courses, *c)
	}
	return courses, total, rows.Err()
}

// CoursesByIDs keeps the order of ids and skips missing courses.
func (r *CoursePostgres) CoursesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses c WHERE c.id = ANY($1)`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]models.Course, len(ids))
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		byID[c.ID] = *c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	courses := make([]models.Course, 0, len(byID))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			courses = append(courses, c)
		}
	}
	return courses, nil
}

func (r *CoursePostgres) UpdateCourse(ctx context.Context, id uuid.UUID, u models.CourseUpdate) (*models.Course, error) {
	const query = `
        UPDATE courses
           SET title       = COALESCE($2, title),
               slug        = COALESCE($3, slug),
               description = COALESCE($4, description),
               price       = COALESCE($5, price),
               discount    = COALESCE($6, discount),
               level       = COALESCE($7, level),
               updated_at  = NOW()
         WHERE id = $1
    `
	cmdTag, err := r.db.Exec(ctx, query, id, u.Title, u.Slug, u.Description, u.Price, u.Discount, u.Level)
	if err != nil {
		if isUniqueViolation(err, "courses_slug_key") {
			return nil, app_errors.ErrCourseExists
		}
		return nil, err
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, app_errors.ErrCourseNotFound
	}
	return r.CourseByID(ctx, id)
}

func (r *CoursePostgres) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrCourseNotFound
	}
	return nil
}

func (r *CoursePostgres) ChangeStatus(ctx context.Context, id uuid.UUID, status string) error {
	const query = `
        UPDATE courses
           SET status     = $2,
               updated_at = NOW()
         WHERE id = $1
    `
	cmdTag, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrCourseNotFound
	}
	return nil
}

func (r *CoursePostgres) SetLogo(ctx context.Context, id uuid.UUID, objectKey string) error {
	cmdTag, err := r.db.Exec(ctx, `
        UPDATE courses SET logo_object_key = $2, updated_at = NOW() WHERE id = $1
    `, id, objectKey)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrCourseNotFound
	}
	return nil
}

func (r *CoursePostgres) CourseIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM courses ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
}
