package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
)

type StudentPostgres struct {
	db *pgxpool.Pool
}

func NewStudentPostgres(db *pgxpool.Pool) *StudentPostgres {
	return &StudentPostgres{db: db}
}

const studentSelect = `
        SELECT u.id, u.name, u.email, s.phone, s.address, s.qualification, s.created_at
          FROM students s
          JOIN users u ON u.id = s.user_id
`

func scanStudent(row pgx.Row) (*models.Student, error) {
	var s models.Student
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Address, &s.Qualification, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrStudentNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *StudentPostgres) StudentByID(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	return scanStudent(r.db.QueryRow(ctx, studentSelect+` WHERE s.user_id = $1`, id))
}

func (r *StudentPostgres) ListStudents(ctx context.Context, search string, limit, offset int) ([]models.Student, int, error) {
	pattern := "%" + search + "%"
	const cond = ` WHERE ($1::text = '%%' OR u.name ILIKE $1 OR u.email ILIKE $1 OR s.phone ILIKE $1)`

	var total int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM students s JOIN users u ON u.id = s.user_id`+cond, pattern).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, studentSelect+cond+` ORDER BY s.created_at DESC LIMIT $2 OFFSET $3`, pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	students := make([]models.Student, 0)
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, 0, err
		}
		students = append(students, *s)
	}
	return students, total, rows.Err()
}

func (r *StudentPostgres) UpdateProfile(ctx context.Context, id uuid.UUID, u models.StudentProfileUpdate) (*models.Student, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	cmdTag, err := tx.Exec(ctx, `
        UPDATE students
           SET phone         = COALESCE($2, phone),
               address       = COALESCE($3, address),
               qualification = COALESCE($4, qualification)
         WHERE user_id = $1
    `, id, u.Phone, u.Address, u.Qualification)
	if err != nil {
		return nil, err
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, app_errors.ErrStudentNotFound
	}
	if u.Name != nil {
		if _, err = tx.Exec(ctx, `UPDATE users SET name = $2 WHERE id = $1`, id, *u.Name); err != nil {
			return nil, err
		}
	}

	student, err := scanStudent(tx.QueryRow(ctx, studentSelect+` WHERE s.user_id = $1`, id))
	if err != nil {
		return nil, err
	}
	return student, tx.Commit(ctx)
}

type EnrollmentPostgres struct {
	db *pgxpool.Pool
}

func NewEnrollmentPostgres(db *pgxpool.Pool) *EnrollmentPostgres {
	return &EnrollmentPostgres{db: db}
}

func (r *EnrollmentPostgres) Enrollments(ctx context.Context, studentID uuid.UUID) ([]models.Enrollment, error) {
	rows, err := r.db.Query(ctx, `
        SELECT e.student_id, e.course_id, COALESCE(c.title, ''), e.session_type, e.source, e.created_at
          FROM enrollments e
          LEFT JOIN courses c ON c.id = e.course_id
         WHERE e.student_id = $1
         ORDER BY e.created_at
    `, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	enrollments := make([]models.Enrollment, 0)
	for rows.Next() {
		var e models.Enrollment
		if err := rows.Scan(&e.StudentID, &e.CourseID, &e.CourseTitle, &e.SessionType, &e.Source, &e.CreatedAt); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}

// IsEnrolled checks one session type, or both when sessionType is empty.
func (r *EnrollmentPostgres) IsEnrolled(ctx context.Context, studentID, courseID uuid.UUID, sessionType string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
        SELECT EXISTS(
            SELECT 1 FROM enrollments
             WHERE student_id = $1 AND course_id = $2 AND ($3::text = '' OR session_type = $3)
        )
    `, studentID, courseID, sessionType).Scan(&exists)
	return exists, err
}

// Enroll is idempotent. created is false when the enrollment already existed.
func (r *EnrollmentPostgres) Enroll(ctx context.Context, e models.Enrollment) (created bool, err error) {
	return insertEnrollment(ctx, r.db, e)
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func insertEnrollment(ctx context.Context, db execer, e models.Enrollment) (bool, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	cmdTag, err := db.Exec(ctx, `
        INSERT INTO enrollments (student_id, course_id, session_type, source, created_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (student_id, course_id, session_type) DO NOTHING
    `, e.StudentID, e.CourseID, e.SessionType, e.Source, e.CreatedAt)
	if err != nil {
		if pgErr := UnwrapPgError(err); pgErr != nil && pgErr.Code == "23503" {
			return false, app_errors.ErrStudentNotFound
		}
		return false, err
	}
	return cmdTag.RowsAffected() == 1, nil
}

// EnrollBundle enrolls the student in every course or in none. The student row
// is locked so concurrent bundle enrollments for one student run one at a time.
func (r *EnrollmentPostgres) EnrollBundle(ctx context.Context, studentID uuid.UUID, courses []models.Course, sessionType string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var locked uuid.UUID
	err = tx.QueryRow(ctx, `SELECT user_id FROM students WHERE user_id = $1 FOR UPDATE`, studentID).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return app_errors.ErrStudentNotFound
		}
		return err
	}

	ids := make([]uuid.UUID, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
	}
	rows, err := tx.Query(ctx, `
        SELECT DISTINCT course_id FROM enrollments WHERE student_id = $1 AND course_id = ANY($2)
    `, studentID, ids)
	if err != nil {
		return err
	}
	enrolled, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return err
	}
	if len(enrolled) > 0 {
		held := make(map[uuid.UUID]struct{}, len(enrolled))
		for _, id := range enrolled {
			held[id] = struct{}{}
		}
		conflict := &app_errors.EnrollmentConflictError{}
		for _, c := range courses {
			if _, ok := held[c.ID]; ok {
				conflict.Titles = append(conflict.Titles, c.Title)
			}
		}
		return conflict
	}

	now := time.Now().UTC()
	for _, c := range courses {
		_, err = insertEnrollment(ctx, tx, models.Enrollment{
			StudentID:   studentID,
			CourseID:    c.ID,
			SessionType: sessionType,
			Source:      models.SourceGroupPricing,
			CreatedAt:   now,
		})
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
