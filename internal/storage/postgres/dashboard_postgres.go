package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/IICPAS/IICPAS-sub003/internal/models"
)

type DashboardPostgres struct {
	db *pgxpool.Pool
}

func NewDashboardPostgres(db *pgxpool.Pool) *DashboardPostgres {
	return &DashboardPostgres{db: db}
}

func (r *DashboardPostgres) AdminStats(ctx context.Context) (*models.AdminDashboard, error) {
	d := &models.AdminDashboard{CoursesByStatus: map[string]int{
		models.CourseStatusDraft:     0,
		models.CourseStatusPublished: 0,
		models.CourseStatusArchived:  0,
	}}

	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM courses GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		d.CoursesByStatus[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = r.db.QueryRow(ctx, `
        SELECT
            (SELECT COUNT(*) FROM students),
            (SELECT COUNT(*) FROM course_ratings WHERE status = 'pending'),
            (SELECT COUNT(*) FROM transactions WHERE status = 'pending'),
            (SELECT COUNT(*) FROM payments WHERE status = 'pending'),
            (SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE status IN ('approved', 'verified'))
              + (SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status = 'verified')
    `).Scan(&d.Students, &d.PendingRatings, &d.PendingTransactions, &d.PendingPayments, &d.ApprovedRevenue)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *DashboardPostgres) StudentRatingCounts(ctx context.Context, studentID uuid.UUID) (map[string]int, error) {
	counts := map[string]int{
		models.RatingStatusPending:  0,
		models.RatingStatusApproved: 0,
		models.RatingStatusRejected: 0,
	}
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM course_ratings WHERE student_id = $1 GROUP BY status`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
