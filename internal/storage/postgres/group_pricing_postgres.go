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

type GroupPricingPostgres struct {
	db *pgxpool.Pool
}

func NewGroupPricingPostgres(db *pgxpool.Pool) *GroupPricingPostgres {
	return &GroupPricingPostgres{db: db}
}

const groupPricingColumns = `id, title, level, course_ids, pricing, created_at, updated_at`

func scanGroupPricing(row pgx.Row) (*models.GroupPricing, error) {
	var g models.GroupPricing
	err := row.Scan(&g.ID, &g.Title, &g.Level, &g.CourseIDs, &g.Pricing, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrGroupPricingNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *GroupPricingPostgres) CreateGroupPricing(ctx context.Context, g models.GroupPricing) (*models.GroupPricing, error) {
	now := time.Now().UTC()
	g.ID = uuid.New()
	g.CreatedAt = now
	g.UpdatedAt = now
	_, err := r.db.Exec(ctx, `
        INSERT INTO group_pricings (`+groupPricingColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, g.ID, g.Title, g.Level, g.CourseIDs, g.Pricing, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GroupPricingPostgres) GroupPricingByID(ctx context.Context, id uuid.UUID) (*models.GroupPricing, error) {
	return scanGroupPricing(r.db.QueryRow(ctx, `SELECT `+groupPricingColumns+` FROM group_pricings WHERE id = $1`, id))
}

func (r *GroupPricingPostgres) ListGroupPricing(ctx context.Context) ([]models.GroupPricing, error) {
	rows, err := r.db.Query(ctx, `SELECT `+groupPricingColumns+` FROM group_pricings ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]models.GroupPricing, 0)
	for rows.Next() {
		g, err := scanGroupPricing(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *g)
	}
	return list, rows.Err()
}

func (r *GroupPricingPostgres) UpdateGroupPricing(ctx context.Context, g models.GroupPricing) (*models.GroupPricing, error) {
	g.UpdatedAt = time.Now().UTC()
	err := r.db.QueryRow(ctx, `
        UPDATE group_pricings
           SET title = $2, level = $3, course_ids = $4, pricing = $5, updated_at = $6
         WHERE id = $1
     RETURNING created_at
    `, g.ID, g.Title, g.Level, g.CourseIDs, g.Pricing, g.UpdatedAt).Scan(&g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrGroupPricingNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *GroupPricingPostgres) DeleteGroupPricing(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM group_pricings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrGroupPricingNotFound
	}
	return nil
}
