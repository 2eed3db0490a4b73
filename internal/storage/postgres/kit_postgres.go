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

type KitPostgres struct {
	db *pgxpool.Pool
}

func NewKitPostgres(db *pgxpool.Pool) *KitPostgres {
	return &KitPostgres{db: db}
}

const kitColumns = `id, name, description, price, active, created_at, updated_at`

func scanKit(row pgx.Row) (*models.Kit, error) {
	var k models.Kit
	err := row.Scan(&k.ID, &k.Name, &k.Description, &k.Price, &k.Active, &k.CreatedAt, &k.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrKitNotFound
		}
		return nil, err
	}
	return &k, nil
}

func (r *KitPostgres) CreateKit(ctx context.Context, k models.Kit) (*models.Kit, error) {
	now := time.Now().UTC()
	k.ID = uuid.New()
	k.CreatedAt = now
	k.UpdatedAt = now
	_, err := r.db.Exec(ctx, `INSERT INTO kits (`+kitColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		k.ID, k.Name, k.Description, k.Price, k.Active, k.CreatedAt, k.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func (r *KitPostgres) UpdateKit(ctx context.Context, k models.Kit) (*models.Kit, error) {
	k.UpdatedAt = time.Now().UTC()
	err := r.db.QueryRow(ctx, `
        UPDATE kits SET name = $2, description = $3, price = $4, active = $5, updated_at = $6
         WHERE id = $1
     RETURNING created_at
    `, k.ID, k.Name, k.Description, k.Price, k.Active, k.UpdatedAt).Scan(&k.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrKitNotFound
		}
		return nil, err
	}
	return &k, nil
}

// DeleteKit deactivates the kit. Past orders keep referencing it.
func (r *KitPostgres) DeleteKit(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE kits SET active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrKitNotFound
	}
	return nil
}

func (r *KitPostgres) KitByID(ctx context.Context, id uuid.UUID) (*models.Kit, error) {
	return scanKit(r.db.QueryRow(ctx, `SELECT `+kitColumns+` FROM kits WHERE id = $1`, id))
}

func (r *KitPostgres) ListKits(ctx context.Context, activeOnly bool) ([]models.Kit, error) {
	rows, err := r.db.Query(ctx, `SELECT `+kitColumns+` FROM kits WHERE (NOT $1 OR active) ORDER BY name`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	kits := make([]models.Kit, 0)
	for rows.Next() {
		k, err := scanKit(rows)
		if err != nil {
			return nil, err
		}
		kits = append(kits, *k)
	}
	return kits, rows.Err()
}

func (r *KitPostgres) KitsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Kit, error) {
	rows, err := r.db.Query(ctx, `SELECT `+kitColumns+` FROM kits WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	kits := make(map[uuid.UUID]models.Kit, len(ids))
	for rows.Next() {
		k, err := scanKit(rows)
		if err != nil {
			return nil, err
		}
		kits[k.ID] = *k
	}
	return kits, rows.Err()
}

type KitOrderPostgres struct {
	db *pgxpool.Pool
}

func NewKitOrderPostgres(db *pgxpool.Pool) *KitOrderPostgres {
	return &KitOrderPostgres{db: db}
}

const kitOrderColumns = `
        id, student_id, status, shipping_address, total_quantity, gross_total,
        bulk_discount_percent, discounted_price, combination_discount, payable,
        idempotency_key, created_at, updated_at
`

func scanKitOrder(row pgx.Row) (*models.KitOrder, error) {
	var o models.KitOrder
	err := row.Scan(
		&o.ID, &o.StudentID, &o.Status, &o.ShippingAddress, &o.TotalQuantity, &o.GrossTotal,
		&o.BulkDiscountPercent, &o.DiscountedPrice, &o.CombinationDiscount, &o.Payable,
		&o.IdempotencyKey, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrKitOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *KitOrderPostgres) CreateKitOrder(ctx context.Context, o models.KitOrder) (*models.KitOrder, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	o.ID = uuid.New()
	o.Status = models.KitOrderPendingPayment
	o.CreatedAt = now
	o.UpdatedAt = now

	_, err = tx.Exec(ctx, `INSERT INTO kit_orders (`+kitOrderColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `, o.ID, o.StudentID, o.Status, o.ShippingAddress, o.TotalQuantity, o.GrossTotal,
		o.BulkDiscountPercent, o.DiscountedPrice, o.CombinationDiscount, o.Payable,
		o.IdempotencyKey, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert kit order: %w", err)
	}

	for _, l := range o.Lines {
		_, err = tx.Exec(ctx, `
            INSERT INTO kit_order_items (order_id, kit_id, kit_name, quantity, unit_price)
            VALUES ($1, $2, $3, $4, $5)
        `, o.ID, l.KitID, l.KitName, l.Quantity, l.Price)
		if err != nil {
			return nil, fmt.Errorf("failed to insert kit order item: %w", err)
		}
	}
	if err = saveIdempotencyKey(ctx, tx, o.StudentID, models.IdempotencyScopeKitOrder, o.IdempotencyKey, o.ID); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *KitOrderPostgres) KitOrderByID(ctx context.Context, id uuid.UUID) (*models.KitOrder, error) {
	o, err := scanKitOrder(r.db.QueryRow(ctx, `SELECT `+kitOrderColumns+` FROM kit_orders WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	orders := []models.KitOrder{*o}
	if err := r.attachLines(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *KitOrderPostgres) ListKitOrders(ctx context.Context, studentID *uuid.UUID, status string) ([]models.KitOrder, error) {
	rows, err := r.db.Query(ctx, `SELECT `+kitOrderColumns+` FROM kit_orders
         WHERE ($1::uuid IS NULL OR student_id = $1) AND ($2::text = '' OR status = $2)
         ORDER BY created_at DESC
    `, studentID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]models.KitOrder, 0)
	for rows.Next() {
		o, err := scanKitOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, r.attachLines(ctx, orders)
}

func (r *KitOrderPostgres) attachLines(ctx context.Context, orders []models.KitOrder) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(orders))
	index := make(map[uuid.UUID]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
		orders[i].Lines = []models.KitLine{}
	}

	rows, err := r.db.Query(ctx, `
        SELECT order_id, kit_id, kit_name, quantity, unit_price
          FROM kit_order_items
         WHERE order_id = ANY($1)
         ORDER BY kit_name
    `, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var orderID uuid.UUID
		var l models.KitLine
		if err := rows.Scan(&orderID, &l.KitID, &l.KitName, &l.Quantity, &l.Price); err != nil {
			return err
		}
		i := index[orderID]
		orders[i].Lines = append(orders[i].Lines, l)
	}
	return rows.Err()
}
