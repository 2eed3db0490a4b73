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

type UserPostgres struct {
	db *pgxpool.Pool
}

func NewUserPostgres(db *pgxpool.Pool) *UserPostgres {
	return &UserPostgres{db: db}
}

const userSelect = `
		SELECT u.id, u.name, u.email, u.password, u.created_at,
		       array_remove(array_agg(r.name), NULL)
		FROM users u
		LEFT JOIN user_roles ur ON u.id = ur.user_id
		LEFT JOIN roles r ON ur.role_id = r.id
`

func (r *UserPostgres) scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.CreatedAt, &user.Roles)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserPostgres) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := userSelect + ` WHERE u.id = $1 GROUP BY u.id`
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *UserPostgres) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := userSelect + ` WHERE lower(u.email) = lower($1) GROUP BY u.id`
	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *UserPostgres) HasUserWithRole(ctx context.Context, role string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM user_roles ur JOIN roles r ON r.id = ur.role_id WHERE r.name = $1
		)
	`, role).Scan(&exists)
	return exists, err
}

// CreateUser inserts the user with its roles. A non-nil student also gets a profile row.
func (r *UserPostgres) CreateUser(ctx context.Context, user models.User, student *models.Student) (*models.User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now().UTC()

	queryUser := `INSERT INTO users (id, name, email, password, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err = tx.Exec(ctx, queryUser, user.ID, user.Name, user.Email, user.Password, user.CreatedAt); err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return nil, app_errors.ErrUserExists
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	queryRole := `SELECT id FROM roles WHERE name = $1`
	insertUserRole := `INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)`
	for _, roleName := range user.Roles {
		var roleID int
		if err = tx.QueryRow(ctx, queryRole, roleName).Scan(&roleID); err != nil {
			return nil, fmt.Errorf("role %q: %w", roleName, err)
		}
		if _, err = tx.Exec(ctx, insertUserRole, user.ID, roleID); err != nil {
			return nil, err
		}
	}

	if student != nil {
		_, err = tx.Exec(ctx, `
			INSERT INTO students (user_id, phone, address, qualification, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, user.ID, student.Phone, student.Address, student.Qualification, user.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to insert student: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &user, nil
}
