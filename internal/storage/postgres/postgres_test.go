package postgres

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// newTestStorage migrates a throwaway schema on TEST_POSTGRES_DSN and drops it
// when the test ends. Tests skip when the variable is unset.
func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	schema := "iicpas_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	admin, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)

	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)

	s := &Storage{Pool: pool}
	t.Cleanup(func() {
		s.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, _ = admin.Exec(ctx, "DROP SCHEMA "+schema+" CASCADE")
		admin.Close()
	})
	require.NoError(t, s.Migrate(ctx))
	return s
}

func insertStudent(t *testing.T, s *Storage, name string) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	id := uuid.New()
	_, err := s.Pool.Exec(ctx, `INSERT INTO users (id, name, email, password) VALUES ($1, $2, $3, 'x')`,
		id, name, fmt.Sprintf("%s@example.com", id))
	require.NoError(t, err)
	_, err = s.Pool.Exec(ctx, `INSERT INTO students (user_id) VALUES ($1)`, id)
	require.NoError(t, err)
	return id
}

func insertCourse(t *testing.T, s *Storage, title string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := s.Pool.Exec(context.Background(), `
        INSERT INTO courses (id, title, slug, price, status) VALUES ($1, $2, $3, 1000, 'published')
    `, id, title, id.String())
	require.NoError(t, err)
	return id
}

func countEnrollments(t *testing.T, s *Storage, studentID uuid.UUID) int {
	t.Helper()
	var n int
	err := s.Pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM enrollments WHERE student_id = $1`, studentID).Scan(&n)
	require.NoError(t, err)
	return n
}
