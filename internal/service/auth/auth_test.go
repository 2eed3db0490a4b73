package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

type fakeUserRepo struct {
	users    map[uuid.UUID]models.User
	students map[uuid.UUID]models.Student
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]models.User{}, students: map[uuid.UUID]models.Student{}}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user models.User, student *models.Student) (*models.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, app_errors.ErrUserExists
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	f.users[user.ID] = user
	if student != nil {
		f.students[user.ID] = *student
	}
	return &user, nil
}

func (f *fakeUserRepo) UserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, app_errors.ErrUserNotFound
}

func (f *fakeUserRepo) UserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, app_errors.ErrUserNotFound
	}
	return &u, nil
}

func (f *fakeUserRepo) HasUserWithRole(_ context.Context, role string) (bool, error) {
	for _, u := range f.users {
		if u.HasRole(role) {
			return true, nil
		}
	}
	return false, nil
}

func setup() (*AuthService, *fakeUserRepo) {
	repo := newFakeUserRepo()
	return NewAuthService(logger.Discard(), NewJWTManager("secret", "iicpas", time.Hour), repo), repo
}

func TestRegisterAndLoginStudent(t *testing.T) {
	svc, repo := setup()
	ctx := context.Background()

	user, err := svc.RegisterStudent(ctx, Registration{Name: "Asha", Email: " Asha@Example.com ", Password: "secret1", Phone: "999"})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", user.Email)
	assert.Equal(t, "999", repo.students[user.ID].Phone)

	_, err = svc.RegisterStudent(ctx, Registration{Name: "Asha", Email: "asha@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, app_errors.ErrUserExists)

	token, got, err := svc.StudentLogin(ctx, "asha@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	id, roles, err := svc.AccessClaims(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
	assert.Equal(t, []string{models.StudentRole}, roles)

	_, _, err = svc.StudentLogin(ctx, "asha@example.com", "wrong-pass")
	assert.ErrorIs(t, err, app_errors.ErrInvalidCredentials)

	_, err = svc.AdminLogin(ctx, "asha@example.com", "secret1")
	assert.ErrorIs(t, err, app_errors.ErrNotAdmin)
}

func TestRegisterPasswordLength(t *testing.T) {
	svc, _ := setup()
	for _, pwd := range []string{"12345", strings.Repeat("x", 65)} {
		_, err := svc.RegisterStudent(context.Background(), Registration{Email: "a@b.c", Password: pwd})
		assert.ErrorIs(t, err, app_errors.ErrPasswordLength)
	}
}

func TestBootstrapAdmin(t *testing.T) {
	svc, repo := setup()
	ctx := context.Background()

	require.NoError(t, svc.BootstrapAdmin(ctx, "", ""))
	assert.Empty(t, repo.users)

	require.NoError(t, svc.BootstrapAdmin(ctx, "admin@iicpas.com", "adminpass"))
	require.NoError(t, svc.BootstrapAdmin(ctx, "other@iicpas.com", "adminpass"))
	assert.Len(t, repo.users, 1)

	token, err := svc.AdminLogin(ctx, "ADMIN@iicpas.com", "adminpass")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, _, err = svc.StudentLogin(ctx, "admin@iicpas.com", "adminpass")
	assert.ErrorIs(t, err, app_errors.ErrInvalidCredentials)
}
