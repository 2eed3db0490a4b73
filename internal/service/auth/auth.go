package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

const (
	minPasswordLen = 6
	maxPasswordLen = 64
)

type userRepo interface {
	CreateUser(ctx context.Context, user models.User, student *models.Student) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	HasUserWithRole(ctx context.Context, role string) (bool, error)
}

type AuthService struct {
	log        logger.Log
	jwtManager *JWTManager
	userRepo   userRepo
}

func NewAuthService(l logger.Log, manager *JWTManager, repo userRepo) *AuthService {
	return &AuthService{
		log:        l,
		jwtManager: manager,
		userRepo:   repo,
	}
}

type Registration struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

func (s *AuthService) RegisterStudent(ctx context.Context, r Registration) (*models.User, error) {
	if len(r.Password) < minPasswordLen || len(r.Password) > maxPasswordLen {
		return nil, app_errors.ErrPasswordLength
	}
	hash, err := hashPassword(r.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:     strings.TrimSpace(r.Name),
		Email:    strings.ToLower(strings.TrimSpace(r.Email)),
		Password: hash,
		Roles:    []string{models.StudentRole},
	}
	created, err := s.userRepo.CreateUser(ctx, user, &models.Student{Phone: r.Phone})
	if err != nil {
		return nil, err
	}
	s.log.Info("student registered", "user_id", created.ID)
	return created, nil
}

// AdminLogin returns a bearer token for a user holding the admin role.
func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (string, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}
	if !user.HasRole(models.AdminRole) {
		return "", app_errors.ErrNotAdmin
	}
	return s.jwtManager.Generate(user.ID, user.Roles)
}

// StudentLogin returns the cookie token and the user.
func (s *AuthService) StudentLogin(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	if !user.HasRole(models.StudentRole) {
		return "", nil, app_errors.ErrInvalidCredentials
	}
	token, err := s.jwtManager.Generate(user.ID, user.Roles)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.UserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, app_errors.ErrUserNotFound) {
			return nil, app_errors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !checkPasswordHash(password, user.Password) {
		return nil, app_errors.ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) AccessClaims(_ context.Context, token string) (userID uuid.UUID, roles []string, err error) {
	claims, err := s.jwtManager.AccessClaims(token)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return claims.UserID, claims.Roles, nil
}

func (s *AuthService) Me(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.userRepo.UserByID(ctx, id)
}

func (s *AuthService) TokenTTLSeconds() int {
	return int(s.jwtManager.TTL().Seconds())
}

// BootstrapAdmin creates the first admin when none exists. Empty credentials disable it.
func (s *AuthService) BootstrapAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	exists, err := s.userRepo.HasUserWithRole(ctx, models.AdminRole)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return app_errors.ErrPasswordLength
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	admin, err := s.userRepo.CreateUser(ctx, models.User{
		Name:     "Administrator",
		Email:    strings.ToLower(email),
		Password: hash,
		Roles:    []string{models.AdminRole},
	}, nil)
	if err != nil {
		return err
	}
	s.log.Info("bootstrap admin created", "user_id", admin.ID)
	return nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
