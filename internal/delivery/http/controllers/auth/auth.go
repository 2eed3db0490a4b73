package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/IICPAS/IICPAS-sub003/internal/config"
	"github.com/IICPAS/IICPAS-sub003/internal/delivery/http/controllers"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
	authservice "github.com/IICPAS/IICPAS-sub003/internal/service/auth"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

type AuthService interface {
	RegisterStudent(ctx context.Context, r authservice.Registration) (*models.User, error)
	AdminLogin(ctx context.Context, email, password string) (string, error)
	StudentLogin(ctx context.Context, email, password string) (string, *models.User, error)
	Me(ctx context.Context, id uuid.UUID) (*models.User, error)
	TokenTTLSeconds() int
}

type AuthHandler struct {
	log     logger.Log
	service AuthService
	cookie  config.Cookie
}

func NewAuthHandler(l logger.Log, s AuthService, cookie config.Cookie) *AuthHandler {
	return &AuthHandler{
		log:     l,
		service: s,
		cookie:  cookie,
	}
}

type userResponse struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID.String(), Name: u.Name, Email: u.Email, Roles: u.Roles}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input registerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.BadRequest(c, err)
		return
	}

	user, err := h.service.RegisterStudent(c.Request.Context(), authservice.Registration{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Phone:    input.Phone,
	})
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "registration success", "user": newUserResponse(user)})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var input loginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.BadRequest(c, err)
		return
	}

	token, err := h.service.AdminLogin(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *AuthHandler) StudentLogin(c *gin.Context) {
	var input loginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.BadRequest(c, err)
		return
	}

	token, user, err := h.service.StudentLogin(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	h.setCookie(c, token, h.service.TokenTTLSeconds())
	c.JSON(http.StatusOK, gin.H{"message": "login success", "user": newUserResponse(user)})
}

func (h *AuthHandler) StudentLogout(c *gin.Context) {
	h.setCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", h.cookie.Domain, h.cookie.Secure, true)
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := controllers.CurrentUser(c)
	if !ok {
		return
	}
	user, err := h.service.Me(c.Request.Context(), userID)
	if err != nil {
		controllers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}
