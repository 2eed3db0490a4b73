package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

const (
	ClientIDCtx    = "client_id"
	ClientRolesCtx = "client_roles"
)

type AuthService interface {
	AccessClaims(ctx context.Context, token string) (userID uuid.UUID, roles []string, err error)
}

type AuthMiddlewareProvider struct {
	log        logger.Log
	service    AuthService
	cookieName string
}

func NewAuthMiddlewareProvider(log logger.Log, s AuthService, cookieName string) *AuthMiddlewareProvider {
	return &AuthMiddlewareProvider{
		log:        log,
		service:    s,
		cookieName: cookieName,
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// AdminAuth accepts only an Authorization bearer token.
func (h *AuthMiddlewareProvider) AdminAuth(c *gin.Context) {
	h.authenticate(c, bearerToken(c))
}

// StudentAuth reads the session cookie and falls back to a bearer token.
func (h *AuthMiddlewareProvider) StudentAuth(c *gin.Context) {
	token, err := c.Cookie(h.cookieName)
	if err != nil || token == "" {
		token = bearerToken(c)
	}
	h.authenticate(c, token)
}

// AnyAuth accepts either credential. Role checks are left to the route.
func (h *AuthMiddlewareProvider) AnyAuth(c *gin.Context) {
	h.StudentAuth(c)
}

func (h *AuthMiddlewareProvider) authenticate(c *gin.Context, token string) {
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	userID, roles, err := h.service.AccessClaims(c.Request.Context(), token)
	if err != nil {
		h.log.Debug("failed to parse token", "error", err)
		if errors.Is(err, app_errors.ErrTokenExpired) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": app_errors.ErrTokenExpired.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	c.Set(ClientIDCtx, userID)
	c.Set(ClientRolesCtx, roles)
	c.Next()
}

// ClientID returns the authenticated user set by the auth middleware.
func ClientID(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := c.Get(ClientIDCtx)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := raw.(uuid.UUID)
	return id, ok
}
