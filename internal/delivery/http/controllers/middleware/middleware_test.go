package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

type fakeAuth struct {
	tokens map[string][]string
	ids    map[string]uuid.UUID
}

func (f *fakeAuth) AccessClaims(_ context.Context, token string) (uuid.UUID, []string, error) {
	if token == "expired" {
		return uuid.Nil, nil, app_errors.ErrTokenExpired
	}
	roles, ok := f.tokens[token]
	if !ok {
		return uuid.Nil, nil, app_errors.ErrInvalidCredentials
	}
	return f.ids[token], roles, nil
}

func newRouter() (*gin.Engine, uuid.UUID) {
	gin.SetMode(gin.TestMode)
	student := uuid.New()
	auth := &fakeAuth{
		tokens: map[string][]string{"admin-token": {"admin"}, "student-token": {"student"}},
		ids:    map[string]uuid.UUID{"admin-token": uuid.New(), "student-token": student},
	}
	p := NewAuthMiddlewareProvider(logger.Discard(), auth, "token")

	r := gin.New()
	whoami := func(c *gin.Context) {
		id, _ := ClientID(c)
		c.String(http.StatusOK, id.String())
	}
	r.GET("/admin", p.AdminAuth, RequireRoles("admin"), whoami)
	r.GET("/student", p.StudentAuth, RequireRoles("student"), whoami)
	return r, student
}

func do(r http.Handler, path string, setup func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if setup != nil {
		setup(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminAuth(t *testing.T) {
	r, _ := newRouter()

	assert.Equal(t, http.StatusUnauthorized, do(r, "/admin", nil).Code)

	w := do(r, "/admin", func(req *http.Request) { req.Header.Set("Authorization", "Bearer expired") })
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token expired")

	w = do(r, "/admin", func(req *http.Request) { req.Header.Set("Authorization", "Bearer student-token") })
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, "/admin", func(req *http.Request) { req.AddCookie(&http.Cookie{Name: "token", Value: "admin-token"}) })
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, "/admin", func(req *http.Request) { req.Header.Set("Authorization", "Bearer admin-token") })
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStudentAuthCookieAndBearer(t *testing.T) {
	r, student := newRouter()

	w := do(r, "/student", func(req *http.Request) { req.AddCookie(&http.Cookie{Name: "token", Value: "student-token"}) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, student.String(), w.Body.String())

	w = do(r, "/student", func(req *http.Request) { req.Header.Set("Authorization", "Bearer student-token") })
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, "/student", func(req *http.Request) { req.Header.Set("Authorization", "Bearer garbage") })
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMetricsCountsRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/courses/:course_id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	do(r, "/courses/1", nil)
	do(r, "/courses/2", nil)
	do(r, "/missing", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/courses/:course_id", "GET", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("unmatched", "GET", "404")))
}

func TestRequireRolesWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/bare", RequireRoles("admin"), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/multi", func(c *gin.Context) {
		c.Set(ClientRolesCtx, []string{"student", "center"})
	}, RequireRoles("admin", "center"), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusForbidden, do(r, "/bare", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, "/multi", nil).Code)
}

func TestLoggingEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(LoggingMiddleware(logger.Discard()))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, "/ping", nil)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}
