package grouppricing

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/internal/delivery/http/controllers"
	"github.com/IICPAS/IICPAS-sub003/internal/delivery/http/controllers/middleware"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

type fakeGroups struct {
	enrollErr error
	courses   []uuid.UUID
}

func (f *fakeGroups) Create(_ context.Context, g models.GroupPricing) (*models.GroupPricing, error) {
	g.ID = uuid.New()
	return &g, nil
}

func (f *fakeGroups) Update(_ context.Context, g models.GroupPricing) (*models.GroupPricing, error) {
	return &g, nil
}

func (f *fakeGroups) Delete(context.Context, uuid.UUID) error { return nil }

func (f *fakeGroups) ByID(_ context.Context, id uuid.UUID) (*models.GroupPricing, error) {
	return nil, app_errors.ErrGroupPricingNotFound
}

func (f *fakeGroups) List(context.Context) ([]models.GroupPricing, error) {
	return []models.GroupPricing{}, nil
}

func (f *fakeGroups) Enroll(_ context.Context, _, groupID uuid.UUID, _ string) (*models.GroupPricing, error) {
	if f.enrollErr != nil {
		return nil, f.enrollErr
	}
	return &models.GroupPricing{ID: groupID, CourseIDs: f.courses}, nil
}

func newRouter(t *testing.T, svc *fakeGroups) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, controllers.RegisterValidators())

	h := NewHandler(logger.Discard(), svc)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.ClientIDCtx, uuid.New()) })
	r.POST("/group-pricing", h.Create)
	r.GET("/group-pricing/:id", h.ByID)
	r.POST("/group-pricing/:id/enroll", h.Enroll)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestEnroll(t *testing.T) {
	courseID := uuid.New()
	r := newRouter(t, &fakeGroups{courses: []uuid.UUID{courseID}})

	w := do(r, http.MethodPost, "/group-pricing/"+uuid.NewString()+"/enroll", `{"session_type":"live"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		SessionType string      `json:"session_type"`
		CourseIDs   []uuid.UUID `json:"course_ids"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "live", body.SessionType)
	assert.Equal(t, []uuid.UUID{courseID}, body.CourseIDs)
}

func TestEnrollConflictListsTitles(t *testing.T) {
	conflict := &app_errors.EnrollmentConflictError{Titles: []string{"GST Basics", "Tally Prime"}}
	r := newRouter(t, &fakeGroups{enrollErr: conflict})

	w := do(r, http.MethodPost, "/group-pricing/"+uuid.NewString()+"/enroll", `{"session_type":"recorded"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Message   string   `json:"message"`
		Conflicts []string `json:"conflicting_courses"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Message)
	assert.Equal(t, []string{"GST Basics", "Tally Prime"}, body.Conflicts)
}

func TestEnrollRejectsBadInput(t *testing.T) {
	r := newRouter(t, &fakeGroups{})

	w := do(r, http.MethodPost, "/group-pricing/"+uuid.NewString()+"/enroll", `{"session_type":"center"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/group-pricing/not-a-uuid/enroll", `{"session_type":"live"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrollMissingPackage(t *testing.T) {
	r := newRouter(t, &fakeGroups{enrollErr: app_errors.ErrGroupPricingNotFound})

	w := do(r, http.MethodPost, "/group-pricing/"+uuid.NewString()+"/enroll", `{"session_type":"live"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateRequiresCourses(t *testing.T) {
	r := newRouter(t, &fakeGroups{})

	w := do(r, http.MethodPost, "/group-pricing", `{"title":"Accounts Pack","level":"beginner","course_ids":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/group-pricing", `{"title":"Accounts Pack","level":"beginner","course_ids":["`+uuid.NewString()+`"]}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestByIDNotFound(t *testing.T) {
	r := newRouter(t, &fakeGroups{})
	w := do(r, http.MethodGet, "/group-pricing/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
