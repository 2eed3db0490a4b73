package transaction

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
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
	txservice "github.com/IICPAS/IICPAS-sub003/internal/service/transaction"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

type fakeTransactions struct {
	byKey     map[string]*models.Transaction
	submitted []txservice.Submission
	proof     []byte
	statusErr error
}

func (f *fakeTransactions) Submit(_ context.Context, sub txservice.Submission) (*models.Transaction, bool, error) {
	if t, ok := f.byKey[sub.IdempotencyKey]; ok && sub.IdempotencyKey != "" {
		return t, true, nil
	}
	data, err := io.ReadAll(sub.Screenshot)
	if err != nil {
		return nil, false, err
	}
	f.proof = data
	f.submitted = append(f.submitted, sub)
	t := &models.Transaction{
		ID:          uuid.New(),
		StudentID:   sub.StudentID,
		CourseID:    sub.CourseID,
		SessionType: sub.SessionType,
		Amount:      sub.Amount,
		Status:      models.TxStatusPending,
	}
	if sub.IdempotencyKey != "" {
		f.byKey[sub.IdempotencyKey] = t
	}
	return t, false, nil
}

func (f *fakeTransactions) UpdateStatus(_ context.Context, id uuid.UUID, status string, _ uuid.UUID, _ string) (*models.Transaction, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &models.Transaction{ID: id, Status: status}, nil
}

func (f *fakeTransactions) List(context.Context, string) ([]models.Transaction, error) {
	return []models.Transaction{}, nil
}

func (f *fakeTransactions) StudentTransactions(context.Context, uuid.UUID, string) ([]models.Transaction, error) {
	return []models.Transaction{}, nil
}

func (f *fakeTransactions) ProofURL(context.Context, uuid.UUID) (string, error) {
	return "https://proofs.example/object", nil
}

func newRouter(t *testing.T) (*gin.Engine, *fakeTransactions) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, controllers.RegisterValidators())

	svc := &fakeTransactions{byKey: map[string]*models.Transaction{}}
	h := NewHandler(logger.Discard(), svc)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.ClientIDCtx, uuid.New()) })
	r.POST("/submit-payment", h.SubmitPayment)
	r.GET("/admin/:id/proof", h.Proof)
	r.PATCH("/admin/update-status/:id", h.UpdateStatus)
	return r, svc
}

func multipartBody(t *testing.T, fields map[string]string, screenshot []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if screenshot != nil {
		fw, err := mw.CreateFormFile("screenshot", "receipt.png")
		require.NoError(t, err)
		_, err = fw.Write(screenshot)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func submit(t *testing.T, r http.Handler, fields map[string]string, screenshot []byte, key string) *httptest.ResponseRecorder {
	body, contentType := multipartBody(t, fields, screenshot)
	req := httptest.NewRequest(http.MethodPost, "/submit-payment", body)
	req.Header.Set("Content-Type", contentType)
	if key != "" {
		req.Header.Set(controllers.IdempotencyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubmitPaymentIdempotent(t *testing.T) {
	r, svc := newRouter(t)
	fields := map[string]string{
		"course_id":    uuid.NewString(),
		"session_type": models.SessionRecorded,
		"amount":       "4500.50",
	}

	w := submit(t, r, fields, []byte("png-bytes"), "key-1")
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, svc.submitted, 1)
	assert.Equal(t, 4500.50, svc.submitted[0].Amount)
	assert.Equal(t, []byte("png-bytes"), svc.proof)

	var first struct {
		Transaction models.Transaction `json:"transaction"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))

	w = submit(t, r, fields, []byte("png-bytes"), "key-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, svc.submitted, 1)

	var second struct {
		Transaction models.Transaction `json:"transaction"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, first.Transaction.ID, second.Transaction.ID)
}

func TestSubmitPaymentValidation(t *testing.T) {
	r, svc := newRouter(t)
	valid := func() map[string]string {
		return map[string]string{
			"course_id":    uuid.NewString(),
			"session_type": models.SessionLive,
			"amount":       "100",
		}
	}

	fields := valid()
	fields["amount"] = "ten"
	assert.Equal(t, http.StatusBadRequest, submit(t, r, fields, []byte("x"), "").Code)

	fields = valid()
	fields["session_type"] = "center"
	assert.Equal(t, http.StatusBadRequest, submit(t, r, fields, []byte("x"), "").Code)

	fields = valid()
	fields["course_id"] = "abc"
	assert.Equal(t, http.StatusBadRequest, submit(t, r, fields, []byte("x"), "").Code)

	assert.Equal(t, http.StatusBadRequest, submit(t, r, valid(), nil, "").Code)
	assert.Empty(t, svc.submitted)
}

func TestUpdateStatus(t *testing.T) {
	r, svc := newRouter(t)
	id := uuid.New()

	req := httptest.NewRequest(http.MethodPatch, "/admin/update-status/"+id.String(), bytes.NewBufferString(`{"status":"approved"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	svc.statusErr = app_errors.ErrInvalidTransition
	req = httptest.NewRequest(http.MethodPatch, "/admin/update-status/"+id.String(), bytes.NewBufferString(`{"status":"pending"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProofURL(t *testing.T) {
	r, _ := newRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/admin/"+uuid.NewString()+"/proof", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"url":"https://proofs.example/object"}`, w.Body.String())
}
