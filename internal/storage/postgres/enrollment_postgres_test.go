package postgres

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
)

func TestTransactionApprovalEnrollsOnce(t *testing.T) {
	s := newTestStorage(t)
	repo := NewTransactionPostgres(s.Pool)
	ctx := context.Background()
	student := insertStudent(t, s, "Asha")
	adminID := insertStudent(t, s, "Admin")
	course := insertCourse(t, s, "GST Basics")

	created, err := repo.CreateTransaction(ctx, models.Transaction{
		StudentID: student, CourseID: course, SessionType: models.SessionLive, Amount: 1000,
	})
	require.NoError(t, err)

	tx, changed, err := repo.UpdateStatus(ctx, created.ID, models.TxStatusApproved, adminID, "")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.TxStatusApproved, tx.Status)

	_, changed, err = repo.UpdateStatus(ctx, created.ID, models.TxStatusApproved, adminID, "")
	require.NoError(t, err)
	assert.False(t, changed)

	tx, changed, err = repo.UpdateStatus(ctx, created.ID, models.TxStatusVerified, adminID, "")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.TxStatusVerified, tx.Status)

	assert.Equal(t, 1, countEnrollments(t, s, student))
	enrolled, err := NewEnrollmentPostgres(s.Pool).IsEnrolled(ctx, student, course, models.SessionLive)
	require.NoError(t, err)
	assert.True(t, enrolled)

	_, _, err = repo.UpdateStatus(ctx, created.ID, models.TxStatusRejected, adminID, "late")
	assert.Error(t, err)
}

func TestTransactionOpenKey(t *testing.T) {
	s := newTestStorage(t)
	repo := NewTransactionPostgres(s.Pool)
	ctx := context.Background()
	student := insertStudent(t, s, "Ravi")
	course := insertCourse(t, s, "Tally Prime")

	in := models.Transaction{StudentID: student, CourseID: course, SessionType: models.SessionRecorded, Amount: 1000}
	_, err := repo.CreateTransaction(ctx, in)
	require.NoError(t, err)
	_, err = repo.CreateTransaction(ctx, in)
	assert.ErrorIs(t, err, app_errors.ErrTransactionExists)
}

func TestEnrollBundleAllOrNothing(t *testing.T) {
	s := newTestStorage(t)
	repo := NewEnrollmentPostgres(s.Pool)
	ctx := context.Background()
	student := insertStudent(t, s, "Meera")
	a := models.Course{ID: insertCourse(t, s, "Accounts"), Title: "Accounts"}
	b := models.Course{ID: insertCourse(t, s, "Audit"), Title: "Audit"}
	c := models.Course{ID: insertCourse(t, s, "Taxation"), Title: "Taxation"}

	created, err := repo.Enroll(ctx, models.Enrollment{StudentID: student, CourseID: b.ID, SessionType: models.SessionLive, Source: models.SourceAdmin})
	require.NoError(t, err)
	require.True(t, created)

	err = repo.EnrollBundle(ctx, student, []models.Course{a, b, c}, models.SessionRecorded)
	conflict, ok := app_errors.IsEnrollmentConflict(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, []string{"Audit"}, conflict.Titles)
	assert.Equal(t, 1, countEnrollments(t, s, student))

	other := insertStudent(t, s, "Kabir")
	require.NoError(t, repo.EnrollBundle(ctx, other, []models.Course{a, c}, models.SessionRecorded))
	enrollments, err := repo.Enrollments(ctx, other)
	require.NoError(t, err)
	require.Len(t, enrollments, 2)
	for _, e := range enrollments {
		assert.Equal(t, models.SessionRecorded, e.SessionType)
		assert.Equal(t, models.SourceGroupPricing, e.Source)
	}

	err = repo.EnrollBundle(ctx, other, []models.Course{a, c}, models.SessionRecorded)
	_, ok = app_errors.IsEnrollmentConflict(err)
	assert.True(t, ok)
	assert.Equal(t, 2, countEnrollments(t, s, other))

	assert.ErrorIs(t, repo.EnrollBundle(ctx, uuid.New(), []models.Course{a}, models.SessionLive), app_errors.ErrStudentNotFound)
}

func TestEnrollBundleConcurrent(t *testing.T) {
	s := newTestStorage(t)
	repo := NewEnrollmentPostgres(s.Pool)
	ctx := context.Background()
	student := insertStudent(t, s, "Dev")
	courses := []models.Course{
		{ID: insertCourse(t, s, "Costing"), Title: "Costing"},
		{ID: insertCourse(t, s, "Payroll"), Title: "Payroll"},
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, session := range []string{models.SessionRecorded, models.SessionLive} {
		wg.Add(1)
		go func(i int, session string) {
			defer wg.Done()
			errs[i] = repo.EnrollBundle(ctx, student, courses, session)
		}(i, session)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		_, ok := app_errors.IsEnrollmentConflict(err)
		assert.True(t, ok, "got %v", err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 2, countEnrollments(t, s, student))
}
