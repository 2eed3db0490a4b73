package course

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

type fakeCourses struct {
	byID map[uuid.UUID]*models.Course
}

func (f *fakeCourses) NewCourse(_ context.Context, c *models.Course) error {
	for _, existing := range f.byID {
		if existing.Slug == c.Slug {
			return app_errors.ErrCourseExists
		}
	}
	c.ID = uuid.New()
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCourses) CourseByID(_ context.Context, id uuid.UUID) (*models.Course, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, app_errors.ErrCourseNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCourses) CourseBySlug(_ context.Context, slug string) (*models.Course, error) {
	for _, c := range f.byID {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, app_errors.ErrCourseNotFound
}

func (f *fakeCourses) ListCourses(_ context.Context, flt models.CourseFilter) ([]models.Course, int, error) {
	out := []models.Course{}
	for _, c := range f.byID {
		if flt.Status == "" || c.Status == flt.Status {
			out = append(out, *c)
		}
	}
	return out, len(out), nil
}

func (f *fakeCourses) CoursesByIDs(_ context.Context, ids []uuid.UUID) ([]models.Course, error) {
	out := []models.Course{}
	for _, id := range ids {
		if c, ok := f.byID[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCourses) UpdateCourse(ctx context.Context, id uuid.UUID, u models.CourseUpdate) (*models.Course, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, app_errors.ErrCourseNotFound
	}
	if u.Title != nil {
		c.Title = *u.Title
	}
	if u.Price != nil {
		c.Price = *u.Price
	}
	if u.Discount != nil {
		c.Discount = *u.Discount
	}
	return f.CourseByID(ctx, id)
}

func (f *fakeCourses) DeleteCourse(_ context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeCourses) ChangeStatus(_ context.Context, id uuid.UUID, status string) error {
	c, ok := f.byID[id]
	if !ok {
		return app_errors.ErrCourseNotFound
	}
	c.Status = status
	return nil
}

func (f *fakeCourses) SetLogo(_ context.Context, id uuid.UUID, key string) error {
	f.byID[id].LogoObjectKey = key
	return nil
}

type fakeSearch struct {
	indexed map[uuid.UUID]bool
	fail    bool
}

func (f *fakeSearch) Index(_ context.Context, c models.Course) error {
	f.indexed[c.ID] = true
	return nil
}

func (f *fakeSearch) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.indexed, id)
	return nil
}

func (f *fakeSearch) Search(_ context.Context, _, _ string, _, _ int) ([]uuid.UUID, int, error) {
	if f.fail {
		return nil, 0, errors.New("cluster unavailable")
	}
	ids := []uuid.UUID{}
	for id := range f.indexed {
		ids = append(ids, id)
	}
	return ids, len(ids), nil
}

type fakeLogos struct {
	objects map[string][]byte
}

func (f *fakeLogos) GetLogoURL(_ context.Context, key string) (string, error) {
	return "https://minio/" + key, nil
}

func (f *fakeLogos) UploadLogo(_ context.Context, courseID uuid.UUID, filename string, r io.Reader, _ int64, _ string) (string, error) {
	data, _ := io.ReadAll(r)
	key := courseID.String() + "/" + filename
	f.objects[key] = data
	return key, nil
}

func (f *fakeLogos) DeleteLogo(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func setup() (*CourseService, *fakeCourses, *fakeSearch, *fakeLogos) {
	courses := &fakeCourses{byID: map[uuid.UUID]*models.Course{}}
	search := &fakeSearch{indexed: map[uuid.UUID]bool{}}
	logos := &fakeLogos{objects: map[string][]byte{}}
	return NewCourseService(logger.Discard(), courses, search, logos, 1<<20), courses, search, logos
}

func TestCreateCourseDefaults(t *testing.T) {
	svc, _, search, _ := setup()
	ctx := context.Background()

	c, err := svc.CreateCourse(ctx, models.Course{Title: "  Income Tax: Basics ", Price: 1000, Discount: 10})
	require.NoError(t, err)
	assert.Equal(t, "income-tax-basics", c.Slug)
	assert.Equal(t, models.CourseStatusDraft, c.Status)
	assert.Equal(t, models.LevelBeginner, c.Level)
	assert.Equal(t, 900.0, c.EffectivePrice())
	assert.False(t, search.indexed[c.ID])

	_, err = svc.CreateCourse(ctx, models.Course{Title: "Income Tax Basics"})
	assert.ErrorIs(t, err, app_errors.ErrCourseExists)

	_, err = svc.CreateCourse(ctx, models.Course{Title: "x", Discount: 120})
	assert.ErrorIs(t, err, app_errors.ErrInvalidDiscount)

	_, err = svc.CreateCourse(ctx, models.Course{Title: "y", Level: "expert"})
	assert.ErrorIs(t, err, app_errors.ErrInvalidLevel)
}

func TestChangeStatusSyncsIndex(t *testing.T) {
	svc, _, search, _ := setup()
	ctx := context.Background()

	c, err := svc.CreateCourse(ctx, models.Course{Title: "Payroll"})
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, c.ID, models.CourseStatusPublished)
	require.NoError(t, err)
	assert.True(t, search.indexed[c.ID])

	_, err = svc.ChangeStatus(ctx, c.ID, models.CourseStatusArchived)
	require.NoError(t, err)
	assert.False(t, search.indexed[c.ID])

	_, err = svc.ChangeStatus(ctx, c.ID, "hidden")
	assert.ErrorIs(t, err, app_errors.ErrInvalidStatus)
}

func TestPublishedCoursesSearchFallback(t *testing.T) {
	svc, _, search, _ := setup()
	ctx := context.Background()

	pub, err := svc.CreateCourse(ctx, models.Course{Title: "Tally", Status: models.CourseStatusPublished})
	require.NoError(t, err)
	_, err = svc.CreateCourse(ctx, models.Course{Title: "Draft course"})
	require.NoError(t, err)

	list, total, err := svc.PublishedCourses(ctx, models.CourseFilter{Query: "tally"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, pub.ID, list[0].ID)

	search.fail = true
	list, _, err = svc.PublishedCourses(ctx, models.CourseFilter{Query: "tally"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, pub.ID, list[0].ID)

	_, err = svc.PublishedCourseBySlug(ctx, "draft-course")
	assert.ErrorIs(t, err, app_errors.ErrCourseNotFound)
}

func pngBytes(t *testing.T) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func TestUploadCourseLogo(t *testing.T) {
	svc, courses, _, logos := setup()
	ctx := context.Background()
	c, err := svc.CreateCourse(ctx, models.Course{Title: "Audit"})
	require.NoError(t, err)

	_, err = svc.UploadCourseLogo(ctx, c.ID, "logo.txt", bytes.NewReader([]byte("plain text")))
	assert.ErrorIs(t, err, app_errors.ErrNotImage)

	_, err = svc.UploadCourseLogo(ctx, c.ID, "big.png", bytes.NewReader(make([]byte, 2<<20)))
	assert.ErrorIs(t, err, app_errors.ErrFileSize)

	url, err := svc.UploadCourseLogo(ctx, c.ID, "first.png", bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)
	assert.Contains(t, url, "first.png")

	_, err = svc.UploadCourseLogo(ctx, c.ID, "second.png", bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)
	assert.Len(t, logos.objects, 1)
	assert.Contains(t, courses.byID[c.ID].LogoObjectKey, "second.png")
}
