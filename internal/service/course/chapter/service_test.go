package chapter

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

type fakeStore struct {
	courses  map[uuid.UUID]models.Course
	chapters []models.Chapter
	swaps    int
}

func (f *fakeStore) CreateChapter(_ context.Context, ch models.Chapter) (*models.Chapter, error) {
	ch.ID = uuid.New()
	if ch.Status == "" {
		ch.Status = models.ChapterStatusActive
	}
	ch.ChapterOrder = len(f.chapters) + 1
	f.chapters = append(f.chapters, ch)
	return &ch, nil
}

func (f *fakeStore) ChapterByID(_ context.Context, id uuid.UUID) (*models.Chapter, error) {
	for _, ch := range f.chapters {
		if ch.ID == id {
			return &ch, nil
		}
	}
	return nil, app_errors.ErrChapterNotFound
}

func (f *fakeStore) UpdateChapter(ctx context.Context, id uuid.UUID, title, status *string) (*models.Chapter, error) {
	for i := range f.chapters {
		if f.chapters[i].ID == id {
			if title != nil {
				f.chapters[i].Title = *title
			}
			if status != nil {
				f.chapters[i].Status = *status
			}
			return &f.chapters[i], nil
		}
	}
	return nil, app_errors.ErrChapterNotFound
}

func (f *fakeStore) DeleteChapter(context.Context, uuid.UUID) error { return nil }

func (f *fakeStore) SwapChapters(context.Context, uuid.UUID, uuid.UUID) error {
	f.swaps++
	return nil
}

func (f *fakeStore) CreateTopic(_ context.Context, t models.Topic) (*models.Topic, error) {
	t.ID = uuid.New()
	return &t, nil
}

func (f *fakeStore) DeleteTopic(context.Context, uuid.UUID) error { return nil }

func (f *fakeStore) CourseChapters(_ context.Context, courseID uuid.UUID) ([]models.Chapter, error) {
	out := []models.Chapter{}
	for _, ch := range f.chapters {
		if ch.CourseID == courseID {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (f *fakeStore) CourseByID(_ context.Context, id uuid.UUID) (*models.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, app_errors.ErrCourseNotFound
	}
	return &c, nil
}

func setup(status string) (*ChapterService, *fakeStore, uuid.UUID) {
	courseID := uuid.New()
	store := &fakeStore{courses: map[uuid.UUID]models.Course{courseID: {ID: courseID, Status: status}}}
	return NewChapterService(logger.Discard(), store, store), store, courseID
}

func TestCourseChaptersHidesInactive(t *testing.T) {
	svc, _, courseID := setup(models.CourseStatusPublished)
	ctx := context.Background()

	first, err := svc.CreateChapter(ctx, models.Chapter{CourseID: courseID, Title: "  Basics "})
	require.NoError(t, err)
	assert.Equal(t, "Basics", first.Title)
	second, err := svc.CreateChapter(ctx, models.Chapter{CourseID: courseID, Title: "Returns"})
	require.NoError(t, err)

	inactive := models.ChapterStatusInactive
	_, err = svc.UpdateChapter(ctx, second.ID, nil, &inactive)
	require.NoError(t, err)

	public, err := svc.CourseChapters(ctx, courseID, false)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, first.ID, public[0].ID)

	all, err := svc.CourseChapters(ctx, courseID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCourseChaptersOfDraftCourse(t *testing.T) {
	svc, _, courseID := setup(models.CourseStatusDraft)
	ctx := context.Background()

	_, err := svc.CourseChapters(ctx, courseID, false)
	assert.ErrorIs(t, err, app_errors.ErrCourseNotFound)

	_, err = svc.CourseChapters(ctx, courseID, true)
	assert.NoError(t, err)
}

func TestChapterStatusAndSwap(t *testing.T) {
	svc, store, courseID := setup(models.CourseStatusPublished)
	ctx := context.Background()

	_, err := svc.CreateChapter(ctx, models.Chapter{CourseID: courseID, Status: "hidden"})
	assert.ErrorIs(t, err, app_errors.ErrInvalidStatus)

	bad := "deleted"
	_, err = svc.UpdateChapter(ctx, uuid.New(), nil, &bad)
	assert.ErrorIs(t, err, app_errors.ErrInvalidStatus)

	id := uuid.New()
	require.NoError(t, svc.SwapChapters(ctx, id, id))
	assert.Equal(t, 0, store.swaps)
	require.NoError(t, svc.SwapChapters(ctx, id, uuid.New()))
	assert.Equal(t, 1, store.swaps)
}
