package postgres

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
)

func TestConcurrentAppendsGetDistinctOrders(t *testing.T) {
	s := newTestStorage(t)
	repo := NewChapterPostgres(s.Pool)
	ctx := context.Background()
	course := insertCourse(t, s, "Payroll")

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.CreateChapter(ctx, models.Chapter{CourseID: course, Title: fmt.Sprintf("Chapter %d", i)})
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	chapters, err := repo.CourseChapters(ctx, course)
	require.NoError(t, err)
	require.Len(t, chapters, n)
	for i, ch := range chapters {
		assert.Equal(t, i+1, ch.ChapterOrder)
	}

	errs = make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.CreateTopic(ctx, models.Topic{ChapterID: chapters[0].ID, Title: fmt.Sprintf("Topic %d", i)})
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	chapters, err = repo.CourseChapters(ctx, course)
	require.NoError(t, err)
	require.Len(t, chapters[0].Topics, n)
	for i, tp := range chapters[0].Topics {
		assert.Equal(t, i+1, tp.TopicOrder)
	}
}

func TestChapterOrderEdits(t *testing.T) {
	s := newTestStorage(t)
	repo := NewChapterPostgres(s.Pool)
	ctx := context.Background()
	course := insertCourse(t, s, "Costing")

	first, err := repo.CreateChapter(ctx, models.Chapter{CourseID: course, Title: "Intro"})
	require.NoError(t, err)
	second, err := repo.CreateChapter(ctx, models.Chapter{CourseID: course, Title: "Basics"})
	require.NoError(t, err)
	inserted, err := repo.CreateChapter(ctx, models.Chapter{CourseID: course, Title: "Preface", ChapterOrder: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted.ChapterOrder)

	require.NoError(t, repo.SwapChapters(ctx, first.ID, second.ID))
	require.NoError(t, repo.DeleteChapter(ctx, inserted.ID))

	chapters, err := repo.CourseChapters(ctx, course)
	require.NoError(t, err)
	require.Len(t, chapters, 2)
	assert.Equal(t, second.ID, chapters[0].ID)
	assert.Equal(t, 1, chapters[0].ChapterOrder)
	assert.Equal(t, first.ID, chapters[1].ID)
	assert.Equal(t, 2, chapters[1].ChapterOrder)

	_, err = repo.CreateChapter(ctx, models.Chapter{CourseID: uuid.New(), Title: "Orphan"})
	assert.ErrorIs(t, err, app_errors.ErrCourseNotFound)
	_, err = repo.CreateTopic(ctx, models.Topic{ChapterID: uuid.New(), Title: "Orphan"})
	assert.ErrorIs(t, err, app_errors.ErrChapterNotFound)
	assert.ErrorIs(t, repo.DeleteChapter(ctx, uuid.New()), app_errors.ErrChapterNotFound)
}
