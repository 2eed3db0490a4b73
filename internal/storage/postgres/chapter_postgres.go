package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
)

type ChapterPostgres struct {
	db *pgxpool.Pool
}

func NewChapterPostgres(db *pgxpool.Pool) *ChapterPostgres {
	return &ChapterPostgres{db: db}
}

// CreateChapter inserts at chapter.ChapterOrder, or after the last chapter when it is zero.
func (r *ChapterPostgres) CreateChapter(ctx context.Context, chapter models.Chapter) (*models.Chapter, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err = lockCourse(ctx, tx, chapter.CourseID); err != nil {
		return nil, err
	}

	var max int
	err = tx.QueryRow(ctx, `SELECT COALESCE(MAX(chapter_order), 0) FROM chapters WHERE course_id = $1`, chapter.CourseID).Scan(&max)
	if err != nil {
		return nil, fmt.Errorf("failed to get max chapter order: %w", err)
	}
	if chapter.ChapterOrder <= 0 || chapter.ChapterOrder > max {
		chapter.ChapterOrder = max + 1
	} else {
		_, err = tx.Exec(ctx, `
            UPDATE chapters SET chapter_order = chapter_order + 1
             WHERE course_id = $1 AND chapter_order >= $2
        `, chapter.CourseID, chapter.ChapterOrder)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	chapter.ID = uuid.New()
	chapter.CreatedAt = now
	chapter.UpdatedAt = now
	if chapter.Status == "" {
		chapter.Status = models.ChapterStatusActive
	}
	chapter.Topics = []models.Topic{}

	_, err = tx.Exec(ctx, `
    INSERT INTO chapters (
        id, course_id, title, chapter_order, status, created_at, updated_at
    ) VALUES ($1, $2, $3, $4, $5, $6, $7)
    `,
		chapter.ID, chapter.CourseID, chapter.Title, chapter.ChapterOrder,
		chapter.Status, chapter.CreatedAt, chapter.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &chapter, nil
}

func (r *ChapterPostgres) ChapterByID(ctx context.Context, id uuid.UUID) (*models.Chapter, error) {
	var ch models.Chapter
	err := r.db.QueryRow(ctx, `
        SELECT id, course_id, title, chapter_order, status, created_at, updated_at
          FROM chapters
         WHERE id = $1
    `, id).Scan(&ch.ID, &ch.CourseID, &ch.Title, &ch.ChapterOrder, &ch.Status, &ch.CreatedAt, &ch.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrChapterNotFound
		}
		return nil, err
	}
	return &ch, nil
}

func (r *ChapterPostgres) UpdateChapter(ctx context.Context, id uuid.UUID, title, status *string) (*models.Chapter, error) {
	cmdTag, err := r.db.Exec(ctx, `
        UPDATE chapters
           SET title      = COALESCE($2, title),
               status     = COALESCE($3, status),
               updated_at = NOW()
         WHERE id = $1
    `, id, title, status)
	if err != nil {
		return nil, err
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, app_errors.ErrChapterNotFound
	}
	return r.ChapterByID(ctx, id)
}

// DeleteChapter removes the chapter and closes the gap it leaves.
func (r *ChapterPostgres) DeleteChapter(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	courseID, err := chapterCourse(ctx, tx, id)
	if err != nil {
		return err
	}
	if err = lockCourse(ctx, tx, courseID); err != nil {
		return err
	}

	var order int
	err = tx.QueryRow(ctx, `DELETE FROM chapters WHERE id = $1 RETURNING chapter_order`, id).Scan(&order)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return app_errors.ErrChapterNotFound
		}
		return err
	}

	_, err = tx.Exec(ctx, `
        UPDATE chapters SET chapter_order = chapter_order - 1
         WHERE course_id = $1 AND chapter_order > $2
    `, courseID, order)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *ChapterPostgres) SwapChapters(ctx context.Context, firstID, secondID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	courseID, err := chapterCourse(ctx, tx, firstID)
	if err != nil {
		return err
	}
	if err = lockCourse(ctx, tx, courseID); err != nil {
		return err
	}

	var order1, order2 int
	var course1, course2 uuid.UUID
	query := `SELECT course_id, chapter_order FROM chapters WHERE id = $1 FOR UPDATE`
	if err := tx.QueryRow(ctx, query, firstID).Scan(&course1, &order1); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return app_errors.ErrChapterNotFound
		}
		return fmt.Errorf("failed to get order for first chapter: %w", err)
	}
	if err := tx.QueryRow(ctx, query, secondID).Scan(&course2, &order2); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return app_errors.ErrChapterNotFound
		}
		return fmt.Errorf("failed to get order for second chapter: %w", err)
	}
	if course1 != course2 {
		return app_errors.ErrChaptersDifferentCourse
	}

	updateQuery := `UPDATE chapters SET chapter_order = $1, updated_at = NOW() WHERE id = $2`
	if _, err := tx.Exec(ctx, updateQuery, order2, firstID); err != nil {
		return fmt.Errorf("failed to update first chapter order: %w", err)
	}
	if _, err := tx.Exec(ctx, updateQuery, order1, secondID); err != nil {
		return fmt.Errorf("failed to update second chapter order: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *ChapterPostgres) CreateTopic(ctx context.Context, topic models.Topic) (*models.Topic, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err = lockChapter(ctx, tx, topic.ChapterID); err != nil {
		return nil, err
	}

	var max int
	err = tx.QueryRow(ctx, `SELECT COALESCE(MAX(topic_order), 0) FROM topics WHERE chapter_id = $1`, topic.ChapterID).Scan(&max)
	if err != nil {
		return nil, fmt.Errorf("failed to get max topic order: %w", err)
	}
	if topic.TopicOrder <= 0 || topic.TopicOrder > max {
		topic.TopicOrder = max + 1
	} else {
		_, err = tx.Exec(ctx, `
            UPDATE topics SET topic_order = topic_order + 1
             WHERE chapter_id = $1 AND topic_order >= $2
        `, topic.ChapterID, topic.TopicOrder)
		if err != nil {
			return nil, err
		}
	}

	topic.ID = uuid.New()
	topic.CreatedAt = time.Now().UTC()
	_, err = tx.Exec(ctx, `
    INSERT INTO topics (
        id, chapter_id, title, content, video_url, topic_order, created_at
    ) VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, topic.ID, topic.ChapterID, topic.Title, topic.Content, topic.VideoURL, topic.TopicOrder, topic.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *ChapterPostgres) DeleteTopic(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var chapterID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT chapter_id FROM topics WHERE id = $1`, id).Scan(&chapterID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return app_errors.ErrTopicNotFound
		}
		return err
	}
	if err = lockChapter(ctx, tx, chapterID); err != nil {
		return err
	}

	var order int
	err = tx.QueryRow(ctx, `DELETE FROM topics WHERE id = $1 RETURNING topic_order`, id).Scan(&order)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return app_errors.ErrTopicNotFound
		}
		return err
	}

	_, err = tx.Exec(ctx, `
        UPDATE topics SET topic_order = topic_order - 1
         WHERE chapter_id = $1 AND topic_order > $2
    `, chapterID, order)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// CourseChapters returns the chapters of a course in order, each with its ordered topics.
func (r *ChapterPostgres) CourseChapters(ctx context.Context, courseID uuid.UUID) ([]models.Chapter, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, course_id, title, chapter_order, status, created_at, updated_at
        FROM chapters
        WHERE course_id = $1
        ORDER BY chapter_order
    `, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chapters: %w", err)
	}
	defer rows.Close()

	chapters := make([]models.Chapter, 0)
	for rows.Next() {
		var ch models.Chapter
		if err := rows.Scan(&ch.ID, &ch.CourseID, &ch.Title, &ch.ChapterOrder, &ch.Status, &ch.CreatedAt, &ch.UpdatedAt); err != nil {
			return nil, err
		}
		ch.Topics = []models.Topic{}
		chapters = append(chapters, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	topicRows, err := r.db.Query(ctx, `
        SELECT t.id, t.chapter_id, t.title, t.content, t.video_url, t.topic_order, t.created_at
        FROM topics t
        JOIN chapters ch ON ch.id = t.chapter_id
        WHERE ch.course_id = $1
        ORDER BY t.chapter_id, t.topic_order
    `, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query topics: %w", err)
	}
	defer topicRows.Close()

	topicsByChapter := make(map[uuid.UUID][]models.Topic)
	for topicRows.Next() {
		var t models.Topic
		if err := topicRows.Scan(&t.ID, &t.ChapterID, &t.Title, &t.Content, &t.VideoURL, &t.TopicOrder, &t.CreatedAt); err != nil {
			return nil, err
		}
		topicsByChapter[t.ChapterID] = append(topicsByChapter[t.ChapterID], t)
	}
	if err := topicRows.Err(); err != nil {
		return nil, err
	}

	for i := range chapters {
		if ts, ok := topicsByChapter[chapters[i].ID]; ok {
			chapters[i].Topics = ts
		}
	}
	return chapters, nil
}

func chapterCourse(ctx context.Context, tx pgx.Tx, id uuid.UUID) (uuid.UUID, error) {
	var courseID uuid.UUID
	err := tx.QueryRow(ctx, `SELECT course_id FROM chapters WHERE id = $1`, id).Scan(&courseID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, app_errors.ErrChapterNotFound
	}
	return courseID, err
}

// lockChapter serializes topic order changes within one chapter.
func lockChapter(ctx context.Context, tx pgx.Tx, chapterID uuid.UUID) error {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM chapters WHERE id = $1 FOR UPDATE`, chapterID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return app_errors.ErrChapterNotFound
	}
	return err
}
