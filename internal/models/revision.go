package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RevisionStatusDraft     = "draft"
	RevisionStatusPublished = "published"
)

type Question struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	AnswerIndex *int     `json:"answer_index,omitempty"`
}

type RevisionTest struct {
	ID              uuid.UUID  `json:"id"`
	CourseID        uuid.UUID  `json:"course_id"`
	ChapterID       *uuid.UUID `json:"chapter_id,omitempty"`
	Title           string     `json:"title"`
	DurationMinutes int        `json:"duration_minutes"`
	Questions       []Question `json:"questions"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ValidQuestions reports whether every question has an answer inside its options.
func ValidQuestions(qs []Question) bool {
	if len(qs) == 0 {
		return false
	}
	for _, q := range qs {
		if q.Question == "" || len(q.Options) < 2 || q.AnswerIndex == nil {
			return false
		}
		if *q.AnswerIndex < 0 || *q.AnswerIndex >= len(q.Options) {
			return false
		}
	}
	return true
}

// WithoutAnswers returns a copy that is safe to show to students.
func (t RevisionTest) WithoutAnswers() RevisionTest {
	qs := make([]Question, len(t.Questions))
	for i, q := range t.Questions {
		qs[i] = Question{Question: q.Question, Options: q.Options}
	}
	t.Questions = qs
	return t
}

type RevisionResult struct {
	Score   int     `json:"score"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

// Grade compares answers position by position. A negative answer means skipped.
func (t RevisionTest) Grade(answers []int) RevisionResult {
	res := RevisionResult{Total: len(t.Questions)}
	for i, q := range t.Questions {
		if i >= len(answers) || q.AnswerIndex == nil {
			continue
		}
		if answers[i] == *q.AnswerIndex {
			res.Score++
		}
	}
	if res.Total > 0 {
		res.Percent = RoundMoney(float64(res.Score) * 100 / float64(res.Total))
	}
	return res
}
