package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChapterStatusActive   = "active"
	ChapterStatusInactive = "inactive"
)

type Chapter struct {
	ID           uuid.UUID `json:"id"`
	CourseID     uuid.UUID `json:"course_id"`
	Title        string    `json:"title"`
	ChapterOrder int       `json:"chapter_order"`
	Status       string    `json:"status"`
	Topics       []Topic   `json:"topics"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Topic struct {
	ID         uuid.UUID `json:"id"`
	ChapterID  uuid.UUID `json:"chapter_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	VideoURL   string    `json:"video_url"`
	TopicOrder int       `json:"topic_order"`
	CreatedAt  time.Time `json:"created_at"`
}
