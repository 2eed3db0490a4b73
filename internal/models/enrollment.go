package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SessionRecorded = "recorded"
	SessionLive     = "live"

	SourceTransaction  = "transaction"
	SourceGroupPricing = "group_pricing"
	SourceAdmin        = "admin"
)

func ValidSessionType(s string) bool {
	return s == SessionRecorded || s == SessionLive
}

type Enrollment struct {
	StudentID   uuid.UUID `json:"student_id"`
	CourseID    uuid.UUID `json:"course_id"`
	CourseTitle string    `json:"course_title,omitempty"`
	SessionType string    `json:"session_type"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"created_at"`
}

type EnrollmentSets struct {
	Courses  []uuid.UUID `json:"course"`
	Recorded []uuid.UUID `json:"enrolled_recorded_sessions"`
	Live     []uuid.UUID `json:"enrolled_live_sessions"`
}

// NewEnrollmentSets groups enrollments by session type. Courses is the distinct union.
func NewEnrollmentSets(enrollments []Enrollment) EnrollmentSets {
	sets := EnrollmentSets{
		Courses:  make([]uuid.UUID, 0),
		Recorded: make([]uuid.UUID, 0),
		Live:     make([]uuid.UUID, 0),
	}
	seen := make(map[uuid.UUID]struct{}, len(enrollments))
	for _, e := range enrollments {
		switch e.SessionType {
		case SessionRecorded:
			sets.Recorded = append(sets.Recorded, e.CourseID)
		case SessionLive:
			sets.Live = append(sets.Live, e.CourseID)
		}
		if _, ok := seen[e.CourseID]; !ok {
			seen[e.CourseID] = struct{}{}
			sets.Courses = append(sets.Courses, e.CourseID)
		}
	}
	return sets
}
