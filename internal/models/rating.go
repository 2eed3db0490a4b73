package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RatingStatusPending  = "pending"
	RatingStatusApproved = "approved"
	RatingStatusRejected = "rejected"
)

type CourseRating struct {
	ID             uuid.UUID  `json:"id"`
	StudentID      uuid.UUID  `json:"student_id"`
	StudentName    string     `json:"student_name,omitempty"`
	CourseID       uuid.UUID  `json:"course_id"`
	CourseTitle    string     `json:"course_title,omitempty"`
	Rating         int        `json:"rating"`
	Review         string     `json:"review"`
	Status         string     `json:"status"`
	ApprovedBy     *uuid.UUID `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
	RejectedReason string     `json:"rejected_reason,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type RatingFilter struct {
	Status   string
	CourseID *uuid.UUID
}

type RatingAggregate struct {
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
}

// AggregateRatings averages the approved ratings and rounds to one decimal.
func AggregateRatings(approved []int) RatingAggregate {
	if len(approved) == 0 {
		return RatingAggregate{}
	}
	sum := 0
	for _, r := range approved {
		sum += r
	}
	return RatingAggregate{
		Rating:      Round1(float64(sum) / float64(len(approved))),
		ReviewCount: len(approved),
	}
}

// CanModerate reports whether a rating in status from may move to status to.
func CanModerate(from, to string) bool {
	return from == RatingStatusPending && (to == RatingStatusApproved || to == RatingStatusRejected)
}
