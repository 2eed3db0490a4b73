package app_errors

import (
	"errors"
	"strings"
)

var ErrUserExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrIncorrectPassword = errors.New("incorrect password")
var ErrInvalidCredentials = errors.New("invalid email or password")
var ErrPasswordLength = errors.New("password must be between 6 and 64 characters")
var ErrTokenExpired = errors.New("token expired")
var ErrNotAdmin = errors.New("admin access required")

var ErrCourseNotFound = errors.New("course not found")
var ErrCourseNotPublished = errors.New("course not published")
var ErrCourseExists = errors.New("course with this slug already exists")
var ErrInvalidStatus = errors.New("invalid status")
var ErrInvalidLevel = errors.New("level must be beginner, intermediate or advanced")
var ErrInvalidPrice = errors.New("price must not be negative")
var ErrInvalidDiscount = errors.New("discount must be between 0 and 100")
var ErrInvalidSlug = errors.New("slug must contain letters or digits")
var ErrNotImage = errors.New("not image")
var ErrFileSize = errors.New("file size error")
var ErrImageNotFound = errors.New("image not found")

var ErrChapterNotFound = errors.New("chapter not found")
var ErrTopicNotFound = errors.New("topic not found")
var ErrChaptersDifferentCourse = errors.New("chapters belong to different courses")

var ErrRevisionTestNotFound = errors.New("revision test not found")
var ErrInvalidQuestions = errors.New("revision test needs at least one question with a valid answer index")
var ErrAnswerCount = errors.New("answers count does not match questions count")

var ErrRatingNotFound = errors.New("rating not found")
var ErrInvalidRating = errors.New("rating must be between 1 and 5")
var ErrAlreadyRated = errors.New("you have already rated this course")
var ErrNotEnrolled = errors.New("you must be enrolled in this course")
var ErrRatingNotPending = errors.New("rating is not pending")
var ErrReasonRequired = errors.New("rejection reason is required")

var ErrGroupPricingNotFound = errors.New("group pricing not found")
var ErrGroupPricingCourses = errors.New("group pricing needs at least one existing course")

var ErrStudentNotFound = errors.New("student not found")
var ErrInvalidSessionType = errors.New("session type must be recorded or live")
var ErrAlreadyEnrolled = errors.New("already enrolled in this course")

var ErrCartItemNotFound = errors.New("cart item not found")
var ErrInvalidQuantity = errors.New("quantity must be between 1 and 10000")
var ErrCartConflict = errors.New("cart was modified concurrently")

var ErrTransactionNotFound = errors.New("transaction not found")
var ErrTransactionExists = errors.New("a transaction for this course is already pending or approved")
var ErrInvalidTransition = errors.New("invalid status transition")
var ErrInvalidAmount = errors.New("amount must be positive")
var ErrAmountMismatch = errors.New("amount does not match the course price")

var ErrKitNotFound = errors.New("kit not found")
var ErrKitInactive = errors.New("kit is not available")
var ErrEmptyOrder = errors.New("order needs at least one item")
var ErrKitOrderNotFound = errors.New("kit order not found")
var ErrKitOrderNotPayable = errors.New("kit order is not awaiting payment")

var ErrPaymentNotFound = errors.New("payment not found")
var ErrPaymentPending = errors.New("a payment for this order is already pending")

var ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")
var ErrIdempotencyReplay = errors.New("idempotency key already used")

// EnrollmentConflictError lists the bundle courses a student already holds.
type EnrollmentConflictError struct {
	Titles []string
}

func (e *EnrollmentConflictError) Error() string {
	return "already enrolled in: " + strings.Join(e.Titles, ", ")
}

func IsEnrollmentConflict(err error) (*EnrollmentConflictError, bool) {
	var conflict *EnrollmentConflictError
	if errors.As(err, &conflict) {
		return conflict, true
	}
	return nil, false
}
