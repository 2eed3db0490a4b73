package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/internal/delivery/http/controllers/middleware"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{app_errors.ErrUserNotFound, http.StatusNotFound},
	{app_errors.ErrCourseNotFound, http.StatusNotFound},
	{app_errors.ErrChapterNotFound, http.StatusNotFound},
	{app_errors.ErrTopicNotFound, http.StatusNotFound},
	{app_errors.ErrRevisionTestNotFound, http.StatusNotFound},
	{app_errors.ErrRatingNotFound, http.StatusNotFound},
	{app_errors.ErrGroupPricingNotFound, http.StatusNotFound},
	{app_errors.ErrStudentNotFound, http.StatusNotFound},
	{app_errors.ErrCartItemNotFound, http.StatusNotFound},
	{app_errors.ErrTransactionNotFound, http.StatusNotFound},
	{app_errors.ErrKitNotFound, http.StatusNotFound},
	{app_errors.ErrKitOrderNotFound, http.StatusNotFound},
	{app_errors.ErrPaymentNotFound, http.StatusNotFound},
	{app_errors.ErrImageNotFound, http.StatusNotFound},

	{app_errors.ErrInvalidCredentials, http.StatusUnauthorized},
	{app_errors.ErrIncorrectPassword, http.StatusUnauthorized},
	{app_errors.ErrTokenExpired, http.StatusUnauthorized},
	{app_errors.ErrNotAdmin, http.StatusForbidden},

	{app_errors.ErrUserExists, http.StatusConflict},
	{app_errors.ErrCourseExists, http.StatusConflict},
	{app_errors.ErrTransactionExists, http.StatusConflict},
	{app_errors.ErrPaymentPending, http.StatusConflict},
	{app_errors.ErrCartConflict, http.StatusConflict},

	{app_errors.ErrFileSize, http.StatusRequestEntityTooLarge},

	{app_errors.ErrPasswordLength, http.StatusBadRequest},
	{app_errors.ErrCourseNotPublished, http.StatusBadRequest},
	{app_errors.ErrInvalidStatus, http.StatusBadRequest},
	{app_errors.ErrInvalidLevel, http.StatusBadRequest},
	{app_errors.ErrInvalidPrice, http.StatusBadRequest},
	{app_errors.ErrInvalidDiscount, http.StatusBadRequest},
	{app_errors.ErrInvalidSlug, http.StatusBadRequest},
	{app_errors.ErrNotImage, http.StatusBadRequest},
	{app_errors.ErrChaptersDifferentCourse, http.StatusBadRequest},
	{app_errors.ErrInvalidQuestions, http.StatusBadRequest},
	{app_errors.ErrAnswerCount, http.StatusBadRequest},
	{app_errors.ErrInvalidRating, http.StatusBadRequest},
	{app_errors.ErrAlreadyRated, http.StatusBadRequest},
	{app_errors.ErrNotEnrolled, http.StatusBadRequest},
	{app_errors.ErrRatingNotPending, http.StatusBadRequest},
	{app_errors.ErrReasonRequired, http.StatusBadRequest},
	{app_errors.ErrGroupPricingCourses, http.StatusBadRequest},
	{app_errors.ErrInvalidSessionType, http.StatusBadRequest},
	{app_errors.ErrAlreadyEnrolled, http.StatusBadRequest},
	{app_errors.ErrInvalidQuantity, http.StatusBadRequest},
	{app_errors.ErrInvalidTransition, http.StatusBadRequest},
	{app_errors.ErrInvalidAmount, http.StatusBadRequest},
	{app_errors.ErrAmountMismatch, http.StatusBadRequest},
	{app_errors.ErrKitInactive, http.StatusBadRequest},
	{app_errors.ErrEmptyOrder, http.StatusBadRequest},
	{app_errors.ErrKitOrderNotPayable, http.StatusBadRequest},
}

// StatusOf maps a service error to an HTTP status. Unknown errors are 500.
func StatusOf(err error) int {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// Error writes err as JSON. Internal errors are attached to the context for
// the logging middleware and answered with a generic body.
func Error(c *gin.Context, err error) {
	if conflict, ok := app_errors.IsEnrollmentConflict(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"message":             "already enrolled in some courses of this package",
			"conflicting_courses": conflict.Titles,
		})
		return
	}
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func BadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// UUIDParam parses a path parameter. It writes a 400 and returns false when invalid.
func UUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// OptionalUUIDQuery parses a query parameter that may be absent.
func OptionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return nil, false
	}
	return &id, true
}

// IntQuery reads a non-negative integer query parameter with a default.
func IntQuery(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return n, true
}

// CurrentUser returns the authenticated user id or writes a 401.
func CurrentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return uuid.Nil, false
	}
	return id, true
}

const IdempotencyHeader = "Idempotency-Key"

// Created answers 201 for a new resource and 200 for an idempotent replay.
func Created(c *gin.Context, replayed bool, body any) {
	if replayed {
		c.JSON(http.StatusOK, body)
		return
	}
	c.JSON(http.StatusCreated, body)
}
