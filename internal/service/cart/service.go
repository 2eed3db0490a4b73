package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

const maxSaveAttempts = 3

type cartRepo interface {
	GetCart(ctx context.Context, studentID string) (*models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) error
	ClearCart(ctx context.Context, studentID string) error
	AddCartHistory(ctx context.Context, event models.CartEvent) error
}

type courseRepo interface {
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
}

type enrollmentRepo interface {
	IsEnrolled(ctx context.Context, studentID, courseID uuid.UUID, sessionType string) (bool, error)
}

type CartService struct {
	log            logger.Log
	cartRepo       cartRepo
	courseRepo     courseRepo
	enrollmentRepo enrollmentRepo
}

func NewCartService(log logger.Log, cartRepo cartRepo, courseRepo courseRepo, enrollmentRepo enrollmentRepo) *CartService {
	return &CartService{
		log:            log,
		cartRepo:       cartRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

func (s *CartService) Cart(ctx context.Context, studentID uuid.UUID) (*models.Cart, error) {
	return s.cartRepo.GetCart(ctx, studentID.String())
}

// mutate reads, changes and saves the cart, retrying when another request saved it first.
func (s *CartService) mutate(ctx context.Context, studentID uuid.UUID, change func(c *models.Cart) error) (*models.Cart, error) {
	var err error
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		var cart *models.Cart
		cart, err = s.cartRepo.GetCart(ctx, studentID.String())
		if err != nil {
			return nil, err
		}
		if err = change(cart); err != nil {
			return nil, err
		}
		err = s.cartRepo.SaveCart(ctx, cart)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, app_errors.ErrCartConflict) {
			return nil, err
		}
		s.log.Debug("cart save conflict, retrying", "student_id", studentID, "attempt", attempt+1)
	}
	return nil, err
}

func (s *CartService) record(ctx context.Context, e models.CartEvent) {
	if err := s.cartRepo.AddCartHistory(ctx, e); err != nil {
		s.log.ErrorErr("failed to write cart history", err, "student_id", e.StudentID, "event", e.Event)
	}
}

// AddItem adds a published course the student does not already hold for
// sessionType. An existing line for the same course and session grows.
func (s *CartService) AddItem(ctx context.Context, studentID, courseID uuid.UUID, sessionType string, qty int) (*models.Cart, error) {
	if !models.ValidSessionType(sessionType) {
		return nil, app_errors.ErrInvalidSessionType
	}
	if qty < 1 || qty > models.MaxQuantity {
		return nil, app_errors.ErrInvalidQuantity
	}
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.Status != models.CourseStatusPublished {
		return nil, app_errors.ErrCourseNotPublished
	}
	enrolled, err := s.enrollmentRepo.IsEnrolled(ctx, studentID, courseID, sessionType)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, app_errors.ErrAlreadyEnrolled
	}

	cart, err := s.mutate(ctx, studentID, func(c *models.Cart) error {
		return c.Add(models.CartItem{
			CourseID:    courseID.String(),
			CourseTitle: course.Title,
			SessionType: sessionType,
			Quantity:    qty,
			UnitPrice:   course.EffectivePrice(),
		})
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, models.CartEvent{
		StudentID:   studentID.String(),
		Event:       models.CartEventAdd,
		CourseID:    courseID.String(),
		SessionType: sessionType,
		Quantity:    qty,
	})
	return cart, nil
}

func (s *CartService) UpdateItem(ctx context.Context, studentID, courseID uuid.UUID, sessionType string, qty int) (*models.Cart, error) {
	if !models.ValidSessionType(sessionType) {
		return nil, app_errors.ErrInvalidSessionType
	}
	if qty < 1 || qty > models.MaxQuantity {
		return nil, app_errors.ErrInvalidQuantity
	}
	cart, err := s.mutate(ctx, studentID, func(c *models.Cart) error {
		if !c.SetQuantity(courseID.String(), sessionType, qty) {
			return app_errors.ErrCartItemNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, models.CartEvent{
		StudentID:   studentID.String(),
		Event:       models.CartEventUpdate,
		CourseID:    courseID.String(),
		SessionType: sessionType,
		Quantity:    qty,
	})
	return cart, nil
}

// RemoveItem drops the course line. An empty sessionType removes both session lines.
func (s *CartService) RemoveItem(ctx context.Context, studentID, courseID uuid.UUID, sessionType string) (*models.Cart, error) {
	if sessionType != "" && !models.ValidSessionType(sessionType) {
		return nil, app_errors.ErrInvalidSessionType
	}
	cart, err := s.mutate(ctx, studentID, func(c *models.Cart) error {
		if !c.Remove(courseID.String(), sessionType) {
			return app_errors.ErrCartItemNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, models.CartEvent{
		StudentID:   studentID.String(),
		Event:       models.CartEventRemove,
		CourseID:    courseID.String(),
		SessionType: sessionType,
	})
	return cart, nil
}

func (s *CartService) Clear(ctx context.Context, studentID uuid.UUID) error {
	if err := s.cartRepo.ClearCart(ctx, studentID.String()); err != nil {
		return err
	}
	s.record(ctx, models.CartEvent{StudentID: studentID.String(), Event: models.CartEventClear})
	return nil
}
