package dashboard

import (
	"context"

	"github.com/google/uuid"

	"github.com/IICPAS/IICPAS-sub003/internal/models"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

type statsRepo interface {
	AdminStats(ctx context.Context) (*models.AdminDashboard, error)
	StudentRatingCounts(ctx context.Context, studentID uuid.UUID) (map[string]int, error)
}

type enrollmentRepo interface {
	Enrollments(ctx context.Context, studentID uuid.UUID) ([]models.Enrollment, error)
}

type transactionRepo interface {
	StudentTransactions(ctx context.Context, studentID uuid.UUID, status string) ([]models.Transaction, error)
}

type DashboardService struct {
	log            logger.Log
	statsRepo      statsRepo
	enrollmentRepo enrollmentRepo
	txRepo         transactionRepo
}

func NewDashboardService(log logger.Log, statsRepo statsRepo, enrollmentRepo enrollmentRepo, txRepo transactionRepo) *DashboardService {
	return &DashboardService{
		log:            log,
		statsRepo:      statsRepo,
		enrollmentRepo: enrollmentRepo,
		txRepo:         txRepo,
	}
}

func (s *DashboardService) Admin(ctx context.Context) (*models.AdminDashboard, error) {
	d, err := s.statsRepo.AdminStats(ctx)
	if err != nil {
		s.log.ErrorErr("failed to load admin dashboard", err)
		return nil, err
	}
	d.ApprovedRevenue = models.RoundMoney(d.ApprovedRevenue)
	return d, nil
}

func (s *DashboardService) Student(ctx context.Context, studentID uuid.UUID) (*models.StudentDashboard, error) {
	enrollments, err := s.enrollmentRepo.Enrollments(ctx, studentID)
	if err != nil {
		return nil, err
	}
	ratings, err := s.statsRepo.StudentRatingCounts(ctx, studentID)
	if err != nil {
		return nil, err
	}
	pending, err := s.txRepo.StudentTransactions(ctx, studentID, models.TxStatusPending)
	if err != nil {
		return nil, err
	}
	return &models.StudentDashboard{
		Enrollments:         enrollments,
		RatingsByStatus:     ratings,
		PendingTransactions: pending,
	}, nil
}
