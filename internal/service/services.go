package service

import (
	"github.com/IICPAS/IICPAS-sub003/internal/service/auth"
	"github.com/IICPAS/IICPAS-sub003/internal/service/cart"
	"github.com/IICPAS/IICPAS-sub003/internal/service/course"
	"github.com/IICPAS/IICPAS-sub003/internal/service/course/chapter"
	"github.com/IICPAS/IICPAS-sub003/internal/service/course/rating"
	"github.com/IICPAS/IICPAS-sub003/internal/service/course/revision"
	"github.com/IICPAS/IICPAS-sub003/internal/service/dashboard"
	"github.com/IICPAS/IICPAS-sub003/internal/service/grouppricing"
	"github.com/IICPAS/IICPAS-sub003/internal/service/kit"
	"github.com/IICPAS/IICPAS-sub003/internal/service/payment"
	"github.com/IICPAS/IICPAS-sub003/internal/service/student"
	"github.com/IICPAS/IICPAS-sub003/internal/service/transaction"
)

type Collection struct {
	Auth         *auth.AuthService
	Course       *course.CourseService
	Chapter      *chapter.ChapterService
	Revision     *revision.RevisionService
	Rating       *rating.CourseRatingService
	GroupPricing *grouppricing.GroupPricingService
	Student      *student.StudentService
	Cart         *cart.CartService
	Transaction  *transaction.TransactionService
	Kit          *kit.KitService
	Payment      *payment.PaymentService
	Dashboard    *dashboard.DashboardService
}
