package http

import (
	"context"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/IICPAS/IICPAS-sub003/internal/config"
	"github.com/IICPAS/IICPAS-sub003/internal/delivery/http/controllers"
	authcontroller "github.com/IICPAS/IICPAS-sub003/internal/delivery/http/controllers/auth"
	cartcontroller "github.com/IICPAS/IICPAS-sub003/internal/delivery/http/controllers/cart"
	coursecontroller "github.com/IICPAS/IICPAS-sub003/internal/delivery/http/controllers/course"
	dashboardcontroller "github.com/IICPAS/IICPAS-sub003/internal/delivery/http/controllers/dashboard"
	grouppricingcontroller "github.com/IICPAS/IICPAS-sub003/internal/delivery/http/controllers/grouppricing"
	kitcontroller "github.com/IICPAS/IICPAS-sub003/internal/delivery/http/controllers/kit"
	"github.com/IICPAS/IICPAS-sub003/internal/delivery/http/controllers/middleware"
	paymentcontroller "github.com/IICPAS/IICPAS-sub003/internal/delivery/http/controllers/payment"
	studentcontroller "github.com/IICPAS/IICPAS-sub003/internal/delivery/http/controllers/student"
	transactioncontroller "github.com/IICPAS/IICPAS-sub003/internal/delivery/http/controllers/transaction"
	"github.com/IICPAS/IICPAS-sub003/internal/models"
	"github.com/IICPAS/IICPAS-sub003/internal/service"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

// InitRoutes builds the engine. checks feed the readiness endpoint at /api/v1/ready.
func InitRoutes(l logger.Log, u service.Collection, cfg *config.Config, checks map[string]func(context.Context) error) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowOrigins:     splitOrigins(cfg.HTTPServer.AllowOrigin),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", controllers.IdempotencyHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(corsConfig))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(reg)
	r.Use(metrics.Middleware())
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	authProvider := middleware.NewAuthMiddlewareProvider(l, u.Auth, cfg.Cookie.Name)
	adminOnly := []gin.HandlerFunc{authProvider.AdminAuth, middleware.RequireRoles(models.AdminRole)}
	studentOnly := []gin.HandlerFunc{authProvider.StudentAuth, middleware.RequireRoles(models.StudentRole)}

	readiness := make(map[string]controllers.Check, len(checks))
	for name, f := range checks {
		readiness[name] = f
	}
	statusController := controllers.NewStatusHandler(readiness)
	authController := authcontroller.NewAuthHandler(l, u.Auth, cfg.Cookie)
	managementController := coursecontroller.NewManagementHandler(l, u.Course)
	queryController := coursecontroller.NewQueryHandler(l, u.Course)
	chapterController := coursecontroller.NewChapterHandler(l, u.Chapter)
	revisionController := coursecontroller.NewRevisionHandler(l, u.Revision)
	ratingController := coursecontroller.NewRatingHandler(l, u.Rating)
	groupPricingController := grouppricingcontroller.NewHandler(l, u.GroupPricing)
	studentController := studentcontroller.NewHandler(l, u.Student)
	cartController := cartcontroller.NewHandler(l, u.Cart)
	transactionController := transactioncontroller.NewHandler(l, u.Transaction)
	kitController := kitcontroller.NewHandler(l, u.Kit)
	paymentController := paymentcontroller.NewHandler(l, u.Payment)
	dashboardController := dashboardcontroller.NewHandler(l, u.Dashboard)

	v1 := r.Group("/api/v1", middleware.LoggingMiddleware(l))
	{
		v1.GET("/status", statusController.Status)
		v1.GET("/ready", statusController.Ready)

		auth := v1.Group("/auth")
		{
			auth.POST("/admin/login", authController.AdminLogin)
			auth.POST("/student/register", authController.Register)
			auth.POST("/student/login", authController.StudentLogin)
			auth.POST("/student/logout", authController.StudentLogout)
			auth.GET("/me", authProvider.AnyAuth, authController.Me)
		}

		courses := v1.Group("/courses")
		{
			courses.GET("", queryController.ListCourses)
			courses.GET("/slug/:slug", queryController.CourseBySlug)
			courses.GET("/:course_id", queryController.CourseByID)
			courses.GET("/:course_id/chapters", chapterController.CourseChapters)
			courses.GET("/:course_id/ratings", ratingController.CourseRatings)
			courses.GET("/:course_id/revision-tests", append(studentOnly, revisionController.StudentTests)...)
		}

		v1.POST("/revision-tests/:test_id/submit", append(studentOnly, revisionController.Submit)...)

		ratings := v1.Group("/course-ratings")
		{
			student := ratings.Group("", studentOnly...)
			{
				student.POST("", ratingController.RateCourse)
				student.GET("/me", ratingController.MyRatings)
			}

			admin := ratings.Group("/admin", adminOnly...)
			{
				admin.GET("", ratingController.AdminList)
				admin.PATCH("/:id/approve", ratingController.Approve)
				admin.PATCH("/:id/reject", ratingController.Reject)
			}
		}

		groups := v1.Group("/group-pricing")
		{
			groups.GET("", groupPricingController.List)
			groups.GET("/:id", groupPricingController.ByID)
			groups.POST("/:id/enroll", append(studentOnly, groupPricingController.Enroll)...)
		}

		students := v1.Group("/students/me", studentOnly...)
		{
			students.GET("", studentController.Me)
			students.PUT("", studentController.UpdateMe)
			students.GET("/enrollments", studentController.MyEnrollments)
			students.GET("/dashboard", dashboardController.Student)

			students.GET("/cart", cartController.Cart)
			students.POST("/cart/items", cartController.AddItem)
			students.PUT("/cart/items/:course_id", cartController.UpdateItem)
			students.DELETE("/cart/items/:course_id", cartController.RemoveItem)
			students.DELETE("/cart", cartController.Clear)
		}

		transactions := v1.Group("/transactions")
		{
			student := transactions.Group("", studentOnly...)
			{
				student.POST("/submit-payment", transactionController.SubmitPayment)
				student.GET("/me", transactionController.Mine)
			}

			admin := transactions.Group("/admin", adminOnly...)
			{
				admin.GET("", transactionController.AdminList)
				admin.GET("/:id/proof", transactionController.Proof)
				admin.PATCH("/update-status/:id", transactionController.UpdateStatus)
			}
		}

		v1.GET("/kits", kitController.ActiveKits)

		kitOrders := v1.Group("/kit-orders", studentOnly...)
		{
			kitOrders.POST("/preview", kitController.Preview)
			kitOrders.POST("", kitController.CreateOrder)
			kitOrders.GET("/me", kitController.MyOrders)
			kitOrders.POST("/:order_id/payments", paymentController.Submit)
		}

		payments := v1.Group("/payments/admin", adminOnly...)
		{
			payments.GET("", paymentController.AdminList)
			payments.GET("/:id/proof", paymentController.Proof)
			payments.PATCH("/:id/status", paymentController.UpdateStatus)
		}

		admin := v1.Group("/admin", adminOnly...)
		{
			admin.GET("/dashboard", dashboardController.Admin)

			admin.GET("/courses", managementController.ListCourses)
			admin.POST("/courses", managementController.CreateCourse)
			admin.GET("/courses/:course_id", managementController.CourseByID)
			admin.PUT("/courses/:course_id", managementController.UpdateCourse)
			admin.DELETE("/courses/:course_id", managementController.DeleteCourse)
			admin.PATCH("/courses/:course_id/status", managementController.ChangeStatus)
			admin.PUT("/courses/:course_id/logo", managementController.UploadCourseLogo)
			admin.GET("/courses/:course_id/chapters", chapterController.AdminCourseChapters)
			admin.POST("/courses/:course_id/chapters", chapterController.CreateChapter)

			admin.PATCH("/chapters/swap", chapterController.SwapChapters)
			admin.PUT("/chapters/:chapter_id", chapterController.UpdateChapter)
			admin.DELETE("/chapters/:chapter_id", chapterController.DeleteChapter)
			admin.POST("/chapters/:chapter_id/topics", chapterController.CreateTopic)
			admin.DELETE("/topics/:topic_id", chapterController.DeleteTopic)

			admin.GET("/revision-tests", revisionController.List)
			admin.POST("/revision-tests", revisionController.Create)
			admin.GET("/revision-tests/:test_id", revisionController.ByID)
			admin.PUT("/revision-tests/:test_id", revisionController.Update)
			admin.DELETE("/revision-tests/:test_id", revisionController.Delete)

			admin.DELETE("/course-ratings/:id", ratingController.Delete)

			admin.GET("/group-pricing", groupPricingController.List)
			admin.POST("/group-pricing", groupPricingController.Create)
			admin.GET("/group-pricing/:id", groupPricingController.ByID)
			admin.PUT("/group-pricing/:id", groupPricingController.Update)
			admin.DELETE("/group-pricing/:id", groupPricingController.Delete)

			admin.GET("/students", studentController.List)
			admin.GET("/students/:id", studentController.ByID)
			admin.POST("/students/:id/enrollments", studentController.GrantEnrollment)

			admin.GET("/kits", kitController.AllKits)
			admin.POST("/kits", kitController.CreateKit)
			admin.GET("/kits/:id", kitController.KitByID)
			admin.PUT("/kits/:id", kitController.UpdateKit)
			admin.DELETE("/kits/:id", kitController.DeleteKit)
			admin.GET("/kit-orders", kitController.AdminOrders)
		}
	}

	return r
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
