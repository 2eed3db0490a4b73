package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IICPAS/IICPAS-sub003/internal/app/server"
	"github.com/IICPAS/IICPAS-sub003/internal/config"
	"github.com/IICPAS/IICPAS-sub003/internal/delivery/http"
	"github.com/IICPAS/IICPAS-sub003/internal/delivery/http/controllers"
	"github.com/IICPAS/IICPAS-sub003/internal/jobs"
	"github.com/IICPAS/IICPAS-sub003/internal/notify"
	"github.com/IICPAS/IICPAS-sub003/internal/service"
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
	"github.com/IICPAS/IICPAS-sub003/internal/service/proof"
	"github.com/IICPAS/IICPAS-sub003/internal/service/student"
	"github.com/IICPAS/IICPAS-sub003/internal/service/transaction"
	"github.com/IICPAS/IICPAS-sub003/internal/storage/elastic"
	"github.com/IICPAS/IICPAS-sub003/internal/storage/minio_storage"
	"github.com/IICPAS/IICPAS-sub003/internal/storage/mongo"
	"github.com/IICPAS/IICPAS-sub003/internal/storage/postgres"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func Run(cfg *config.Config) {
	log := logger.New(cfg.Env)
	log.Info("Starting with Env: " + cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	pg, err := postgres.NewPostgresPool(ctx, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.DBName)
	if err != nil {
		log.FatalErr("error connecting to database", err)
	}
	defer pg.Close()

	if cfg.Postgres.Migrate {
		if err = pg.Migrate(ctx); err != nil {
			log.FatalErr("error applying migrations", err)
		}
	}

	mg, err := mongo.NewMongoStorage(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		log.FatalErr("error connecting to mongo", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer closeCancel()
		if err := mg.Close(closeCtx); err != nil {
			log.ErrorErr("error closing mongo", err)
		}
	}()
	if err = mg.EnsureIndexes(ctx); err != nil {
		log.FatalErr("error creating mongo indexes", err)
	}

	minioClient, err := minio_storage.NewMinioStorage(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
	if err != nil {
		log.FatalErr("error creating minio client", err)
	}
	logoBucket := cfg.Minio.Bucket(config.BucketLogos)
	logoStorage, err := minio_storage.NewLogoStorage(ctx, minioClient, logoBucket.Name, logoBucket.PresignTTL)
	if err != nil {
		log.FatalErr("error preparing logo bucket", err)
	}
	proofBucket := cfg.Minio.Bucket(config.BucketProofs)
	proofStorage, err := minio_storage.NewProofStorage(ctx, minioClient, proofBucket.Name, proofBucket.PresignTTL)
	if err != nil {
		log.FatalErr("error preparing proof bucket", err)
	}

	esClient, err := elastic.NewElasticClient(ctx, cfg.ES)
	if err != nil {
		log.FatalErr("error connecting to elasticsearch", err)
	}
	searchRepo := elastic.NewCourseSearchRepository(esClient, cfg.ES.Index)
	if err = searchRepo.CreateIndexIfNotExist(ctx); err != nil {
		log.FatalErr("error creating course index", err)
	}

	mailer, err := notify.NewMailer(cfg.Email, log)
	if err != nil {
		log.FatalErr("error creating mailer", err)
	}

	ttl, err := cfg.JWT.TTL()
	if err != nil {
		log.FatalErr("invalid jwt expiry", err)
	}

	userRepo := postgres.NewUserPostgres(pg.Pool)
	courseRepo := postgres.NewCoursePostgres(pg.Pool)
	chapterRepo := postgres.NewChapterPostgres(pg.Pool)
	revisionRepo := postgres.NewRevisionTestPostgres(pg.Pool)
	ratingRepo := postgres.NewCourseRatingPostgres(pg.Pool)
	groupPricingRepo := postgres.NewGroupPricingPostgres(pg.Pool)
	studentRepo := postgres.NewStudentPostgres(pg.Pool)
	enrollmentRepo := postgres.NewEnrollmentPostgres(pg.Pool)
	transactionRepo := postgres.NewTransactionPostgres(pg.Pool)
	idempotencyRepo := postgres.NewIdempotencyPostgres(pg.Pool)
	kitRepo := postgres.NewKitPostgres(pg.Pool)
	kitOrderRepo := postgres.NewKitOrderPostgres(pg.Pool)
	paymentRepo := postgres.NewPaymentPostgres(pg.Pool)
	dashboardRepo := postgres.NewDashboardPostgres(pg.Pool)
	cartRepo := mongo.NewCartRepository(mg.DB)

	proofLimits := proof.Limits{MaxBytes: cfg.Uploads.MaxProofBytes, MaxWidth: cfg.Uploads.ProofMaxWidth}

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Issuer, ttl)
	authService := auth.NewAuthService(log, jwtManager, userRepo)
	ratingService := rating.NewCourseRatingService(log, ratingRepo, courseRepo, enrollmentRepo)

	u := service.Collection{
		Auth:         authService,
		Course:       course.NewCourseService(log, courseRepo, searchRepo, logoStorage, cfg.Uploads.MaxLogoBytes),
		Chapter:      chapter.NewChapterService(log, chapterRepo, courseRepo),
		Revision:     revision.NewRevisionService(log, revisionRepo, enrollmentRepo),
		Rating:       ratingService,
		GroupPricing: grouppricing.NewGroupPricingService(log, groupPricingRepo, courseRepo, studentRepo, enrollmentRepo),
		Student:      student.NewStudentService(log, studentRepo, enrollmentRepo, courseRepo),
		Cart:         cart.NewCartService(log, cartRepo, courseRepo, enrollmentRepo),
		Transaction:  transaction.NewTransactionService(log, transactionRepo, idempotencyRepo, courseRepo, enrollmentRepo, proofStorage, mailer, proofLimits),
		Kit:          kit.NewKitService(log, kitRepo, kitOrderRepo, idempotencyRepo),
		Payment:      payment.NewPaymentService(log, paymentRepo, kitOrderRepo, proofStorage, mailer, proofLimits),
		Dashboard:    dashboard.NewDashboardService(log, dashboardRepo, enrollmentRepo, transactionRepo),
	}

	if err = authService.BootstrapAdmin(ctx, cfg.Admin.BootstrapEmail, cfg.Admin.BootstrapPassword); err != nil {
		log.FatalErr("error creating bootstrap admin", err)
	}

	if err = controllers.RegisterValidators(); err != nil {
		log.FatalErr("error registering validators", err)
	}
	r := http.InitRoutes(log, u, cfg, map[string]func(context.Context) error{
		"postgres":      pg.Pool.Ping,
		"mongo":         mg.Ping,
		"elasticsearch": func(ctx context.Context) error { return elastic.Ping(ctx, esClient) },
	})

	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler, err = jobs.NewScheduler(log, cfg.Jobs, ratingService, idempotencyRepo)
		if err != nil {
			log.FatalErr("error scheduling jobs", err)
		}
		scheduler.Start()
	}

	srv := server.New(cfg.HTTPServer.Address, cfg.HTTPServer.Timeout, cfg.HTTPServer.IdleTimeout, r)
	srv.Start()
	log.Info("http server started", "address", cfg.HTTPServer.Address)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info("app signal: " + s.String())
	case err := <-srv.Notify():
		log.ErrorErr("http server stopped", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		log.ErrorErr("error shutting down http server", err)
	}
	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	log.Info("shutdown complete")
}
