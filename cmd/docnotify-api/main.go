package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/docnotify/docnotify-api/api/swagger"
	"github.com/docnotify/docnotify-api/internal/handler"
	"github.com/docnotify/docnotify-api/internal/middleware"
	"github.com/docnotify/docnotify-api/internal/repository"
	"github.com/docnotify/docnotify-api/internal/service"
	"github.com/docnotify/docnotify-api/pkg/cache"
	"github.com/docnotify/docnotify-api/pkg/config"
	"github.com/docnotify/docnotify-api/pkg/database"
	"github.com/docnotify/docnotify-api/pkg/jobs"
	"github.com/docnotify/docnotify-api/pkg/logger"
	"github.com/docnotify/docnotify-api/pkg/mailer"
	corsmiddleware "github.com/docnotify/docnotify-api/pkg/middleware/cors"
	reqidmiddleware "github.com/docnotify/docnotify-api/pkg/middleware/requestid"
	"github.com/docnotify/docnotify-api/pkg/objstore"
	"github.com/docnotify/docnotify-api/pkg/storage"
)

// @title DocNotify API
// @version 1.0.0
// @description Document expiry tracking and notification service
// @BasePath /api/v1
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	// Redis is optional: without it the document cache and the sweep lock
	// degrade to no-ops, which is fine for a single instance.
	redisClient := cache.MaybeNewRedis(cfg.Redis, logr)
	if redisClient != nil {
		defer redisClient.Close()
	}

	userRepo := repository.NewUserRepository(db)
	docRepo := repository.NewDocumentRepository(db)
	ledgerRepo := repository.NewNotificationLogRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)
	lockRepo := repository.NewSweepLockRepository(redisClient, cfg.Sweep.LockTTL)

	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, logr)
	classifier := service.NewExpiryClassifier(cfg.Sweep.WindowDays)
	dialer := mailer.NewDialer(cfg.SMTP)

	var objects *objstore.Client
	if cfg.Storage.Endpoint != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		objects, err = objstore.New(ctx, cfg.Storage)
		cancel()
		if err != nil {
			logr.Fatal("failed to connect object store", zap.Error(err))
		}
	} else {
		logr.Warn("object store not configured, file endpoints disabled")
	}

	authSvc := service.NewAuthService(cfg.JWT)
	userSvc := service.NewUserService(userRepo)
	var docSvc *service.DocumentService
	if objects != nil {
		docSvc = service.NewDocumentService(docRepo, cacheSvc, objects, classifier, logr)
	} else {
		docSvc = service.NewDocumentService(docRepo, cacheSvc, nil, classifier, logr)
	}
	contactSvc := service.NewContactService(dialer, cfg.Contact.Recipient, logr)

	sweepSvc := service.NewSweepService(service.SweepServiceParams{
		Users:        userRepo,
		Documents:    docRepo,
		Ledger:       ledgerRepo,
		Locker:       lockRepo,
		Dialer:       dialer,
		Classifier:   classifier,
		Email:        service.NewNoticeEmailBuilder(cfg.Sweep.DashboardURL),
		Observer:     metrics,
		Logger:       logr,
		PageSize:     cfg.Sweep.PageSize,
		DedupEnabled: cfg.Sweep.DedupEnabled,
	})

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var reportSvc *service.ReportService
	var reportQueue *jobs.Queue
	if cfg.Reports.Enabled {
		store, err := storage.NewLocalStore(cfg.Reports.StorageDir)
		if err != nil {
			logr.Fatal("failed to init report storage", zap.Error(err))
		}
		signer, err := storage.NewTokenSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		if err != nil {
			logr.Fatal("failed to init report signer", zap.Error(err))
		}

		reportQueue = jobs.NewQueue(logr, cfg.Reports.WorkerConcurrency, cfg.Reports.WorkerRetries)
		reportRepo := repository.NewReportJobRepository(db)
		reportSvc = service.NewReportService(reportRepo, docRepo, store, signer, reportQueue, classifier, logr)
		reportSvc.RecoverStale(rootCtx)
		reportSvc.StartCleanup(rootCtx, cfg.Reports.CleanupInterval, cfg.Reports.SignedURLTTL)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(reqidmiddleware.Middleware())
	router.Use(logger.GinMiddleware(logr))
	router.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	router.Use(middleware.Metrics(metrics))

	metricsHandler := handler.NewMetricsHandler(metrics, db, redisClient)
	router.GET("/health", metricsHandler.Health)
	router.GET("/ready", metricsHandler.Ready)
	router.GET("/metrics", metricsHandler.Metrics)

	if cfg.Env != config.EnvProduction {
		router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := router.Group(cfg.APIPrefix)
	api.POST("/contact", handler.NewContactHandler(contactSvc).Submit)

	// Hosted schedulers call with GET, manual triggers with POST.
	cronHandler := handler.NewCronHandler(sweepSvc, cfg.Cron.Timeout)
	cronAuth := middleware.CronAuth(cfg.Cron, logr)
	api.GET("/internal/cron/check-expirations", cronAuth, cronHandler.CheckExpirations)
	api.POST("/internal/cron/check-expirations", cronAuth, cronHandler.CheckExpirations)

	authed := api.Group("")
	authed.Use(middleware.Authenticate(authSvc))

	userHandler := handler.NewUserHandler(userSvc)
	authed.POST("/users/sync", userHandler.Sync)
	authed.GET("/users/me", userHandler.Me)

	docHandler := handler.NewDocumentHandler(docSvc)
	docs := authed.Group("/documents")
	docs.Use(middleware.CacheStatus())
	docs.POST("", docHandler.Create)
	docs.GET("", docHandler.List)
	docs.GET("/:id", docHandler.Get)
	docs.PATCH("/:id", docHandler.Update)
	docs.DELETE("/:id", docHandler.Delete)
	docs.POST("/:id/files", docHandler.UploadURL)
	docs.POST("/:id/files/confirm", docHandler.AttachFile)
	docs.GET("/:id/files", docHandler.DownloadURL)

	if reportSvc != nil {
		reportHandler := handler.NewReportHandler(reportSvc)
		authed.POST("/reports", reportHandler.Create)
		authed.GET("/reports/:id", reportHandler.Get)
		// Download is token-authenticated, not session-authenticated.
		api.GET("/reports/:id/download", reportHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-rootCtx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	if reportQueue != nil {
		reportQueue.Shutdown()
	}
}
