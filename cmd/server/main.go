package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"DR-SIGN/internal"
	"DR-SIGN/internal/config"
	"DR-SIGN/internal/geo"
	"DR-SIGN/internal/handlers"
	"DR-SIGN/internal/lock"
	"DR-SIGN/internal/logger"
	"DR-SIGN/internal/mailer"
	"DR-SIGN/internal/notify"
	"DR-SIGN/internal/repository"
	"DR-SIGN/internal/services"
	"DR-SIGN/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "dr-sign")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	location, err := time.LoadLocation(cfg.Signing.DisplayTimezone)
	if err != nil {
		appLogger.Warn("Unknown display timezone, using UTC",
			zap.String("timezone", cfg.Signing.DisplayTimezone), zap.Error(err))
		location = time.UTC
	}

	db, err := internal.InitDB(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer internal.CloseDB(db)

	ctx := context.Background()
	gcsClient, err := storage.NewGCSClient(ctx, cfg.GCS.BucketName, cfg.GCS.ProjectID, cfg.GCS.CredentialsPath)
	if err != nil {
		appLogger.Fatal("Failed to initialize GCS client", zap.Error(err))
	}
	defer gcsClient.Close()

	var converter services.HTMLConverter
	if cfg.Gotenberg.URL != "" {
		pdfService, err := services.NewPDFService(cfg.Gotenberg.URL, cfg.Gotenberg.Timeout, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize PDF service", zap.Error(err))
		}
		converter = pdfService
	} else {
		appLogger.Info("GOTENBERG_URL not set, contract templates are disabled and the fixed layout is used")
	}

	var locker lock.Locker
	var notifier notify.Notifier
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		locker = lock.NewRedisLocker(redisClient)
		notifier = notify.NewRedisNotifier(redisClient, cfg.Redis.NotifyChannel)
	} else {
		appLogger.Info("REDIS_ADDR not set, using in-process locks and log notifications")
		locker = lock.NewLocalLocker()
		notifier = notify.NewLogNotifier(appLogger)
	}

	contractRepo := repository.NewContractRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	documentService := services.NewDocumentService(templateRepo, converter, gcsClient,
		cfg.Signing.Locale, location, cfg.Signing.PDFTimeout, appLogger)
	signLinkService := services.NewSignLinkService(
		contractRepo,
		documentService,
		gcsClient,
		mailer.NewSMTPMailer(cfg.SMTP),
		notifier,
		geo.NewClient(cfg.Geo.BaseURL, cfg.Geo.Timeout, appLogger),
		locker,
		services.SigningOptions{
			LinkTTL:     cfg.Signing.LinkTTL,
			FrontendURL: cfg.Server.FrontendURL,
			GeoTimeout:  cfg.Geo.Timeout,
			Location:    location,
		},
		appLogger,
	)
	templateService := services.NewTemplateService(templateRepo, documentService, appLogger)
	exporter := services.NewSignatureExporter(contractRepo, location)
	activityLogService := services.NewActivityLogService(activityRepo, appLogger)

	cleanupService := handlers.NewSignLinkCleanupService(signLinkService, cfg.Signing.SweepInterval, appLogger)
	cleanupService.Start()

	router := handlers.NewRouter(handlers.RouterConfig{
		AllowOrigins: cfg.Server.AllowOrigins,
		Contracts:    handlers.NewContractHandler(signLinkService, exporter, appLogger),
		SignLinks:    handlers.NewSignLinkHandler(signLinkService, appLogger),
		Templates:    handlers.NewTemplateHandler(templateService, appLogger),
		Logs:         handlers.NewLogsHandler(activityLogService, appLogger),
		ActivityLog:  activityLogService.LoggingMiddleware(),
		Logger:       appLogger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Starting server", zap.String("port", cfg.Server.Port), zap.String("environment", cfg.Server.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	cleanupService.Stop()
	signLinkService.Wait()
	activityLogService.Wait()
	appLogger.Info("Server exited")
}
