package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"petshop_backend/pkg/config"
	"petshop_backend/pkg/database"
	"petshop_backend/pkg/logger"
	"petshop_backend/pkg/routes"
	"petshop_backend/pkg/services"
	"petshop_backend/pkg/utils"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// campaigns still SENDING after this long belong to a dead process
const stalledCampaignAge = 30 * time.Minute

func main() {
	// Load configuration
	config.LoadConfig()
	logger.Init(config.AppConfig.LogLevel, config.IsDevelopment())

	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			log.Warn().Err(err).Msg("sentry initialization failed")
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Initialize database
	log.Info().Msg("initializing database connection")
	if err := database.InitDatabase(); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer database.CloseDatabase()

	if config.IsDevelopment() {
		if err := database.AutoMigrate(database.DB); err != nil {
			log.Warn().Err(err).Msg("failed to run migrations")
		}
	}

	if err := database.InitRedis(config.AppConfig.RedisURL); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize redis")
	}
	defer database.CloseRedis()

	if err := database.InitMongo(config.AppConfig.MongoURI, config.AppConfig.MongoDatabase); err != nil {
		log.Warn().Err(err).Msg("mongodb unavailable, dashboard layouts stored in postgres")
	}
	defer database.CloseMongo()

	initServices()
	utils.RegisterValidators()

	// Set Gin mode based on environment
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := routes.SetupRouter()

	srv := &http.Server{
		Addr:              ":" + config.AppConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("env", config.AppConfig.Environment).Str("port", config.AppConfig.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	services.CloseStorage()

	log.Info().Msg("server exited gracefully")
}

// initServices wires the optional integrations; each one degrades to disabled when unconfigured
func initServices() {
	ctx := context.Background()
	cfg := config.AppConfig

	services.InitOTP(database.Redis)
	services.InitMessaging(cfg)
	services.InitRazorpay(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	if err := services.InitGCPStorage(ctx, cfg.GCPBucketName); err != nil {
		log.Warn().Err(err).Msg("GCP storage initialization failed")
	}
	if err := services.InitFCM(ctx, cfg.GoogleApplicationCredentials); err != nil {
		log.Warn().Err(err).Msg("FCM initialization failed")
	}
	if n, err := services.ResetStalledCampaigns(ctx, database.DB, stalledCampaignAge); err != nil {
		log.Warn().Err(err).Msg("failed to reset stalled newsletter campaigns")
	} else if n > 0 {
		log.Warn().Int64("campaigns", n).Msg("stalled newsletter campaigns returned to draft")
	}
	if err := services.InitWidgetStore(ctx, database.DB, database.MongoDB); err != nil {
		log.Warn().Err(err).Msg("mongo widget store unavailable, using postgres")
		services.Widgets = services.NewGormWidgetStore(database.DB)
	}
}
