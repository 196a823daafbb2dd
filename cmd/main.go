package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brfrauches/augmend-71119/config"
	"github.com/brfrauches/augmend-71119/controllers"
	"github.com/brfrauches/augmend-71119/logger"
	"github.com/brfrauches/augmend-71119/metrics"
	"github.com/brfrauches/augmend-71119/middlewares"
	"github.com/brfrauches/augmend-71119/prompts"
	"github.com/brfrauches/augmend-71119/routes"
	"github.com/brfrauches/augmend-71119/services"
	"github.com/brfrauches/augmend-71119/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.L()
	defer func() { _ = log.Sync() }()

	if err := run(log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(log *zap.Logger) error {
	cfg, err := config.Load(log)
	if err != nil {
		return err
	}
	if cfg.SupabaseJWTSecret == "" {
		return errors.New("SUPABASE_JWT_SECRET is required")
	}
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg, log)
	if err != nil {
		return err
	}
	if err := prompts.Load(); err != nil {
		return fmt.Errorf("load prompts: %w", err)
	}

	ctx := context.Background()
	m := metrics.New()

	// optional AWS integrations; interfaces stay nil when unset
	var files services.FileStore
	if cfg.S3Bucket != "" {
		up, err := utils.NewS3Uploader(ctx, cfg.S3Region, cfg.S3Bucket, cfg.CDNURL)
		if err != nil {
			return err
		}
		files = up
	} else {
		log.Warn("S3_BUCKET not set, uploads are skipped")
	}

	var vision services.FoodDetector
	if cfg.RekognitionEnabled {
		rek, err := services.NewRekognitionService(ctx, cfg.AWSRegion)
		if err != nil {
			return err
		}
		vision = rek
	}

	var (
		push     *services.PushService
		notifier services.Notifier
	)
	if cfg.SNSFCMArn != "" {
		push, err = services.NewPushService(ctx, db, cfg.AWSRegion, cfg.SNSFCMArn, log)
		if err != nil {
			return err
		}
		notifier = push
	}

	var store services.StagingStore = services.NewMemoryStagingStore()
	if cfg.RedisURL != "" {
		rdb, err := services.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		store = services.NewRedisStagingStore(rdb)
	}

	hub := services.NewRealtimeHub()
	alerts := services.NewAlertBus(db, hub, notifier, log)
	ai := services.NewAIGateway(cfg.AIGatewayURL, cfg.AIGatewayKey, cfg.AIModel, cfg.AITimeout, m, log)
	if cfg.AIGatewayKey == "" {
		log.Warn("AI_GATEWAY_KEY not set, AI features will fail")
	}

	profiles := services.NewProfileService(db, files)
	markers := services.NewMarkerService(db, alerts, log)
	supplements := services.NewSupplementService(db)
	workouts := services.NewWorkoutService(db)
	meals := services.NewMealService(db, files)
	water := services.NewWaterService(db)
	summary := services.NewSummaryService(meals, water)
	insights := services.NewInsightService(db, ai, summary, workouts)
	body := services.NewBodyService(db, files)
	analytics := services.NewAnalyticsService(db, workouts)
	imports := services.NewImportService(services.ImportDeps{
		DB:      db,
		AI:      ai,
		Store:   store,
		Files:   files,
		Vision:  vision,
		Markers: markers,
		TTL:     cfg.ImportTTL,
		Metrics: m,
		Log:     log,
	})

	reminders := services.NewReminderService(supplements, alerts, log)
	if err := reminders.Start(cfg.ReminderCron); err != nil {
		return err
	}
	defer reminders.Stop()

	limiter := middlewares.NewRateLimiter(cfg.AIRatePerMin, log)
	limiter.StartCleanup(10 * time.Minute)

	deps := routes.Deps{
		JWTSecret:     cfg.SupabaseJWTSecret,
		CORSOrigins:   cfg.CORSOrigins,
		Metrics:       m,
		Log:           log,
		AILimiter:     limiter,
		Profiles:      controllers.NewProfileController(profiles),
		Markers:       controllers.NewMarkerController(markers),
		Supplements:   controllers.NewSupplementController(supplements),
		Workouts:      controllers.NewWorkoutController(workouts),
		Meals:         controllers.NewMealController(meals),
		Water:         controllers.NewWaterController(water),
		Nutrition:     controllers.NewNutritionController(summary, insights),
		Body:          controllers.NewBodyController(body),
		Imports:       controllers.NewImportController(imports),
		Functions:     controllers.NewFunctionsController(ai),
		Analytics:     controllers.NewAnalyticsController(analytics),
		Devices:       controllers.NewDeviceController(push),
		Notifications: controllers.NewNotificationController(push, alerts),
		Realtime:      controllers.NewRealtimeController(hub, cfg.CORSOrigins),
	}
	if cfg.AppEnv == "development" {
		deps.Dev = controllers.NewDevController(alerts, reminders)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case err, ok := <-errCh:
		if ok {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
