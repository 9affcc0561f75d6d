// File: vltava/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vltava/config"
	"vltava/cron"
	"vltava/database"
	draftRepo "vltava/database/repository/draft"
	tourRepo "vltava/database/repository/tour"
	"vltava/handlers"
	"vltava/middleware"
	"vltava/routes"
	"vltava/services/booking"
	"vltava/services/connectivity"
	"vltava/services/monitoring"
	"vltava/services/scheduling"
	"vltava/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitSessionCache()
	utils.InitDedupeCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	tours := tourRepo.NewMongoTourRepo()
	drafts := draftRepo.NewMongoDraftRepo()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := tours.Seed(ctx); err != nil {
		logger.Sugar().Fatalf("main: failed to seed tour catalogue: %v", err)
	}
	cancel()

	// services.
	monitor := monitoring.New(monitoring.Config{
		EventCapacity:  config.AppConfig.MonitorEventCapacity,
		HealthyMaxPct:  config.AppConfig.HealthHealthyMaxPct,
		DegradedMaxPct: config.AppConfig.HealthDegradedMaxPct,
	})

	providerCfg := scheduling.ConfigFromApp()
	provider, err := scheduling.NewProvider(providerCfg)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to configure scheduling provider: %v", err)
	}
	scheduler := scheduling.NewService(provider, monitor, logger, providerCfg.Timeout)
	logger.Info("scheduling provider configured", zap.String("variant", provider.Name()))

	engine := booking.NewEngine(booking.DefaultRules())

	submissionService := &booking.SubmissionService{
		Engine:    engine,
		Tours:     tours,
		Drafts:    drafts,
		Scheduler: scheduler,
		Dedupe:    utils.GetDedupeCacheClient(),
		Replay:    cron.NewReplayClient(),
		Logger:    logger,
	}

	sessionService := &booking.SessionService{
		Cache:      booking.NewRedisSessionStore(utils.GetSessionCacheClient()),
		Tours:      tours,
		Engine:     engine,
		Scheduler:  scheduler,
		Submission: submissionService,
		Monitor:    monitor,
		Logger:     logger,
		TTL:        time.Duration(config.AppConfig.SessionTTLMin) * time.Minute,
	}

	// Connectivity watcher over the active provider's base URL.
	probeURL := config.AppConfig.SlotwiseBaseURL
	if config.AppConfig.ProviderVariant == "tourdesk" {
		probeURL = config.AppConfig.TourdeskBaseURL
	}
	probeInterval := time.Duration(config.AppConfig.ConnectivityProbeSec) * time.Second
	watcher := connectivity.NewWatcher(
		connectivity.NewHTTPProbe(probeURL, probeInterval),
		probeInterval,
		logger,
	)
	watcher.Subscribe(utils.SetProviderOnline)
	watcher.Start()
	defer watcher.Close()

	// Background replay of saved drafts.
	cron.InitReplayWorker(submissionService, watcher)

	// Periodic infrastructure health snapshots.
	utils.StartHealthMonitor(60*time.Second,
		[]*redis.Client{utils.GetSessionCacheClient(), utils.GetDedupeCacheClient()},
		database.MongoClient)

	// handlers.
	tourHandler := handlers.NewTourHandler(tours, engine)
	bookingHandler := handlers.NewBookingHandler(sessionService, submissionService, logger)
	opsHandler := handlers.NewOpsHandler(monitor)

	routes.RegisterRoutes(router, tourHandler, bookingHandler, opsHandler)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
