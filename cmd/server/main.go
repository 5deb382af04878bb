package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"carpool/internal/app"
	"carpool/internal/config"
	"carpool/internal/events"
	"carpool/internal/handler"
	"carpool/internal/logger"
	internalRedis "carpool/internal/redis"
	"carpool/internal/repository/postgres"
	"carpool/internal/service"
	"carpool/internal/ws"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Warn("new relic initialization failed", zap.Error(err))
		} else {
			log.Info("new relic enabled", zap.String("app", cfg.NewRelic.AppName))
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()
	log.Info("connected to postgres")

	if err := app.Migrate(ctx, db); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("connected to redis")

	// Optional event bus.
	var publisher *events.Publisher
	if cfg.AMQP.URL != "" {
		publisher, err = events.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, log)
		if err != nil {
			log.Fatal("amqp connection failed", zap.Error(err))
		}
		defer publisher.Close()
	}

	// Wire dependencies.
	server := wireServer(db, redisClient, publisher, nrApp, cfg, log)

	// Start server in goroutine.
	go func() {
		log.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, publisher *events.Publisher, nrApp *newrelic.Application, cfg *config.Config, log *zap.Logger) *http.Server {
	// Initialize Redis stores.
	cacheStore := internalRedis.NewCacheStore(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)

	// Initialize the transactional store.
	store := postgres.NewStore(db)

	// Websocket hub for live notification delivery.
	hub := ws.NewHub(log)
	go hub.Run()

	// Initialize services. The notification service doubles as the sink
	// every lifecycle event flows through.
	notificationService := service.NewNotificationService(store, hub, eventPublisher(publisher), log)
	chatService := service.NewChatService(store, notificationService, log)
	rideService := service.NewRideService(store, cacheStore, chatService, notificationService, log)
	requestService := service.NewRequestService(store, rideService, notificationService, log)
	cascadeService := service.NewCascadeService(store, cacheStore, lockStore, log)
	authService := service.NewAuthService(store, cfg.Auth.Secret, cfg.Auth.TokenTTL, log)
	donationService := service.NewDonationService(store, notificationService, log)
	feedbackService := service.NewFeedbackService(store, log)
	adminService := service.NewAdminService(store, log)

	// Initialize handlers.
	authHandler := handler.NewAuthHandler(authService)
	rideHandler := handler.NewRideHandler(rideService, requestService)
	chatHandler := handler.NewChatHandler(chatService)
	donationHandler := handler.NewDonationHandler(donationService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService)
	userHandler := handler.NewUserHandler(cascadeService, adminService)
	adminHandler := handler.NewAdminHandler(adminService)
	wsHandler := handler.NewWSHandler(hub, log)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		AuthHandler:         authHandler,
		RideHandler:         rideHandler,
		ChatHandler:         chatHandler,
		DonationHandler:     donationHandler,
		NotificationHandler: notificationHandler,
		FeedbackHandler:     feedbackHandler,
		UserHandler:         userHandler,
		AdminHandler:        adminHandler,
		WSHandler:           wsHandler,
		JWTSecret:           cfg.Auth.Secret,
		RedisClient:         redisClient,
		NewRelicApp:         nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}

// eventPublisher returns a nil interface when the publisher is disabled
// so the sink can skip it.
func eventPublisher(p *events.Publisher) service.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}
