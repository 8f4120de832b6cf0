// File: remindly/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"remindly/config"
	"remindly/cron"
	"remindly/database"
	guestRepo "remindly/database/repository/guest"
	notificationRepo "remindly/database/repository/notification"
	tokenRepo "remindly/database/repository/token"
	"remindly/handlers"
	"remindly/middleware"
	"remindly/routes"
	"remindly/services/push"
	"remindly/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	database.InitSQL()
	utils.InitRateLimitCache()

	messagingClient, err := utils.NewMessagingClient(context.Background())
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize firebase messaging: %v", err)
	}
	transport, err := push.NewFCMTransport(messagingClient)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize push transport: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	validator := push.NewValidatorFromConfig()
	tokens := tokenRepo.NewGormDeviceTokenRepo(database.SQLClient, validator)
	guests := guestRepo.NewGormGuestDeviceRepo(database.SQLClient)
	feed := notificationRepo.NewMongoNotificationRepo(database.MongoClient, "remindly")

	// services.
	limiter := push.NewRateLimiterFromConfig(push.NewRedisRateStore(utils.GetRateLimitClient()))
	dispatcher, err := push.NewDispatchService(transport, tokens, guests, feed, limiter, validator)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize dispatch service: %v", err)
	}
	dispatcher.MaxRetries = config.AppConfig.DispatchMaxRetries
	dispatcher.NotificationTTL = time.Duration(config.AppConfig.NotificationTTLDays) * 24 * time.Hour

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderDB,
	})
	defer asynqClient.Close()
	cron.InitReminderWorker(dispatcher)

	deviceHandler := handlers.NewDeviceHandler(tokens, guests)
	notificationHandler := handlers.NewNotificationHandler(dispatcher, asynqClient)

	routes.RegisterRoutes(router, deviceHandler, notificationHandler)

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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
