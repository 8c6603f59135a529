package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"machly/config"
	"machly/database"
	bookingRepoPkg "machly/database/repository/booking"
	machineRepoPkg "machly/database/repository/machine"
	notificationRepoPkg "machly/database/repository/notification"
	reviewRepoPkg "machly/database/repository/review"
	userRepoPkg "machly/database/repository/user"
	"machly/handlers"
	"machly/routes"
	"machly/services/admin"
	"machly/services/booking"
	"machly/services/machine"
	"machly/services/notification"
	"machly/services/review"
	"machly/services/seed"
	"machly/services/storage"
	"machly/services/user"
	"machly/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	db, err := database.Connect(config.AppConfig)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to connect to mongo: %v", err)
	}
	utils.InitAuthCache()

	storageService, err := storage.NewCloudinaryStorage(config.AppConfig)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize cloudinary storage: %v", err)
	}

	// repositories.
	userRepo := userRepoPkg.NewMongoUserRepo(db)
	machineRepo := machineRepoPkg.NewMongoMachineRepo(db)
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo(db)
	reviewRepo := reviewRepoPkg.NewMongoReviewRepo(db)
	notificationRepo := notificationRepoPkg.NewMongoNotificationRepo(db)

	// one lock space for every calendar writer.
	calendarLocks := utils.NewKeyedMutex()

	// services.
	userService := user.NewDefaultUserService(userRepo, storageService)
	bookingService := booking.NewDefaultBookingService(bookingRepo, machineRepo, notificationRepo, calendarLocks)
	machineService := machine.NewDefaultMachineService(machineRepo, bookingRepo, storageService, calendarLocks)
	reviewService := review.NewDefaultReviewService(reviewRepo, bookingRepo)
	notificationService := notification.NewDefaultNotificationService(notificationRepo)
	adminService := admin.NewDefaultAdminService(userRepo, machineRepo, bookingRepo)

	if config.AppConfig.SeedData {
		if err := seed.NewSeeder(userRepo, machineRepo).Run(); err != nil {
			logger.Sugar().Fatalf("main: seeding failed: %v", err)
		}
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	handlerBundle := &routes.HandlerBundle{
		Auth:         handlers.NewAuthHandler(userService),
		User:         handlers.NewUserHandler(userService),
		Machine:      handlers.NewMachineHandler(machineService, reviewService),
		Provider:     handlers.NewProviderHandler(machineService, bookingService),
		Booking:      handlers.NewBookingHandler(bookingService, storageService),
		Review:       handlers.NewReviewHandler(reviewService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Admin:        handlers.NewAdminHandler(adminService, bookingService, machineService, reviewService),
	}
	routes.RegisterRoutes(router, handlerBundle)

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
	if err := database.Disconnect(db); err != nil {
		logger.Sugar().Errorf("main: failed to disconnect mongo: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
