package main

import (
	"context"
	"encoding/hex"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/Chikothe3rd/campuseats/config"
	"github.com/Chikothe3rd/campuseats/internal/auth"
	handler "github.com/Chikothe3rd/campuseats/internal/handler/http"
	"github.com/Chikothe3rd/campuseats/internal/realtime"
	"github.com/Chikothe3rd/campuseats/internal/repository"
	"github.com/Chikothe3rd/campuseats/internal/repository/postgres"
	"github.com/Chikothe3rd/campuseats/internal/service"
	"github.com/Chikothe3rd/campuseats/internal/worker"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const authTokenKey = "f53ac685bbceebd75043e6be2e06ee07"

// newLogger creates logger with log level
func newLogger(level string) (*zap.Logger, error) {

	loggerLvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	loggerCfg := zap.NewProductionConfig()
	loggerCfg.Level = loggerLvl

	return loggerCfg.Build()
}

func main() {

	// create new config
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// initialize logger
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	// create context cancelled on shutdown signals
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// initialize database
	db, err := postgres.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("Error initializing database", zap.Error(err))
	}
	defer db.Close()

	// migrate database
	err = db.Migrate()
	if err != nil {
		logger.Fatal("Error migrating database", zap.Error(err))
	}

	// initialize the order change feed
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	feed := realtime.NewFeed(redisClient)

	tokenKey, err := hex.DecodeString(authTokenKey)
	if err != nil {
		logger.Fatal("Error extracting token key", zap.Error(err))
	}
	token := auth.NewAuthToken(tokenKey)

	// dependency injection
	// user
	userRepo := repository.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, token)
	userHandler := handler.NewUserHandler(authService)

	// notifications
	notificationRepo := repository.NewNotificationRepository(db)
	notificationService := service.NewNotificationService(notificationRepo, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	// orders
	orderRepo := repository.NewOrderRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	orderService := service.NewOrderService(orderRepo, vendorRepo, notificationService, feed)
	orderHandler := handler.NewOrderHandler(orderService)

	// tracking
	trackingService := service.NewTrackingService(orderRepo, feed, logger)
	trackingHandler := handler.NewTrackingHandler(trackingService, orderService, feed, logger)

	// payments
	paymentService := service.NewPaymentService(orderRepo, logger)
	paymentProcessor := worker.NewPaymentProcessor(paymentService, logger)

	router := chi.NewRouter()

	router.Post("/api/user/register", userHandler.RegisterUser())
	router.Post("/api/user/login", userHandler.LoginUser())

	// routes that require authentication
	router.Group(func(group chi.Router) {
		group.Use(handler.AuthMiddleware(token))
		group.Post("/api/orders", orderHandler.CheckoutOrder())
		group.Get("/api/orders", orderHandler.ListOrders())
		group.Get("/api/orders/stream", trackingHandler.StreamOrders())
		group.Get("/api/orders/{orderID}", orderHandler.GetOrder())
		group.Post("/api/orders/{orderID}/claim", orderHandler.ClaimOrder())
		group.Post("/api/orders/{orderID}/status", orderHandler.AdvanceOrder())
		group.Post("/api/orders/{orderID}/cancel", orderHandler.CancelOrder())
		group.Post("/api/orders/{orderID}/location", trackingHandler.UpdateRunnerLocation())
		group.Get("/api/orders/{orderID}/eta", trackingHandler.GetOrderETA())
		group.Get("/api/notifications", notificationHandler.ListNotifications())
		group.Post("/api/notifications/{notificationID}/read", notificationHandler.MarkNotificationRead())
	})

	server := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: router,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("Running server", zap.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		paymentProcessor.ProcessPayments(groupCtx)
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		return server.Shutdown(context.Background())
	})

	if err := group.Wait(); err != nil {
		logger.Fatal("Error running server", zap.Error(err))
	}
}
