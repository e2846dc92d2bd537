package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqpAdapter "delivery-marketplace/internal/adapter/amqp"
	httpAdapter "delivery-marketplace/internal/adapter/http"
	"delivery-marketplace/internal/adapter/logger"
	"delivery-marketplace/internal/adapter/postgres"
	"delivery-marketplace/internal/adapter/rabbitmq"
	"delivery-marketplace/internal/app/dispatch"
	"delivery-marketplace/internal/app/feed"
	"delivery-marketplace/internal/app/order"
	"delivery-marketplace/internal/app/rider"
	"delivery-marketplace/internal/config"
	"delivery-marketplace/internal/domain"
)

func main() {
	mode := flag.String("mode", "", "Service mode: api, notification-subscriber, order-watch")
	configPath := flag.String("config", "config.yaml", "Path to config file")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	orderID := flag.String("order-id", "", "Order to watch (order-watch mode)")
	flag.Parse()

	if *mode == "" {
		log.Fatal("--mode flag is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.HTTP.Port = *port
	}

	ctx := context.Background()
	lgr := logger.New(*mode)

	switch *mode {
	case "api":
		db, err := postgres.Connect(ctx, cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer db.Close()

		lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]interface{}{
			"host": cfg.Database.Host,
			"db":   cfg.Database.Database,
		})

		mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer mqConn.Close()

		lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
			"host": cfg.RabbitMQ.Host,
		})

		runAPI(db, mqConn, lgr, cfg)

	case "notification-subscriber":
		mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer mqConn.Close()

		runNotificationSubscriber(ctx, mqConn, lgr)

	case "order-watch":
		if *orderID == "" {
			log.Fatal("--order-id flag is required in order-watch mode")
		}
		db, err := postgres.Connect(ctx, cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer db.Close()

		runOrderWatch(ctx, db, lgr, cfg, *orderID)

	default:
		log.Fatalf("Invalid mode: %s", *mode)
	}
}

func runAPI(db postgres.DB, mqConn rabbitmq.Connection, lgr logger.Logger, cfg *config.Config) {
	orderRepo := postgres.NewOrderRepository(db)
	riderRepo := postgres.NewRiderRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	publisher := rabbitmq.NewPublisher(mqConn)

	dispatchService := dispatch.NewService(riderRepo, notificationRepo, publisher, lgr,
		cfg.Dispatch.DefaultZone, cfg.Dispatch.MaxConcurrent)
	orderService := order.NewService(orderRepo, riderRepo, dispatchService, publisher, lgr)
	riderService := rider.NewService(riderRepo, notificationRepo, lgr)

	orderHandler := httpAdapter.NewOrderHandler(orderService, lgr)
	riderHandler := httpAdapter.NewRiderHandler(riderService, lgr)

	mux := http.NewServeMux()
	mux.HandleFunc("/orders", orderHandler.HandleOrders)
	mux.HandleFunc("/orders/", orderHandler.HandleOrderByID)
	mux.HandleFunc("/riders", riderHandler.HandleRiders)
	mux.HandleFunc("/riders/", riderHandler.HandleRiderByID)
	mux.HandleFunc("/rider-notifications", riderHandler.CreateNotification)

	handler := httpAdapter.LoggingMiddleware(lgr)(mux)
	handler = httpAdapter.RecoveryMiddleware(lgr)(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lgr.Info("service_started", fmt.Sprintf("API started on port %d", cfg.HTTP.Port), "startup", map[string]interface{}{
		"port":         cfg.HTTP.Port,
		"default_zone": cfg.Dispatch.DefaultZone,
	})

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		lgr.Info("shutdown_initiated", "Shutting down API", "shutdown", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			lgr.Error("shutdown_error", "Error during shutdown", "shutdown", nil, err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		lgr.Error("server_error", "Server error", "runtime", nil, err)
	}
}

// runOrderWatch re-reads one order on the feed interval and prints every
// status change until the order reaches a terminal status.
func runOrderWatch(ctx context.Context, db postgres.DB, lgr logger.Logger, cfg *config.Config, orderID string) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint
		cancel()
	}()

	orderRepo := postgres.NewOrderRepository(db)
	poller := feed.NewPoller(time.Duration(cfg.Feed.PollIntervalSeconds)*time.Second, lgr)

	var lastStatus domain.Status
	probe := func(ctx context.Context) (bool, error) {
		ord, err := orderRepo.GetByID(ctx, orderID)
		if err != nil {
			return false, err
		}
		if ord.Status != lastStatus {
			fmt.Printf("Order %s: %s\n", ord.ID, ord.Status)
			lastStatus = ord.Status
		}
		return domain.IsTerminal(ord.Status), nil
	}

	if err := poller.Run(ctx, "order-watch", probe); err != nil {
		if err != context.Canceled {
			lgr.Error("watch_failed", "Order watch stopped", orderID, nil, err)
		}
		return
	}
	fmt.Printf("Order %s reached final status %s\n", orderID, lastStatus)
}

func runNotificationSubscriber(ctx context.Context, mqConn rabbitmq.Connection, lgr logger.Logger) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	consumer := rabbitmq.NewConsumer(mqConn)
	notificationHandler := amqpAdapter.NewNotificationHandler(lgr)

	lgr.Info("service_started", "Notification subscriber started", "startup", nil)

	go func() {
		if err := consumer.ConsumeRiderNotifications(ctx, notificationHandler.HandleNotification); err != nil {
			lgr.Error("consumer_error", "Error consuming notifications", "runtime", nil, err)
		}
	}()

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
	<-sigint

	lgr.Info("shutdown_initiated", "Shutting down notification subscriber", "shutdown", nil)
}
