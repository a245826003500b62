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

	"github.com/joho/godotenv"
	"github.com/jonasahlin/matbit/internal/adapter/logger"
	"github.com/jonasahlin/matbit/internal/adapter/postgres"
	"github.com/jonasahlin/matbit/internal/adapter/rabbitmq"
	"github.com/jonasahlin/matbit/internal/adapter/redis"
	"github.com/jonasahlin/matbit/internal/app/admin"
	"github.com/jonasahlin/matbit/internal/app/autoapply"
	"github.com/jonasahlin/matbit/internal/app/cart"
	"github.com/jonasahlin/matbit/internal/app/checkout"
	"github.com/jonasahlin/matbit/internal/app/coupon"
	"github.com/jonasahlin/matbit/internal/config"
	"github.com/jonasahlin/matbit/internal/interfaces"

	amqpAdapter "github.com/jonasahlin/matbit/internal/adapter/amqp"
	httpAdapter "github.com/jonasahlin/matbit/internal/adapter/http"
)

func main() {
	mode := flag.String("mode", "", "Service mode: api-server, campaign-selector, notification-subscriber")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	if *mode == "" {
		log.Fatal("--mode flag is required")
	}

	// Optional .env for local development; values feed the config file via
	// environment expansion and LOG_DEBUG.
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.HTTP.Port = *port
	}

	ctx := context.Background()
	lgr := logger.New(*mode)

	switch *mode {
	case "api-server":
		runAPIServer(ctx, cfg, lgr)
	case "campaign-selector":
		runCampaignSelector(ctx, cfg, lgr)
	case "notification-subscriber":
		runNotificationSubscriber(ctx, cfg, lgr)
	default:
		log.Fatalf("Invalid mode: %s", *mode)
	}
}

func runAPIServer(ctx context.Context, cfg *config.Config, lgr logger.Logger) {
	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]interface{}{
		"host": cfg.Database.Host,
		"db":   cfg.Database.Database,
	})

	kv, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer mqConn.Close()

	lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
		"host": cfg.RabbitMQ.Host,
	})

	menuRepo := postgres.NewMenuRepository(db)
	campaignRepo := postgres.NewCampaignRepository(db)
	orderRepo := postgres.NewOrderRepository(db)
	usageRepo := postgres.NewUsageRepository(db)
	userRepo := postgres.NewUserRepository(db)
	newsRepo := postgres.NewNewsRepository(db)
	contactRepo := postgres.NewContactRepository(db)

	publisher := rabbitmq.NewPublisher(mqConn)

	evaluator := coupon.NewEvaluator(campaignRepo, usageRepo, lgr)
	cartSvc := cart.NewService(menuRepo, evaluator, kv, lgr, cfg.Cart.TTL)
	checkoutSvc := checkout.NewService(cartSvc, evaluator, orderRepo, usageRepo, publisher, lgr)
	adminSvc := admin.NewService(userRepo, orderRepo, menuRepo, campaignRepo, publisher, lgr, cfg.Admin.CacheTTL)

	publicHandler := httpAdapter.NewPublicHandler(menuRepo, campaignRepo, newsRepo, contactRepo, lgr)
	cartHandler := httpAdapter.NewCartHandler(cartSvc, checkoutSvc, orderRepo, lgr)
	adminHandler := httpAdapter.NewAdminHandler(adminSvc, campaignRepo, orderRepo, newsRepo, contactRepo, lgr)

	router := httpAdapter.NewRouter(publicHandler, cartHandler, adminHandler, cfg.Admin, lgr)
	server := httpAdapter.NewServer(router, cfg.HTTP)

	lgr.Info("service_started", fmt.Sprintf("API server started on port %d", cfg.HTTP.Port), "startup", map[string]interface{}{
		"port": cfg.HTTP.Port,
	})

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		lgr.Info("shutdown_initiated", "Shutting down API server", "shutdown", nil)

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

func runCampaignSelector(ctx context.Context, cfg *config.Config, lgr logger.Logger) {
	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	kv, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer mqConn.Close()

	campaignRepo := postgres.NewCampaignRepository(db)
	selector := autoapply.NewSelector(campaignRepo, kv, lgr)
	consumer := rabbitmq.NewConsumer(mqConn, lgr)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		lgr.Info("shutdown_initiated", "Shutting down campaign selector", "shutdown", nil)
		cancel()
	}()

	// Campaign mutations trigger an immediate recompute.
	go func() {
		if err := consumer.ConsumeCampaignEvents(runCtx, selector.CampaignEventHandler()); err != nil && runCtx.Err() == nil {
			lgr.Error("consumer_stopped", "Campaign event consumer stopped", "runtime", nil, err)
		}
	}()

	lgr.Info("service_started", "Campaign selector started", "startup", nil)

	if err := selector.Run(runCtx); err != nil && err != context.Canceled {
		lgr.Error("selector_error", "Campaign selector error", "runtime", nil, err)
	}
}

func runNotificationSubscriber(ctx context.Context, cfg *config.Config, lgr logger.Logger) {
	mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer mqConn.Close()

	consumer := rabbitmq.NewConsumer(mqConn, lgr)
	handler := amqpAdapter.NewNotificationHandler(lgr)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		lgr.Info("shutdown_initiated", "Shutting down notification subscriber", "shutdown", nil)
		cancel()
	}()

	lgr.Info("service_started", "Notification subscriber started", "startup", nil)

	var h interfaces.NotificationHandler = handler.HandleNotification
	if err := consumer.ConsumeNotifications(runCtx, h); err != nil && err != context.Canceled {
		lgr.Error("subscriber_error", "Notification subscriber error", "runtime", nil, err)
	}
}
