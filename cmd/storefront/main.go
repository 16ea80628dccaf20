package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"storefront/internal/api"
	"storefront/internal/cart"
	cartdb "storefront/internal/cart/db"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	checkoutkafka "storefront/internal/checkout/kafka"
	checkoutredis "storefront/internal/checkout/redis"
	"storefront/internal/config"
	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/order"
	"storefront/internal/payment"
	"storefront/internal/sse"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Close()

	// --- Durable cart storage (local sqlite) ---
	sqldb, err := sql.Open("sqlite", cfg.Database.Path)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open cart database: %v", err))
	}
	defer sqldb.Close()

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	cartdb.Migrate(bunDB)
	cartRepo := &cartdb.DB{Bun: bunDB}

	// --- Redis (checkout locks) ---
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("REDIS", fmt.Sprintf("Failed to connect to Redis: %v", err))
	}
	checkoutLock := checkoutredis.NewLock(redisClient, log, cfg.Gateway.CheckoutTTL+5*time.Minute)

	// --- Kafka (checkout lifecycle events) ---
	mockMode := cfg.Kafka.MockMode || !cfg.Kafka.Enabled
	producer := checkoutkafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, log, mockMode)
	defer producer.Close()

	// --- Collaborator clients ---
	httpClient := &http.Client{Timeout: 15 * time.Second}
	catalogClient := catalog.NewClient(cfg.Backend.CatalogURL, httpClient, log)
	orderClient := order.NewClient(cfg.Backend.OrderURL, httpClient, log)
	paymentClient := payment.NewClient(cfg.Backend.PaymentURL, httpClient, log)

	gateway := checkout.NewWidgetGateway(cfg.Gateway.KeyID, log)
	if !gateway.Available() {
		log.Warn("GATEWAY", "No gateway key configured; checkouts will complete without the payment widget")
	}

	emitter := sse.NewCartEventEmitter()

	registry := api.NewRegistry(func(userID string) *api.UserSession {
		store := cart.NewStore(cartRepo, userID, log)
		store.Subscribe(func(snapshot models.Cart) {
			emitter.Broadcast(userID, snapshot)
		})
		orchestrator := checkout.NewOrchestrator(userID, store, orderClient, paymentClient,
			gateway, checkoutLock, producer, log, checkout.Options{
				Currency:    cfg.Gateway.Currency,
				GatewayKey:  cfg.Gateway.KeyID,
				CheckoutTTL: cfg.Gateway.CheckoutTTL,
			})
		return &api.UserSession{Cart: store, Checkout: orchestrator}
	})

	handler := api.NewHandler(registry, catalogClient, emitter, log)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}))
	r.Mount("/api/v1", handler.Routes())

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", fmt.Sprintf("Storefront running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("SERVER", "Shutdown signal received")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal("SERVER", fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	log.Info("SERVER", "Server exited gracefully")
}
