package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cart-service/config"
	"cart-service/internal/api"
	"cart-service/internal/broker"
	"cart-service/internal/cart"
	"cart-service/internal/catalog"
	"cart-service/internal/checkout"
	"cart-service/internal/slot"
	"cart-service/internal/util"
	"cart-service/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env, cfg.Server.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting cart service",
		zap.String("env", cfg.Server.Env),
		zap.String("storage", cfg.Storage.Backend))

	tp, err := util.InitTracer("cart-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	kv, err := slot.Open(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to open cart storage: %v", err)
	}
	defer kv.Close()
	log.Printf("Cart storage opened (%s)", cfg.Storage.Backend)

	var publisher broker.Publisher = broker.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicCart)
		defer producer.Close()
		publisher = broker.NewEventPublisher(producer)
		log.Println("Kafka producer initialized")
	} else {
		log.Println("KAFKA_BROKERS not set, cart events are not published")
	}

	// The store is created before rehydration so the event worker sees the
	// rehydrated snapshot as its first event.
	store := cart.New(kv, cart.WithKey(cfg.Cart.Key), cart.WithLogger(logger))

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	eventWorker := worker.NewCartEventWorker(publisher, cfg.Cart.Key, 64)
	eventWorker.Attach(store)
	go func() {
		if err := eventWorker.Start(workerCtx); err != nil {
			log.Printf("Cart event worker error: %v", err)
		}
	}()

	rehydrateCtx, rehydrateCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := store.Rehydrate(rehydrateCtx); err != nil {
		rehydrateCancel()
		log.Fatalf("Failed to rehydrate cart: %v", err)
	}
	rehydrateCancel()

	checkoutService := checkout.NewService(publisher, cfg.Cart.Key, cfg.Checkout.Delay)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(store, catalog.NewStatic(), checkoutService)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	eventWorker.Stop()

	log.Println("Server exited")
}
