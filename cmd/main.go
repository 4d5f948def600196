package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"github.com/Jalwan0x/backend-cloud/config"
	httphandler "github.com/Jalwan0x/backend-cloud/handler/http"
	"github.com/Jalwan0x/backend-cloud/internal/kafka"
	"github.com/Jalwan0x/backend-cloud/internal/ratelimit"
	"github.com/Jalwan0x/backend-cloud/service"
	"github.com/Jalwan0x/backend-cloud/shopify"
	"github.com/Jalwan0x/backend-cloud/store"
)

func main() {
	// .env is optional; container deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded, using environment")
	}

	cfg := config.LoadConfig()
	if cfg.SHOPIFY_API_KEY == "" || cfg.SHOPIFY_API_SECRET == "" {
		log.Fatal("SHOPIFY_API_KEY and SHOPIFY_API_SECRET must be set")
	}

	pgStore, err := store.NewPostgresStore(cfg.GetDBURL())
	if err != nil {
		log.Fatalf("failed to create store: %v", err)
	}
	defer pgStore.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := pgStore.EnsureSchema(ctx); err != nil {
		cancel()
		log.Fatalf("failed to ensure database schema: %v", err)
	}
	cancel()

	var producer kafka.Publisher
	if cfg.KAFKA_BROKER != "" {
		p := kafka.NewProducer(cfg.KAFKA_BROKER, cfg.KAFKA_TOPIC)
		defer p.Close()
		producer = p
	} else {
		log.Println("KAFKA_BROKER not set, event publishing disabled")
	}

	adminClient := shopify.NewClient(cfg.SHOPIFY_API_VERSION)
	svc := service.NewShippingService(pgStore, pgStore, adminClient, producer)

	// 30 requests per minute per shop on the admin endpoints.
	limiter := ratelimit.NewLimiter(time.Minute, 30)

	server := httphandler.NewServer(svc, cfg.SHOPIFY_API_SECRET, limiter)

	addr := ":" + cfg.PORT
	log.Printf("shipping service listening on %s", addr)
	if err := http.ListenAndServe(addr, server.Routes()); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
