/**
 * @description
 * This is the main entry point for the oracle-service. It is responsible for
 * initializing all components of the service: configuration, the KYC store
 * (Postgres or in-memory), the rate limiter backend (Redis or in-process), the
 * RabbitMQ audit-event producer, the ledger RPC client, the core application
 * service, and the HTTP server. It wires everything together and starts the
 * service.
 *
 * Every external dependency is optional: when Postgres, Redis, or RabbitMQ is
 * not configured or unreachable, the service boots with an in-process
 * substitute and logs the degradation.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - github.com/redis/go-redis/v9: Redis client for distributed rate limiting.
 * - internal/api, internal/app, internal/config, internal/store: Internal packages for the service.
 * - pkg/suiclient: Client for the ledger fullnode RPC.
 * - pkg/rabbitmq: Client for RabbitMQ.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/facterra/oracle-service/internal/api"
	"github.com/facterra/oracle-service/internal/app"
	"github.com/facterra/oracle-service/internal/config"
	"github.com/facterra/oracle-service/internal/store"
	rmrabbit "github.com/facterra/oracle-service/pkg/rabbitmq"
	"github.com/facterra/oracle-service/pkg/suiclient"
)

func main() {
	// Load a local .env file when present; environment variables win.
	if err := godotenv.Load(); err != nil {
		log.Println("level=info component=bootstrap msg=\"no .env file found; relying on environment\"")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}
	if cfg.LedgerPackageID == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"ledger package id must be configured\" env=LEDGER_PACKAGE_ID")
	}

	log.Printf("level=info component=bootstrap msg=\"starting oracle-service\" port=%s ledger_rpc=%s", cfg.ServerPort, cfg.LedgerRPCURL)

	// KYC storage: Postgres when configured, otherwise process memory.
	var kycStore store.KYCStore = store.NewMemoryKYCStore()
	if cfg.DatabaseURL != "" {
		dbpool, dbErr := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if dbErr != nil {
			log.Printf("level=warn component=bootstrap msg=\"database connection failed; using in-memory kyc store\" err=%v", dbErr)
		} else {
			defer dbpool.Close()
			pgStore := store.NewPostgresKYCStore(dbpool)
			schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 10*time.Second)
			if schemaErr := pgStore.EnsureSchema(schemaCtx); schemaErr != nil {
				cancelSchema()
				log.Printf("level=warn component=bootstrap msg=\"schema setup failed; using in-memory kyc store\" err=%v", schemaErr)
			} else {
				cancelSchema()
				kycStore = pgStore
				log.Println("level=info component=bootstrap msg=\"database connected\"")
			}
		}
	} else {
		log.Println("level=info component=bootstrap msg=\"no database configured; kyc records are in-memory only\"")
	}

	// Rate limiting: Redis when configured, otherwise a per-process limiter.
	var limiter app.RateLimiter = app.NewMemoryRateLimiter()
	if cfg.RedisURL != "" {
		redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
		if parseErr != nil {
			log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; using in-memory rate limiter\" err=%v", parseErr)
		} else {
			redisClient := redis.NewClient(redisOptions)
			pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
			pingErr := redisClient.Ping(pingCtx).Err()
			cancelPing()
			if pingErr != nil {
				log.Printf("level=warn component=bootstrap msg=\"redis ping failed; using in-memory rate limiter\" err=%v", pingErr)
				redisClient.Close()
			} else {
				defer redisClient.Close()
				limiter = app.NewRedisRateLimiter(redisClient, cfg.RedisRateLimitPrefix)
				log.Println("level=info component=bootstrap msg=\"redis connected\"")
			}
		}
	}

	// Audit events: RabbitMQ when reachable, otherwise a logging no-op.
	var producer rmrabbit.Publisher = &rmrabbit.EventProducerFallback{}
	if cfg.RabbitMQURL != "" {
		rabbitProducer, rmErr := rmrabbit.NewEventProducer(cfg.RabbitMQURL, cfg.EventExchange)
		if rmErr != nil {
			log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", rmErr)
		} else {
			defer rabbitProducer.Close()
			producer = rabbitProducer
			log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
		}
	}

	ledgerClient := suiclient.NewClient(cfg.LedgerRPCURL)

	oracleService := app.NewService(
		ledgerClient,
		app.NewMockSigner(),
		kycStore,
		producer,
		cfg.LedgerPackageID,
		cfg.EventPageLimit,
	)

	handlers := api.NewHandlers(oracleService)
	router := api.Routes(handlers, limiter, api.RouterConfig{
		AllowedOrigins:      splitOrigins(cfg.CORSAllowedOrigins),
		RequestTimeout:      time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		RateLimitWindow:     time.Minute,
		KYCRatePerWindow:    cfg.KYCRateLimitPerMinute,
		OracleRatePerWindow: cfg.OracleRateLimitPerMinute,
	})

	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	log.Println("level=info component=http msg=\"shutdown complete\"")
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}
