// Command server runs the operational surface of the payment gateway:
// Prometheus metrics, health and readiness endpoints over the database
// and the optional redis in-flight backend. The engine itself is a
// library embedded by the host application; cmd/admin drives it from the
// command line.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/aroraumang/payment-gateway-stripe/internal/config"
	"github.com/aroraumang/payment-gateway-stripe/internal/domain/ports"
	"github.com/aroraumang/payment-gateway-stripe/pkg/logging"
	"github.com/aroraumang/payment-gateway-stripe/pkg/observability"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := initLogger(cfg)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	logger.Info("starting payment gateway monitor",
		ports.Int("metrics_port", cfg.Server.MetricsPort),
		ports.String("secrets_backend", cfg.Secrets.Backend))

	ctx := context.Background()

	pool, err := initDatabase(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize database", ports.Err(err))
		os.Exit(1)
	}
	defer pool.Close()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		logger.Info("redis in-flight backend monitored", ports.String("addr", cfg.Redis.Addr))
	}

	healthChecker := observability.NewHealthChecker(pool, redisClient)
	metricsServer := observability.StartMetricsServer(
		fmt.Sprintf("%d", cfg.Server.MetricsPort), healthChecker)
	logger.Info("metrics server listening", ports.Int("port", cfg.Server.MetricsPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := observability.ShutdownMetricsServer(metricsServer); err != nil {
		logger.Error("metrics server shutdown error", ports.Err(err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("redis close error", ports.Err(err))
		}
	}
	logger.Info("stopped")
}

func initLogger(cfg *config.Config) (ports.Logger, error) {
	if cfg.Logger.Development {
		return logging.NewZapLoggerDevelopment()
	}
	return logging.NewZapLoggerProduction()
}

func initDatabase(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.MaxConns = cfg.Database.MaxConns
	poolConfig.MinConns = cfg.Database.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
