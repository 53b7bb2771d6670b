// cmd/leadgen-server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"raiox-platform/internal/common/auth"
	"raiox-platform/internal/common/camunda"
	"raiox-platform/internal/common/config"
	"raiox-platform/internal/common/database"
	"raiox-platform/internal/common/logger"
	"raiox-platform/internal/common/observability"
	"raiox-platform/internal/leads"
	"raiox-platform/internal/server"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "json")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting leadgen server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("leadgen-server")
	defer obs.Shutdown()

	tracing, err := observability.NewTracing("leadgen-server", cfg.Telemetry.JaegerEndpoint)
	if err != nil {
		zapLog.Warn("tracing init failed, continuing without it", zap.Error(err))
	} else {
		defer tracing.Shutdown()
	}

	ctx := context.Background()

	// --- PostgreSQL (required) ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()

	if err := leads.Migrate(pg.DB); err != nil {
		zapLog.Fatal("migrations failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL ready, schema migrated")

	// --- Redis (required: sessions + cache) ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Elasticsearch (optional: back-office search only) ---
	var searcher server.LeadSearcher
	if esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch); err != nil {
		zapLog.Warn("elasticsearch unavailable, search disabled", zap.Error(err))
	} else if err := esClient.Ping(); err != nil {
		zapLog.Warn("elasticsearch unreachable, search disabled", zap.Error(err))
	} else {
		searcher = leads.NewSearchIndex(esClient.Client, cfg.Database.Elasticsearch.LeadIndex)
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Camunda (optional: scoring answers synchronously without it) ---
	var pipeline server.PipelineStarter
	if zeebe, err := camunda.NewClient(cfg.Camunda.BrokerAddress); err != nil {
		zapLog.Warn("zeebe unavailable, pipeline start disabled", zap.Error(err))
	} else {
		defer zeebe.Close()
		pipeline = zeebe
		zapLog.Info("Zeebe client connected successfully")
	}

	repo := leads.NewRepository(pg.DB, rdb.Client, log)
	sessions := auth.NewSessionStore(rdb.Client, cfg.Admin)

	srv := server.New(server.Options{
		Config:   cfg,
		Logger:   log,
		Store:    repo,
		Searcher: searcher,
		Sessions: sessions,
		Pipeline: pipeline,
		DB:       pg.DB,
		Redis:    rdb.Client,
	})

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(runCtx); err != nil {
		zapLog.Fatal("http server failed", zap.Error(err))
	}
	zapLog.Info("Leadgen server stopped gracefully")
}
