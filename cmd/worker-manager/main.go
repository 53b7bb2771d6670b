// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	awsclients "raiox-platform/internal/common/aws"
	"raiox-platform/internal/common/camunda"
	"raiox-platform/internal/common/config"
	"raiox-platform/internal/common/database"
	"raiox-platform/internal/common/logger"
	"raiox-platform/internal/common/observability"
	"raiox-platform/internal/common/zoho"
	"raiox-platform/internal/leads"

	an "raiox-platform/internal/workers/lead/augment-narrative"
	il "raiox-platform/internal/workers/lead/index-lead"
	ns "raiox-platform/internal/workers/lead/notify-sales"
	pl "raiox-platform/internal/workers/lead/persist-lead"
	sl "raiox-platform/internal/workers/lead/score-lead"
	sc "raiox-platform/internal/workers/lead/sync-crm"
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
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	tracing, err := observability.NewTracing("worker-manager", cfg.Telemetry.JaegerEndpoint)
	if err != nil {
		zapLog.Warn("tracing init failed, continuing without it", zap.Error(err))
	} else {
		defer tracing.Shutdown()
	}

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebeClient zbc.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
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
	zapLog.Info("PostgreSQL connected successfully")

	if err := leads.Migrate(pg.DB); err != nil {
		zapLog.Fatal("migrations failed", zap.Error(err))
	}

	// --- Init Redis with retry ---
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

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Shared domain services ---
	repo := leads.NewRepository(pg.DB, rdb.Client, log)
	searchIndex := leads.NewSearchIndex(esClient.Client, cfg.Database.Elasticsearch.LeadIndex)
	crmClient := zoho.NewCRMClient(cfg.Integrations.Zoho.APIKey, cfg.Integrations.Zoho.AuthToken)

	var emailSender awsclients.EmailSender
	var smsPublisher awsclients.SMSPublisher
	if cfg.Notifications.Email.Enabled {
		sesClient, err := awsclients.NewSESClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client init failed", zap.Error(err))
		}
		emailSender = sesClient
	}
	if cfg.Notifications.SMS.Enabled {
		snsClient, err := awsclients.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
		smsPublisher = snsClient
	}

	zapLog.Info("All external service clients initialized")

	// --- Register lead pipeline workers ---
	var workers []*camunda.PipelineWorker
	if cfg.Workers[sl.TaskType].Enabled {
		handler := sl.NewHandler(
			&sl.Config{
				Timeout: cfg.Workers[sl.TaskType].JobTimeout(),
			},
			log,
		)
		workers = append(workers, camunda.StartWorker(zeebeClient, sl.TaskType, cfg.Workers[sl.TaskType], handler.Handle, zapLog))
	}

	if cfg.Workers[pl.TaskType].Enabled {
		handler := pl.NewHandler(
			&pl.Config{
				Timeout: cfg.Workers[pl.TaskType].JobTimeout(),
			},
			repo, log,
		)
		workers = append(workers, camunda.StartWorker(zeebeClient, pl.TaskType, cfg.Workers[pl.TaskType], handler.Handle, zapLog))
	}

	if cfg.Workers[an.TaskType].Enabled {
		handler := an.NewHandler(
			&an.Config{
				BaseURL:    cfg.Integrations.GenAI.BaseURL,
				APIKey:     cfg.Integrations.GenAI.APIKey,
				Model:      cfg.Integrations.GenAI.Model,
				Timeout:    cfg.Workers[an.TaskType].JobTimeout(),
				MaxRetries: 2,
				MaxTokens:  600,
			},
			repo, log,
		)
		workers = append(workers, camunda.StartWorker(zeebeClient, an.TaskType, cfg.Workers[an.TaskType], handler.Handle, zapLog))
	}

	if cfg.Workers[ns.TaskType].Enabled {
		nsCfg := ns.LoadConfig(cfg.Notifications)
		nsCfg.Timeout = cfg.Workers[ns.TaskType].JobTimeout()
		handler := ns.NewHandler(nsCfg, emailSender, smsPublisher, log)
		workers = append(workers, camunda.StartWorker(zeebeClient, ns.TaskType, cfg.Workers[ns.TaskType], handler.Handle, zapLog))
	}

	if cfg.Workers[il.TaskType].Enabled {
		handler := il.NewHandler(
			&il.Config{
				Timeout: cfg.Workers[il.TaskType].JobTimeout(),
			},
			repo, searchIndex, log,
		)
		workers = append(workers, camunda.StartWorker(zeebeClient, il.TaskType, cfg.Workers[il.TaskType], handler.Handle, zapLog))
	}

	if cfg.Workers[sc.TaskType].Enabled {
		scCfg := sc.LoadConfig()
		scCfg.Timeout = cfg.Workers[sc.TaskType].JobTimeout()
		handler := sc.NewHandler(scCfg, repo, crmClient, log)
		workers = append(workers, camunda.StartWorker(zeebeClient, sc.TaskType, cfg.Workers[sc.TaskType], handler.Handle, zapLog))
	}

	zapLog.Info("All lead pipeline workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			status := http.StatusOK
			body := map[string]string{"status": "ready", "time": time.Now().Format(time.RFC3339)}
			if err := pg.Ping(r.Context()); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "postgres unavailable"
			}
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(body)
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8081")
		if err := http.ListenAndServe(":8081", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	for _, w := range workers {
		w.Close()
	}

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
