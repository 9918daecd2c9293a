// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"booking-dialogue/internal/api"
	"booking-dialogue/internal/booking"
	"booking-dialogue/internal/catalog"
	commonaws "booking-dialogue/internal/common/aws"
	"booking-dialogue/internal/common/camunda"
	"booking-dialogue/internal/common/config"
	"booking-dialogue/internal/common/database"
	apperrors "booking-dialogue/internal/common/errors"
	"booking-dialogue/internal/common/logger"
	"booking-dialogue/internal/common/observability"
	"booking-dialogue/internal/conversation"
	"booking-dialogue/internal/dialogue/engine"
	"booking-dialogue/internal/dialogue/workflow"
	"booking-dialogue/internal/notify"
	"booking-dialogue/internal/state"

	qrp "booking-dialogue/internal/workers/booking/quote-rental-price"
	srb "booking-dialogue/internal/workers/booking/save-rental-booking"
	sbc "booking-dialogue/internal/workers/communication/send-booking-confirmation"
	pdt "booking-dialogue/internal/workers/dialogue/process-dialogue-turn"
)

const (
	defaultMemoryStateTTL = 24 * time.Hour
	memorySweepInterval   = time.Minute
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
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).With(map[string]interface{}{
		"app":     cfg.App.Name,
		"version": cfg.App.Version,
	})

	zapLog.Info("Starting worker manager...", zap.String("environment", cfg.App.Environment))

	obs := observability.New(cfg.App.Name, cfg.Tracing, log)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ready := map[string]api.ReadinessCheck{}

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()
	ready["zeebe"] = zeebe.HealthCheck
	zapLog.Info("Zeebe client connected successfully")

	// --- Optional backends ---
	var backends catalog.Backends

	if cfg.Database.Postgres.Host != "" {
		err = retryWithBackoff(func() error {
			pg, err := database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return apperrors.NewDatabaseConnectionFailedError(err)
			}
			if err := pg.Ping(ctx); err != nil {
				pg.Close()
				return apperrors.NewDatabaseConnectionFailedError(err)
			}
			backends.Postgres = pg
			return nil
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer backends.Postgres.Close()
		ready["postgres"] = backends.Postgres.Ping
		zapLog.Info("PostgreSQL connected successfully")
	}

	if cfg.Database.Redis.Address != "" {
		err = retryWithBackoff(func() error {
			rdb, err := database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			if err := rdb.Ping(ctx); err != nil {
				rdb.Close()
				return err
			}
			backends.Redis = rdb
			return nil
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer backends.Redis.Close()
		ready["redis"] = backends.Redis.Ping
		zapLog.Info("Redis connected successfully")
	}

	if cfg.Database.Elasticsearch.GetURL() != "" {
		err = retryWithBackoff(func() error {
			es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			if err := es.Ping(); err != nil {
				return err
			}
			backends.Elasticsearch = es
			return nil
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		ready["elasticsearch"] = func(context.Context) error { return backends.Elasticsearch.Ping() }
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Dialogue ---
	registry, err := workflow.LoadRegistry(cfg.Dialogue.WorkflowFile, cfg.Dialogue.DefaultWorkflow)
	if err != nil {
		zapLog.Fatal("workflow definitions rejected", zap.Error(apperrors.NewWorkflowDefinitionInvalidError(err)))
	}
	zapLog.Info("workflows loaded", zap.Strings("types", registry.Types()))
	eng := engine.New(registry)

	agents, err := catalog.NewFromConfig(cfg.Catalog, backends, log)
	if err != nil {
		zapLog.Fatal("catalog setup failed", zap.Error(err))
	}
	if err := agents.Reload(ctx); err != nil {
		zapLog.Warn("initial catalog load failed", zap.Error(err))
	}
	if cfg.Catalog.Watch && cfg.Catalog.Source == config.CatalogSourceFile {
		go func() {
			if err := agents.Watch(ctx, cfg.Catalog.Dir); err != nil && !errors.Is(err, context.Canceled) {
				zapLog.Error("catalog watch stopped", zap.Error(err))
			}
		}()
	}
	ready["catalog"] = func(ctx context.Context) error {
		_, err := agents.List(ctx)
		return err
	}

	stateTTL := config.GetDuration(cfg.Dialogue.StateTTL)
	var states state.Store
	if backends.Redis != nil {
		states = state.NewRedisStore(backends.Redis, stateTTL)
	} else {
		if stateTTL <= 0 {
			stateTTL = defaultMemoryStateTTL
		}
		mem := state.NewMemoryStore(stateTTL)
		go mem.Run(ctx, memorySweepInterval)
		states = mem
		zapLog.Warn("redis not configured, conversation state kept in process memory",
			zap.Duration("ttl", stateTTL))
	}

	chat := conversation.NewService(eng, agents, states, zeebe, obs, log)

	// --- Workers ---
	jobs := zeebe.GetClient()
	var workers []*camunda.CamundaWorker

	workers = append(workers, camunda.StartWorker(jobs, pdt.TaskType, config.GetWorkerConfig(cfg, pdt.TaskType),
		pdt.NewHandler(pdt.LoadConfig(cfg), eng, agents, log).Handle, obs, log))

	workers = append(workers, camunda.StartWorker(jobs, qrp.TaskType, config.GetWorkerConfig(cfg, qrp.TaskType),
		qrp.NewHandler(qrp.LoadConfig(cfg), agents, log).Handle, obs, log))

	if backends.Postgres != nil {
		bookings := booking.NewRepository(backends.Postgres)

		workers = append(workers, camunda.StartWorker(jobs, srb.TaskType, config.GetWorkerConfig(cfg, srb.TaskType),
			srb.NewHandler(srb.LoadConfig(cfg), bookings, log).Handle, obs, log))

		notifier := newNotifier(ctx, cfg.Notifications, log, zapLog)
		workers = append(workers, camunda.StartWorker(jobs, sbc.TaskType, config.GetWorkerConfig(cfg, sbc.TaskType),
			sbc.NewHandler(sbc.LoadConfig(cfg), sbc.ServiceDependencies{
				Repository: bookings,
				Notifier:   notifier,
				Logger:     log,
			}).Handle, obs, log))
	} else {
		zapLog.Warn("postgres not configured, booking workers not started",
			zap.Strings("taskTypes", []string{srb.TaskType, sbc.TaskType}))
	}

	// --- HTTP API, health & metrics ---
	srv := &http.Server{
		Addr: cfg.HTTP.Address,
		Handler: api.NewRouter(api.Options{
			Config:  cfg.HTTP,
			Catalog: agents,
			Chat:    chat,
			Ready:   ready,
			Logger:  log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.HTTP.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	for _, w := range workers {
		w.Stop()
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// newNotifier builds the SES and SNS clients for the enabled channels.
// A channel whose client cannot be created is left out.
func newNotifier(ctx context.Context, cfg config.NotificationConfig, log logger.Logger, zapLog *zap.Logger) *notify.Notifier {
	var (
		sesClient notify.SESService
		snsClient notify.SNSService
	)
	if cfg.Email.Enabled {
		if c, err := commonaws.NewSESClient(ctx, cfg.AWS.Region); err != nil {
			zapLog.Error("SES client unavailable, email confirmations disabled", zap.Error(err))
		} else {
			sesClient = c
		}
	}
	if cfg.SMS.Enabled {
		if c, err := commonaws.NewSNSClient(ctx, cfg.AWS.Region); err != nil {
			zapLog.Error("SNS client unavailable, SMS confirmations disabled", zap.Error(err))
		} else {
			snsClient = c
		}
	}
	return notify.NewNotifier(cfg, sesClient, snsClient, log)
}
