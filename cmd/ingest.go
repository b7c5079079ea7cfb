package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"device-telemetry/internal/cache"
	"device-telemetry/internal/config"
	"device-telemetry/internal/db"
	"device-telemetry/internal/kafka"
	"device-telemetry/internal/metrics"
	"device-telemetry/internal/mqtt"
	"device-telemetry/internal/nats"
	"device-telemetry/internal/processors/ingestor"
	"device-telemetry/internal/sink"
	"device-telemetry/internal/worker"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// session delivers raw payloads from one transport subscription.
type session interface {
	Start(ctx context.Context, handler worker.Handler) error
	Stop(ctx context.Context)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Subscribe to device telemetry and store accepted events",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()
		return runIngest(ctx, cfg)
	},
}

func runIngest(ctx context.Context, cfg *config.Config) error {
	slog.InfoContext(ctx, "Starting ingestion service...", "transport", cfg.Transport)

	store, err := db.Init(ctx, dbConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	devices, closeCache, err := newDeviceCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer closeCache()
	if err := devices.Hydrate(ctx, store); err != nil {
		slog.WarnContext(ctx, "Failed to hydrate last seen cache", "error", err)
	} else {
		slog.InfoContext(ctx, "Cache hydrated with initial data")
		devices.Dump(ctx)
	}

	invalid, err := sink.New(sink.Config{Name: "invalid", Path: cfg.Sink.InvalidPath})
	if err != nil {
		return err
	}
	deadLetter, err := sink.New(sink.Config{Name: "dead-letter", Path: cfg.Sink.DeadLetterPath})
	if err != nil {
		return err
	}

	ing := ingestor.New(ingestor.Config{
		Store:        store,
		InvalidSink:  invalid,
		DeadLetter:   deadLetter,
		Cache:        devices,
		StoreTimeout: cfg.Pipeline.StoreTimeout,
		Retry: ingestor.RetryConfig{
			InitialInterval: cfg.Pipeline.RetryInitial,
			MaxInterval:     cfg.Pipeline.RetryMax,
			MaxElapsedTime:  cfg.Pipeline.RetryMaxElapsed,
			MaxAttempts:     cfg.Pipeline.RetryAttempts,
		},
	})

	queue := worker.NewQueue(worker.QueueConfig{
		Name:           "ingest-queue",
		Capacity:       cfg.Pipeline.QueueCapacity,
		EnqueueTimeout: cfg.Pipeline.EnqueueTimeout,
		Handler:        ing.HandleMessage,
	})
	// The queue outlives ctx so that the backlog drains after shutdown starts.
	runCtx, cancelRun := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelRun()
	go queue.Run(runCtx)

	sess, err := newSession(cfg)
	if err != nil {
		return err
	}
	if err := sess.Start(ctx, enqueueHandler(queue, deadLetter)); err != nil {
		queue.Close()
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Server.HealthAddr(),
		Handler:      healthRouter(store),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	serveErr := serveHTTP(ctx, srv, cfg.Pipeline.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Pipeline.ShutdownTimeout)
	defer cancel()
	sess.Stop(shutdownCtx)
	drainQueue(shutdownCtx, queue, cancelRun, deadLetter)

	is, ds := invalid.Stats(), deadLetter.Stats()
	slog.InfoContext(shutdownCtx, "Ingestion service stopped",
		"invalid_written", is.Written,
		"invalid_failed", is.Failed,
		"dead_letter_written", ds.Written,
		"dead_letter_failed", ds.Failed,
	)
	return serveErr
}

type recorder interface {
	Record(ctx context.Context, raw []byte, reason string, at time.Time)
}

// drainQueue closes the queue and waits for its backlog. If ctx expires first,
// cancelRun aborts the in-flight message and every payload still queued is
// dead lettered with reason "shutdown".
func drainQueue(ctx context.Context, queue *worker.Queue, cancelRun context.CancelFunc, deadLetter recorder) {
	queue.Close()
	select {
	case <-queue.Done():
		slog.InfoContext(ctx, "Ingestion queue drained")
		return
	case <-ctx.Done():
	}

	slog.ErrorContext(ctx, "Timed out draining ingestion queue", "pending", queue.Len())
	cancelRun()
	<-queue.Done()

	recordCtx := context.WithoutCancel(ctx)
	n := queue.Drain(func(payload []byte) {
		deadLetter.Record(recordCtx, payload, "shutdown", time.Now())
	})
	slog.WarnContext(recordCtx, "Dead lettered queued messages on shutdown", "count", n)
}

// enqueueHandler is the transport callback. It never blocks longer than the
// queue's enqueue timeout; payloads that cannot be queued are dead lettered.
func enqueueHandler(queue *worker.Queue, deadLetter recorder) worker.Handler {
	return func(ctx context.Context, payload []byte) {
		if err := queue.Submit(ctx, payload); err != nil {
			metrics.QueueDropped.Inc()
			deadLetter.Record(ctx, payload, err.Error(), time.Now())
			slog.WarnContext(ctx, "Message not enqueued", "error", err, "bytes", len(payload))
		}
	}
}

func newSession(cfg *config.Config) (session, error) {
	switch cfg.Transport {
	case config.TransportMQTT:
		return mqtt.New(mqtt.Config{
			Broker:               cfg.MQTT.Broker,
			Port:                 cfg.MQTT.Port,
			Topic:                cfg.MQTT.Topic,
			ClientID:             cfg.MQTT.ClientID,
			Username:             cfg.MQTT.Username,
			Password:             cfg.MQTT.Password,
			QoS:                  byte(cfg.MQTT.QoS),
			UseTLS:               cfg.MQTT.UseTLS,
			CACertPath:           cfg.MQTT.CACertPath,
			KeepAlive:            cfg.MQTT.KeepAlive,
			ConnectTimeout:       cfg.MQTT.ConnectTimeout,
			ConnectRetryInterval: cfg.MQTT.ConnectRetryInterval,
			CleanSession:         cfg.MQTT.CleanSession,
		}), nil
	case config.TransportKafka:
		return kafka.New(kafka.Config{
			Brokers:         cfg.Kafka.Brokers,
			ConsumerGroupID: cfg.Kafka.GroupID,
			ConsumerTopic:   cfg.Kafka.Topic,
		}), nil
	case config.TransportNATS:
		natsCfg := nats.DefaultConfig()
		natsCfg.URL = cfg.NATS.URL
		natsCfg.Subject = cfg.NATS.Subject
		natsCfg.QueueGroup = cfg.NATS.QueueGroup
		natsCfg.Username = cfg.NATS.Username
		natsCfg.Password = cfg.NATS.Password
		natsCfg.Token = cfg.NATS.Token
		natsCfg.MaxReconnects = cfg.NATS.MaxReconnects
		natsCfg.ReconnectWait = cfg.NATS.ReconnectWait
		return nats.New(natsCfg), nil
	default:
		return nil, fmt.Errorf("%w: unknown transport %q", config.ErrInvalidConfig, cfg.Transport)
	}
}

func newDeviceCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, func(), error) {
	if cfg.Backend != config.CacheRedis {
		return cache.New(), func() {}, nil
	}
	rc, err := cache.NewRedis(ctx, cache.RedisConfig{URL: cfg.RedisURL, Key: cfg.RedisKey})
	if err != nil {
		return nil, nil, err
	}
	return rc, func() {
		if err := rc.Close(); err != nil {
			slog.Error("Error closing redis cache", "error", err)
		}
	}, nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

func healthRouter(store pinger) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("UNAVAILABLE"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
