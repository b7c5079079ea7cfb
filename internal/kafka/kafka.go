package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"device-telemetry/internal/metrics"
	"device-telemetry/internal/worker"

	"github.com/segmentio/kafka-go"
)

var ErrReadMessage = errors.New("error reading message")

type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Config struct {
	Brokers         []string
	ConsumerGroupID string
	ConsumerTopic   string
}

// Session consumes telemetry from a Kafka topic through a consumer group.
// Offsets are committed as soon as the handler returns.
type Session struct {
	reader  Reader
	worker  *worker.Worker
	handler worker.Handler

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(cfg Config) *Session {
	return newSession(kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		GroupID: cfg.ConsumerGroupID,
		Topic:   cfg.ConsumerTopic,
	}))
}

func newSession(reader Reader) *Session {
	s := &Session{reader: reader}
	s.worker = worker.New(worker.Config{
		Name:      "kafka-session",
		Processor: s,
	})
	return s
}

func (s *Session) Start(ctx context.Context, handler worker.Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return errors.New("kafka session already started")
	}
	s.handler = handler
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		metrics.SessionConnected.WithLabelValues("kafka").Set(1)
		defer metrics.SessionConnected.WithLabelValues("kafka").Set(0)
		s.worker.Run(runCtx)
	}()
	return nil
}

// Auto-commit active
func (s *Session) ProcessMessage(ctx context.Context) error {
	const fn = "KafkaSession:ProcessMessage"
	m, err := s.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return worker.ErrStopped
		}
		return fmt.Errorf("%s:%w:%w", fn, ErrReadMessage, err)
	}
	s.handler(ctx, m.Value)
	return nil
}

func (s *Session) Stop(ctx context.Context) {
	slog.InfoContext(ctx, "Closing kafka session...")
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel != nil {
		cancel()
		select {
		case <-done:
		case <-ctx.Done():
		}
	}
	if err := s.reader.Close(); err != nil {
		slog.ErrorContext(ctx, "Error closing kafka reader", "error", err)
	}
}
