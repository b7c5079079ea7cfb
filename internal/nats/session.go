package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"device-telemetry/internal/metrics"
	"device-telemetry/internal/worker"

	"github.com/nats-io/nats.go"
)

var (
	ErrConnect   = errors.New("failed to connect to NATS")
	ErrSubscribe = errors.New("failed to subscribe")
	ErrStarted   = errors.New("session already started")
)

type Config struct {
	URL           string
	Name          string
	Subject       string
	QueueGroup    string
	Username      string
	Password      string
	Token         string
	MaxReconnects int
	ReconnectWait time.Duration
	Timeout       time.Duration
}

func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		Name:          "telemetry-ingest",
		Subject:       "sensors.telemetry",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		Timeout:       5 * time.Second,
	}
}

type Session struct {
	cfg Config

	mu      sync.Mutex
	conn    *nats.Conn
	sub     *nats.Subscription
	ctx     context.Context
	handler worker.Handler
}

func New(cfg Config) *Session {
	return &Session{cfg: cfg}
}

func (s *Session) Start(ctx context.Context, handler worker.Handler) error {
	const fn = "NATSSession:Start"
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return fmt.Errorf("%s:%w", fn, ErrStarted)
	}

	conn, err := nats.Connect(s.cfg.URL, s.options()...)
	if err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrConnect, err)
	}
	s.ctx = context.WithoutCancel(ctx)
	s.handler = handler

	var sub *nats.Subscription
	if s.cfg.QueueGroup != "" {
		sub, err = conn.QueueSubscribe(s.cfg.Subject, s.cfg.QueueGroup, s.onMessage)
	} else {
		sub, err = conn.Subscribe(s.cfg.Subject, s.onMessage)
	}
	if err != nil {
		conn.Close()
		return fmt.Errorf("%s:%w:%w", fn, ErrSubscribe, err)
	}
	s.conn, s.sub = conn, sub
	metrics.SessionConnected.WithLabelValues("nats").Set(1)
	slog.InfoContext(ctx, "NATS subscribed", "url", s.cfg.URL, "subject", s.cfg.Subject, "queue", s.cfg.QueueGroup)
	return nil
}

// Stop drains the subscription so messages already delivered to the client
// still reach the handler, then closes the connection.
func (s *Session) Stop(ctx context.Context) {
	s.mu.Lock()
	conn := s.conn
	s.conn, s.sub = nil, nil
	s.mu.Unlock()
	if conn == nil {
		return
	}
	slog.InfoContext(ctx, "Closing NATS session...", "subject", s.cfg.Subject)
	if err := conn.Drain(); err != nil {
		slog.ErrorContext(ctx, "Error draining NATS connection", "error", err)
		conn.Close()
	}
	for !conn.IsClosed() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-time.After(10 * time.Millisecond):
		}
	}
	metrics.SessionConnected.WithLabelValues("nats").Set(0)
}

func (s *Session) options() []nats.Option {
	opts := []nats.Option{
		nats.Name(s.cfg.Name),
		nats.MaxReconnects(s.cfg.MaxReconnects),
		nats.ReconnectWait(s.cfg.ReconnectWait),
		nats.Timeout(s.cfg.Timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			metrics.SessionConnected.WithLabelValues("nats").Set(0)
			if err != nil {
				slog.Error("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			metrics.SessionConnected.WithLabelValues("nats").Set(1)
			slog.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	}
	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts, nats.UserInfo(s.cfg.Username, s.cfg.Password))
	}
	if s.cfg.Token != "" {
		opts = append(opts, nats.Token(s.cfg.Token))
	}
	return opts
}

func (s *Session) onMessage(msg *nats.Msg) {
	s.mu.Lock()
	ctx, handler := s.ctx, s.handler
	s.mu.Unlock()
	if handler == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	handler(ctx, msg.Data)
}
