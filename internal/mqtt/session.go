package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"device-telemetry/internal/metrics"
	"device-telemetry/internal/worker"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

var (
	ErrConnect    = errors.New("error connecting to broker")
	ErrTLSConfig  = errors.New("error building tls config")
	ErrStarted    = errors.New("session already started")
	ErrInvalidQoS = errors.New("qos must be 0, 1 or 2")
)

// milliseconds paho waits for in-flight work on Disconnect
const disconnectQuiesce = 250

type Config struct {
	Broker   string
	Port     int
	Topic    string
	ClientID string
	Username string
	Password string
	QoS      byte

	UseTLS     bool
	CACertPath string

	KeepAlive            time.Duration
	ConnectTimeout       time.Duration
	ConnectRetryInterval time.Duration
	CleanSession         bool
}

// Session owns one broker connection and its subscription. Paho reconnects on
// its own and OnConnect subscribes again after every reconnect.
type Session struct {
	cfg Config

	mu      sync.Mutex
	client  paho.Client
	ctx     context.Context
	handler worker.Handler
}

func New(cfg Config) *Session {
	if cfg.ClientID == "" {
		cfg.ClientID = "telemetry-ingest"
	}
	cfg.ClientID = fmt.Sprintf("%s-%s", cfg.ClientID, uuid.NewString()[:8])
	return &Session{cfg: cfg}
}

func (s *Session) Start(ctx context.Context, handler worker.Handler) error {
	const fn = "MQTTSession:Start"
	if s.cfg.QoS > 2 {
		return fmt.Errorf("%s:%w", fn, ErrInvalidQoS)
	}
	opts, err := s.clientOptions()
	if err != nil {
		return fmt.Errorf("%s:%w", fn, err)
	}

	s.mu.Lock()
	if s.client != nil {
		s.mu.Unlock()
		return fmt.Errorf("%s:%w", fn, ErrStarted)
	}
	s.ctx = context.WithoutCancel(ctx)
	s.handler = handler
	client := paho.NewClient(opts)
	s.client = client
	s.mu.Unlock()

	slog.InfoContext(ctx, "Connecting to MQTT broker", "broker", s.brokerURL(), "client_id", s.cfg.ClientID)
	token := client.Connect()
	if !token.WaitTimeout(s.connectTimeout()) {
		slog.WarnContext(ctx, "MQTT broker not reachable yet, retrying in background", "broker", s.brokerURL())
		return nil
	}
	if err := token.Error(); err != nil {
		s.mu.Lock()
		s.client = nil
		s.mu.Unlock()
		return fmt.Errorf("%s:%w:%w", fn, ErrConnect, err)
	}
	return nil
}

func (s *Session) Stop(ctx context.Context) {
	s.mu.Lock()
	client := s.client
	s.client = nil
	s.mu.Unlock()
	if client == nil {
		return
	}
	slog.InfoContext(ctx, "Closing MQTT session...", "topic", s.cfg.Topic)
	if client.IsConnected() {
		token := client.Unsubscribe(s.cfg.Topic)
		if !token.WaitTimeout(time.Second) {
			slog.WarnContext(ctx, "Timed out unsubscribing", "topic", s.cfg.Topic)
		} else if err := token.Error(); err != nil {
			slog.ErrorContext(ctx, "Error unsubscribing", "topic", s.cfg.Topic, "error", err)
		}
	}
	client.Disconnect(disconnectQuiesce)
	metrics.SessionConnected.WithLabelValues("mqtt").Set(0)
}

func (s *Session) clientOptions() (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().
		AddBroker(s.brokerURL()).
		SetClientID(s.cfg.ClientID).
		SetOrderMatters(true).
		SetKeepAlive(s.cfg.KeepAlive).
		SetPingTimeout(10 * time.Second).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(s.cfg.ConnectRetryInterval).
		SetCleanSession(s.cfg.CleanSession)

	if s.cfg.Username != "" {
		opts.SetUsername(s.cfg.Username)
		opts.SetPassword(s.cfg.Password)
	}

	if s.cfg.UseTLS {
		tlsCfg, err := tlsConfig(s.cfg.CACertPath)
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}

	opts.OnConnectionLost = func(_ paho.Client, err error) {
		metrics.SessionConnected.WithLabelValues("mqtt").Set(0)
		slog.Error("MQTT connection lost", "broker", s.brokerURL(), "error", err)
	}
	opts.OnReconnecting = func(paho.Client, *paho.ClientOptions) {
		slog.Info("MQTT reconnecting", "broker", s.brokerURL())
	}
	opts.OnConnect = s.onConnect
	return opts, nil
}

func (s *Session) onConnect(c paho.Client) {
	metrics.SessionConnected.WithLabelValues("mqtt").Set(1)
	slog.Info("MQTT connected, subscribing to topic", "topic", s.cfg.Topic, "qos", s.cfg.QoS)
	if token := c.Subscribe(s.cfg.Topic, s.cfg.QoS, s.onMessage); token.Wait() && token.Error() != nil {
		slog.Error("Failed to subscribe to MQTT topic", "topic", s.cfg.Topic, "error", token.Error())
	}
}

func (s *Session) onMessage(_ paho.Client, m paho.Message) {
	s.mu.Lock()
	ctx, handler := s.ctx, s.handler
	s.mu.Unlock()
	if handler == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	slog.DebugContext(ctx, "Received MQTT message", "topic", m.Topic(), "bytes", len(m.Payload()))
	handler(ctx, m.Payload())
}

func (s *Session) connectTimeout() time.Duration {
	if s.cfg.ConnectTimeout <= 0 {
		return 10 * time.Second
	}
	return s.cfg.ConnectTimeout
}

func (s *Session) brokerURL() string {
	scheme := "tcp"
	if s.cfg.UseTLS {
		scheme = "ssl"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, s.cfg.Broker, s.cfg.Port)
}

func tlsConfig(caFile string) (*tls.Config, error) {
	const fn = "MQTTSession:tlsConfig"
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if caFile == "" {
		return cfg, nil
	}
	ca, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("%s:%w:%w", fn, ErrTLSConfig, err)
	}
	cp := x509.NewCertPool()
	if !cp.AppendCertsFromPEM(ca) {
		return nil, fmt.Errorf("%s:%w: no certificates in %s", fn, ErrTLSConfig, caFile)
	}
	cfg.RootCAs = cp
	return cfg, nil
}
