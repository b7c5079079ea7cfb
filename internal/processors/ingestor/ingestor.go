package ingestor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"device-telemetry/internal/cache"
	"device-telemetry/internal/db"
	"device-telemetry/internal/metrics"
	"device-telemetry/internal/validator"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
)

var ErrStorage = errors.New("storage error")

type Outcome int

const (
	Rejected Outcome = iota + 1
	Persisted
	StorageFailed
)

func (o Outcome) String() string {
	switch o {
	case Rejected:
		return metrics.OutcomeRejected
	case Persisted:
		return metrics.OutcomePersisted
	case StorageFailed:
		return metrics.OutcomeStorageFailed
	default:
		return "unknown"
	}
}

const maxPayloadSummary = 256

type eventStore interface {
	RecordEvent(ctx context.Context, event db.NewEvent) (int64, error)
}

type messageSink interface {
	Record(ctx context.Context, raw []byte, reason string, at time.Time)
}

type deviceCache interface {
	Get(ctx context.Context, deviceID string) (cache.DeviceState, bool, error)
	Advance(ctx context.Context, deviceID string, seenAt time.Time) error
}

type RetryConfig struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
	// MaxAttempts counts the first try; 1 disables retries.
	MaxAttempts int
}

type Config struct {
	Store        eventStore
	InvalidSink  messageSink
	DeadLetter   messageSink
	Cache        deviceCache
	StoreTimeout time.Duration
	Retry        RetryConfig
}

type Ingestor struct {
	store        eventStore
	invalid      messageSink
	deadLetter   messageSink
	cache        deviceCache
	storeTimeout time.Duration
	retry        RetryConfig
	now          func() time.Time
}

func New(cfg Config) *Ingestor {
	return &Ingestor{
		store:        cfg.Store,
		invalid:      cfg.InvalidSink,
		deadLetter:   cfg.DeadLetter,
		cache:        cfg.Cache,
		storeTimeout: cfg.StoreTimeout,
		retry:        cfg.Retry,
		now:          time.Now,
	}
}

// HandleMessage adapts OnMessage to a transport callback. Every outcome is
// already logged by OnMessage.
func (i *Ingestor) HandleMessage(ctx context.Context, payload []byte) {
	_, _ = i.OnMessage(ctx, payload)
}

// OnMessage validates one payload and either persists it or records it in
// the invalid-message sink. Rejections are terminal and return a nil error;
// only a storage failure that outlived the retry policy returns ErrStorage.
func (i *Ingestor) OnMessage(ctx context.Context, payload []byte) (Outcome, error) {
	const fn = "Ingestor:OnMessage"
	log := slog.With("msg_id", uuid.NewString())
	metrics.MessageBytesTotal.Add(float64(len(payload)))

	event, rejection := validator.Validate(payload)
	if rejection != nil {
		i.invalid.Record(ctx, payload, rejection.Error(), i.now())
		metrics.MessagesTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		metrics.RejectionsTotal.WithLabelValues(rejection.Kind.String()).Inc()
		log.WarnContext(ctx, "Invalid message rejected",
			"kind", rejection.Kind.String(),
			"field", rejection.Field,
			"reason", rejection.Error(),
			"payload", summarize(payload),
		)
		return Rejected, nil
	}

	log = log.With("device_id", event.DeviceID)
	i.checkOrder(ctx, log, event)

	start := time.Now()
	eventID, attempts, permanent, err := i.persist(ctx, log, db.NewEvent{
		DeviceID:    event.DeviceID,
		SensorType:  event.SensorType,
		SensorValue: event.SensorValue,
		Timestamp:   event.Timestamp,
	})
	metrics.StorageDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MessagesTotal.WithLabelValues(metrics.OutcomeStorageFailed).Inc()
		reason := "storage: " + err.Error()
		if permanent {
			reason = "store rejected: " + err.Error()
		}
		if i.deadLetter != nil {
			i.deadLetter.Record(ctx, payload, reason, i.now())
		}
		log.ErrorContext(ctx, "Failed to persist event",
			"attempts", attempts,
			"permanent", permanent,
			"error", err,
			"payload", summarize(payload),
		)
		return StorageFailed, fmt.Errorf("%s:%w:%w", fn, ErrStorage, err)
	}

	if i.cache != nil {
		if err := i.cache.Advance(ctx, event.DeviceID, event.Timestamp); err != nil {
			log.WarnContext(ctx, "Failed to update last seen cache", "error", err)
		}
	}
	metrics.MessagesTotal.WithLabelValues(metrics.OutcomePersisted).Inc()
	log.InfoContext(ctx, "Valid event stored",
		"event_id", eventID,
		"sensor_type", event.SensorType,
		"sensor_value", event.SensorValue,
		"timestamp", event.Timestamp,
		"attempts", attempts,
	)
	return Persisted, nil
}

// checkOrder flags events older than the device's last seen timestamp. They
// are still stored; the store never moves last_seen backwards.
func (i *Ingestor) checkOrder(ctx context.Context, log *slog.Logger, event validator.Event) {
	if i.cache == nil {
		return
	}
	state, found, err := i.cache.Get(ctx, event.DeviceID)
	if err != nil {
		log.WarnContext(ctx, "Failed to read last seen cache", "error", err)
		return
	}
	if found && event.Timestamp.Before(state.LastSeen) {
		metrics.OutOfOrderTotal.Inc()
		log.WarnContext(ctx, "Out of order event",
			"timestamp", event.Timestamp,
			"last_seen", state.LastSeen,
		)
	}
}

// persist writes event with retries. A write whose commit succeeded but whose
// acknowledgement was lost to the store timeout is retried too, so an event can
// be stored twice in that case.
func (i *Ingestor) persist(ctx context.Context, log *slog.Logger, event db.NewEvent) (int64, int, bool, error) {
	var (
		eventID   int64
		attempts  int
		permanent bool
	)
	op := func() error {
		attempts++
		storeCtx, cancel := i.storeContext(ctx)
		defer cancel()
		id, err := i.store.RecordEvent(storeCtx, event)
		if err != nil {
			if isPermanent(err) {
				permanent = true
				return backoff.Permanent(err)
			}
			return err
		}
		eventID = id
		return nil
	}
	notify := func(err error, wait time.Duration) {
		metrics.StorageRetries.Inc()
		log.WarnContext(ctx, "Store write failed, retrying",
			"attempt", attempts,
			"retry_in", wait,
			"error", err,
		)
	}
	err := backoff.RetryNotify(op, i.backOff(ctx), notify)
	return eventID, attempts, permanent, err
}

// isPermanent reports whether the store refused the data itself: SQLSTATE
// class 22 (data exception) or 23 (integrity constraint violation).
func isPermanent(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return strings.HasPrefix(pgErr.Code, "22") || strings.HasPrefix(pgErr.Code, "23")
}

func (i *Ingestor) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if i.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, i.storeTimeout)
}

func (i *Ingestor) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if i.retry.InitialInterval > 0 {
		b.InitialInterval = i.retry.InitialInterval
	}
	if i.retry.MaxInterval > 0 {
		b.MaxInterval = i.retry.MaxInterval
	}
	b.MaxElapsedTime = i.retry.MaxElapsedTime
	retries := 0
	if i.retry.MaxAttempts > 1 {
		retries = i.retry.MaxAttempts - 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

func summarize(payload []byte) string {
	if len(payload) <= maxPayloadSummary {
		return string(payload)
	}
	return string(payload[:maxPayloadSummary]) + "..."
}
