package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"device-telemetry/internal/metrics"
)

var (
	ErrQueueFull   = errors.New("queue full")
	ErrQueueClosed = errors.New("queue closed")
)

type Handler func(ctx context.Context, payload []byte)

type QueueConfig struct {
	Name           string
	Capacity       int
	EnqueueTimeout time.Duration
	Handler        Handler
}

// Queue decouples a transport's delivery callback from processing. A single
// consumer preserves delivery order.
type Queue struct {
	ch             chan []byte
	handler        Handler
	enqueueTimeout time.Duration
	worker         *Worker
	done           chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewQueue(cfg QueueConfig) *Queue {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = 1
	}
	q := &Queue{
		ch:             make(chan []byte, capacity),
		handler:        cfg.Handler,
		enqueueTimeout: cfg.EnqueueTimeout,
		done:           make(chan struct{}),
	}
	q.worker = New(Config{
		Name:      cfg.Name,
		Processor: q,
	})
	metrics.QueueCapacity.Set(float64(capacity))
	return q
}

// Submit enqueues payload, waiting at most the enqueue timeout for space.
func (q *Queue) Submit(ctx context.Context, payload []byte) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.ch <- payload:
		metrics.QueueDepth.Set(float64(len(q.ch)))
		return nil
	default:
	}

	timer := time.NewTimer(q.enqueueTimeout)
	defer timer.Stop()
	select {
	case q.ch <- payload:
		metrics.QueueDepth.Set(float64(len(q.ch)))
		return nil
	case <-timer.C:
		return ErrQueueFull
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ProcessMessage blocks for the next payload. It ignores ctx cancellation so
// that the backlog is drained after Close.
func (q *Queue) ProcessMessage(ctx context.Context) error {
	payload, ok := <-q.ch
	if !ok {
		return ErrStopped
	}
	metrics.QueueDepth.Set(float64(len(q.ch)))
	q.handler(ctx, payload)
	return nil
}

// Run consumes until Close is called and the backlog is empty, or until ctx is
// cancelled. Cancelling ctx stops Run after the in-flight payload; whatever is
// still queued is left for Drain.
func (q *Queue) Run(ctx context.Context) {
	defer close(q.done)
	q.worker.Run(ctx)
}

// Close stops intake. Payloads already queued are still processed by Run.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}

// Drain hands every payload still queued to fn without processing it and
// returns how many there were. It does not wait for new payloads.
func (q *Queue) Drain(fn func(payload []byte)) int {
	n := 0
	defer func() { metrics.QueueDepth.Set(float64(len(q.ch))) }()
	for {
		select {
		case payload, ok := <-q.ch:
			if !ok {
				return n
			}
			fn(payload)
			n++
		default:
			return n
		}
	}
}

func (q *Queue) Done() <-chan struct{} {
	return q.done
}

func (q *Queue) Len() int {
	return len(q.ch)
}
