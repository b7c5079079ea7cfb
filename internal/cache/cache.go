package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"device-telemetry/internal/db"
)

var (
	ErrHydrate = errors.New("cache hydration failed")
	ErrBackend = errors.New("cache backend error")
)

type DeviceState struct {
	LastSeen time.Time
}

// Cache tracks the newest accepted timestamp per device. Advance never moves
// a device backwards.
type Cache interface {
	Get(ctx context.Context, deviceID string) (DeviceState, bool, error)
	Advance(ctx context.Context, deviceID string, seenAt time.Time) error
	Hydrate(ctx context.Context, loader Loader) error
	Dump(ctx context.Context)
}

type Loader interface {
	ListDevices(ctx context.Context) ([]db.Device, error)
}

type StateCache struct {
	mu    sync.RWMutex
	store map[string]DeviceState
}

func New() *StateCache {
	return &StateCache{
		store: make(map[string]DeviceState),
	}
}

func (c *StateCache) Get(_ context.Context, deviceID string) (DeviceState, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	state, exists := c.store[deviceID]
	return state, exists, nil
}

func (c *StateCache) Advance(_ context.Context, deviceID string, seenAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if state, exists := c.store[deviceID]; exists && !seenAt.After(state.LastSeen) {
		return nil
	}
	c.store[deviceID] = DeviceState{LastSeen: seenAt.UTC()}
	return nil
}

func (c *StateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

func (c *StateCache) Dump(ctx context.Context) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for deviceID, state := range c.store {
		slog.DebugContext(ctx, "Cache Dump", "device_id", deviceID, "last_seen", state.LastSeen)
	}
}

// Hydrate seeds the cache from the store so ordering checks survive restarts.
func (c *StateCache) Hydrate(ctx context.Context, loader Loader) error {
	return hydrate(ctx, c, loader)
}

func hydrate(ctx context.Context, c Cache, loader Loader) error {
	const fn = "Cache:Hydrate"
	slog.InfoContext(ctx, "Starting cache hydration...")
	devices, err := loader.ListDevices(ctx)
	if err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrHydrate, err)
	}
	for _, d := range devices {
		if err := c.Advance(ctx, d.DeviceID, d.LastSeen); err != nil {
			return fmt.Errorf("%s:%w:%w", fn, ErrHydrate, err)
		}
	}
	slog.InfoContext(ctx, "Cache hydration complete", "devices", len(devices))
	return nil
}
