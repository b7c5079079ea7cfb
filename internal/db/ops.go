package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/pgxscan"
	"github.com/jackc/pgx/v4"
)

var (
	ErrInsertFailed           = errors.New("insert operation failed")
	ErrTransactionStartFailed = errors.New("transaction start failed")
	ErrCommitFailed           = errors.New("transaction commit failed")
	ErrSelectFailed           = errors.New("select operation failed")
	ErrNotFound               = errors.New("not found")
)

// querier is satisfied by both the pool and an open transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// last_seen only moves forward: a late event never rolls it back.
const upsertDeviceSQL = `
	INSERT INTO devices (
		device_id,
		last_seen
	) VALUES ($1, $2)
	ON CONFLICT (device_id) DO UPDATE
	SET last_seen = GREATEST(devices.last_seen, EXCLUDED.last_seen)
	RETURNING last_seen
`

const appendEventSQL = `
	INSERT INTO events (
		device_id,
		sensor_type,
		sensor_value,
		timestamp
	) VALUES ($1, $2, $3, $4)
	RETURNING event_id
`

func upsertDevice(ctx context.Context, q querier, deviceID string, seenAt time.Time) error {
	var lastSeen time.Time
	return q.QueryRow(ctx, upsertDeviceSQL, deviceID, seenAt.UTC()).Scan(&lastSeen)
}

func appendEvent(ctx context.Context, q querier, event NewEvent) (int64, error) {
	var eventID int64
	err := q.QueryRow(ctx, appendEventSQL,
		event.DeviceID,
		event.SensorType,
		event.SensorValue,
		event.Timestamp.UTC(),
	).Scan(&eventID)
	return eventID, err
}

func (db *DB) UpsertDevice(ctx context.Context, deviceID string, seenAt time.Time) error {
	const fn = "DB:UpsertDevice"
	if err := upsertDevice(ctx, db.pool, deviceID, seenAt); err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrInsertFailed, err)
	}
	return nil
}

// AppendEvent requires the owning device row to exist already.
func (db *DB) AppendEvent(ctx context.Context, event NewEvent) (int64, error) {
	const fn = "DB:AppendEvent"
	eventID, err := appendEvent(ctx, db.pool, event)
	if err != nil {
		return 0, fmt.Errorf("%s:%w:%w", fn, ErrInsertFailed, err)
	}
	return eventID, nil
}

// RecordEvent upserts the device and appends the event in one transaction.
// Readers see both rows or neither.
func (db *DB) RecordEvent(ctx context.Context, event NewEvent) (int64, error) {
	const fn = "DB:RecordEvent"
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s:%w:%w", fn, ErrTransactionStartFailed, err)
	}
	// No-op once committed.
	defer tx.Rollback(ctx)

	if err := upsertDevice(ctx, tx, event.DeviceID, event.Timestamp); err != nil {
		return 0, fmt.Errorf("%s:%w:%w", fn, ErrInsertFailed, err)
	}
	eventID, err := appendEvent(ctx, tx, event)
	if err != nil {
		return 0, fmt.Errorf("%s:%w:%w", fn, ErrInsertFailed, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%s:%w:%w", fn, ErrCommitFailed, err)
	}
	return eventID, nil
}

func (db *DB) ListDevices(ctx context.Context) ([]Device, error) {
	const fn = "DB:ListDevices"
	devices := []Device{}
	err := pgxscan.Select(ctx, db.pool, &devices, `
		SELECT
			device_id,
			last_seen
		FROM devices
		ORDER BY device_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("%s:%w:%w", fn, ErrSelectFailed, err)
	}
	for i := range devices {
		devices[i].LastSeen = devices[i].LastSeen.UTC()
	}
	return devices, nil
}

func (db *DB) GetDevice(ctx context.Context, deviceID string) (Device, error) {
	const fn = "DB:GetDevice"
	var device Device
	err := pgxscan.Get(ctx, db.pool, &device, `
		SELECT
			device_id,
			last_seen
		FROM devices
		WHERE device_id = $1
	`, deviceID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return Device{}, fmt.Errorf("%s:%w", fn, ErrNotFound)
		}
		return Device{}, fmt.Errorf("%s:%w:%w", fn, ErrSelectFailed, err)
	}
	device.LastSeen = device.LastSeen.UTC()
	return device, nil
}

// ListEventsForDevice returns the device's events newest first. A device with
// no events yields ErrNotFound rather than an empty slice.
func (db *DB) ListEventsForDevice(ctx context.Context, deviceID string) ([]Event, error) {
	const fn = "DB:ListEventsForDevice"
	var events []Event
	err := pgxscan.Select(ctx, db.pool, &events, `
		SELECT
			event_id,
			device_id,
			sensor_type,
			sensor_value,
			timestamp
		FROM events
		WHERE device_id = $1
		ORDER BY timestamp DESC, event_id DESC
	`, deviceID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w:%w", fn, ErrSelectFailed, err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%s:%w", fn, ErrNotFound)
	}
	for i := range events {
		events[i].Timestamp = events[i].Timestamp.UTC()
	}
	return events, nil
}
