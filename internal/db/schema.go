package db

import "time"

type Device struct {
	DeviceID string    `db:"device_id" json:"device_id"`
	LastSeen time.Time `db:"last_seen" json:"last_seen"`
}

type Event struct {
	EventID     int64     `db:"event_id" json:"event_id"`
	DeviceID    string    `db:"device_id" json:"device_id"`
	SensorType  string    `db:"sensor_type" json:"sensor_type"`
	SensorValue float64   `db:"sensor_value" json:"sensor_value"`
	Timestamp   time.Time `db:"timestamp" json:"timestamp"`
}

// NewEvent is an accepted reading that has not been assigned an event_id yet.
type NewEvent struct {
	DeviceID    string
	SensorType  string
	SensorValue float64
	Timestamp   time.Time
}
