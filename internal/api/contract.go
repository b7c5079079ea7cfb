package api

type Device struct {
	DeviceID string `json:"device_id"`
	LastSeen string `json:"last_seen"`
}

type Event struct {
	EventID     int64   `json:"event_id"`
	DeviceID    string  `json:"device_id"`
	SensorType  string  `json:"sensor_type"`
	SensorValue float64 `json:"sensor_value"`
	Timestamp   string  `json:"timestamp"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
