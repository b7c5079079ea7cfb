package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"device-telemetry/internal/db"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	detailDevicesFailed  = "Error retrieving devices"
	detailEventsFailed   = "Error retrieving events"
	detailNoEvents       = "No events found for this device"
	detailDeviceNotFound = "Device not found"
)

type repository interface {
	ListDevices(ctx context.Context) ([]db.Device, error)
	GetDevice(ctx context.Context, deviceID string) (db.Device, error)
	ListEventsForDevice(ctx context.Context, deviceID string) ([]db.Event, error)
	Ping(ctx context.Context) error
}

type API struct {
	DB repository
}

type Config struct {
	DB repository
}

func New(cfg Config) *API {
	return &API{DB: cfg.DB}
}

// Router serves the read-only query endpoints plus health and metrics.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/devices", a.ListDevices)
	r.Get("/devices/{device_id}", a.GetDevice)
	r.Get("/events/{device_id}", a.ListEvents)
	r.Get("/health", a.Health)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (a *API) ListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := a.DB.ListDevices(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Error fetching devices", "error", err)
		writeError(w, http.StatusInternalServerError, detailDevicesFailed)
		return
	}

	resp := make([]Device, 0, len(devices))
	for _, d := range devices {
		resp = append(resp, toDevice(d))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) GetDevice(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "device_id")
	device, err := a.DB.GetDevice(r.Context(), deviceID)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, detailDeviceNotFound)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Error fetching device", "device_id", deviceID, "error", err)
		writeError(w, http.StatusInternalServerError, detailDevicesFailed)
		return
	}
	writeJSON(w, http.StatusOK, toDevice(device))
}

// ListEvents returns a device's events newest first. A device without
// events is a 404, never an empty list.
func (a *API) ListEvents(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "device_id")
	events, err := a.DB.ListEventsForDevice(r.Context(), deviceID)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, detailNoEvents)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Error fetching events for device", "device_id", deviceID, "error", err)
		writeError(w, http.StatusInternalServerError, detailEventsFailed)
		return
	}

	resp := make([]Event, 0, len(events))
	for _, e := range events {
		resp = append(resp, Event{
			EventID:     e.EventID,
			DeviceID:    e.DeviceID,
			SensorType:  e.SensorType,
			SensorValue: e.SensorValue,
			Timestamp:   formatTime(e.Timestamp),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.DB.Ping(ctx); err != nil {
		slog.ErrorContext(r.Context(), "Health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func toDevice(d db.Device) Device {
	return Device{DeviceID: d.DeviceID, LastSeen: formatTime(d.LastSeen)}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.InfoContext(r.Context(), "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
