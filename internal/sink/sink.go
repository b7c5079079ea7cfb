package sink

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unicode/utf8"
)

const EncodingBase64 = "base64"

// Record is one line of a sink file. Payloads that are not valid UTF-8 are
// stored base64 encoded with Encoding set to EncodingBase64.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Payload   string    `json:"payload"`
	Encoding  string    `json:"encoding,omitempty"`
	Reason    string    `json:"reason"`
}

func newRecord(raw []byte, reason string, at time.Time) Record {
	r := Record{Timestamp: at.UTC(), Payload: string(raw), Reason: reason}
	if !utf8.Valid(raw) {
		r.Payload = base64.StdEncoding.EncodeToString(raw)
		r.Encoding = EncodingBase64
	}
	return r
}

// Raw returns the payload bytes as they were received.
func (r Record) Raw() ([]byte, error) {
	if r.Encoding == EncodingBase64 {
		return base64.StdEncoding.DecodeString(r.Payload)
	}
	return []byte(r.Payload), nil
}

type Config struct {
	Name string
	Path string
}

type Stats struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Written uint64 `json:"written"`
	Failed  uint64 `json:"failed"`
}

// Sink is an append-only JSON-lines file of payloads that were not stored.
// Appends are best effort: failures are logged and counted, never returned.
type Sink struct {
	name    string
	path    string
	mu      sync.Mutex
	written uint64
	failed  uint64
}

func New(cfg Config) (*Sink, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sink %q: empty path", cfg.Name)
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sink %q: create directory: %w", cfg.Name, err)
		}
	}
	return &Sink{name: cfg.Name, path: cfg.Path}, nil
}

func (s *Sink) Record(ctx context.Context, raw []byte, reason string, at time.Time) {
	line, err := json.Marshal(newRecord(raw, reason, at))
	if err != nil {
		s.fail(ctx, err)
		return
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	// Opened per append so an external rotate/truncate is picked up.
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		s.failLocked(ctx, err)
		return
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		s.failLocked(ctx, err)
		return
	}
	if err := f.Close(); err != nil {
		s.failLocked(ctx, err)
		return
	}
	s.written++
}

func (s *Sink) fail(ctx context.Context, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLocked(ctx, err)
}

func (s *Sink) failLocked(ctx context.Context, err error) {
	s.failed++
	slog.ErrorContext(ctx, "Failed to append sink record", "sink", s.name, "path", s.path, "error", err)
}

func (s *Sink) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{Name: s.name, Path: s.path, Written: s.written, Failed: s.failed}
}
