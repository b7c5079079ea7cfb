package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrMalformedEncoding = errors.New("malformed encoding")
	ErrSchemaViolation   = errors.New("schema violation")
)

type Kind int

const (
	MalformedEncoding Kind = iota + 1
	SchemaViolation
)

func (k Kind) String() string {
	switch k {
	case MalformedEncoding:
		return "malformed_encoding"
	case SchemaViolation:
		return "schema_violation"
	default:
		return "unknown"
	}
}

// Rejection explains why a payload failed validation. Field is empty for
// decode failures and for payloads that are not JSON objects.
type Rejection struct {
	Kind   Kind
	Field  string
	Detail string
}

func (r *Rejection) Error() string {
	if r.Field == "" {
		return fmt.Sprintf("%s: %s", r.Kind, r.Detail)
	}
	return fmt.Sprintf("%s: %s: %s", r.Kind, r.Field, r.Detail)
}

func (r *Rejection) Unwrap() error {
	switch r.Kind {
	case MalformedEncoding:
		return ErrMalformedEncoding
	case SchemaViolation:
		return ErrSchemaViolation
	}
	return nil
}

// Event is a payload that satisfied the message schema.
type Event struct {
	DeviceID    string
	SensorType  string
	SensorValue float64
	Timestamp   time.Time
}

type fieldType int

const (
	typeString fieldType = iota
	typeNumber
)

func (t fieldType) String() string {
	if t == typeNumber {
		return "number"
	}
	return "string"
}

// Checked in this order so the first reported violation is deterministic.
var requiredFields = []struct {
	name string
	typ  fieldType
}{
	{"device_id", typeString},
	{"sensor_type", typeString},
	{"sensor_value", typeNumber},
	{"timestamp", typeString},
}

// Validate decodes raw and checks it against the telemetry message schema.
// Exactly one of the return values is meaningful: a nil Rejection means the
// Event is valid.
func Validate(raw []byte) (Event, *Rejection) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Event{}, &Rejection{Kind: MalformedEncoding, Detail: err.Error()}
	}
	obj, ok := decoded.(map[string]any)
	if !ok {
		return Event{}, &Rejection{
			Kind:   SchemaViolation,
			Detail: fmt.Sprintf("expected object, got %s", jsonType(decoded)),
		}
	}

	for _, f := range requiredFields {
		v, present := obj[f.name]
		if !present {
			return Event{}, &Rejection{Kind: SchemaViolation, Field: f.name, Detail: "required property is missing"}
		}
		if got := jsonType(v); got != f.typ.String() {
			return Event{}, &Rejection{
				Kind:   SchemaViolation,
				Field:  f.name,
				Detail: fmt.Sprintf("expected %s, got %s", f.typ, got),
			}
		}
	}

	ts, err := parseTimestamp(obj["timestamp"].(string))
	if err != nil {
		return Event{}, &Rejection{Kind: SchemaViolation, Field: "timestamp", Detail: "not an ISO-8601 date-time"}
	}

	return Event{
		DeviceID:    obj["device_id"].(string),
		SensorType:  obj["sensor_type"].(string),
		SensorValue: obj["sensor_value"].(float64),
		Timestamp:   ts,
	}, nil
}

// parseTimestamp accepts RFC 3339 date-times, with or without fractional
// seconds, and a lowercase "t"/"z" as RFC 3339 permits.
func parseTimestamp(s string) (time.Time, error) {
	b := []byte(s)
	for i, c := range b {
		if c == 't' || c == 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return time.Parse(time.RFC3339Nano, string(b))
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
