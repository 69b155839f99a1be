// Package sanitize prepares arbitrary payloads for the audit log: it deep
// copies the input, redacts credential-bearing keys, and guarantees the
// result is JSON-representable.
package sanitize

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// RedactedMarker replaces the value of any denylisted key.
const RedactedMarker = "[REDACTED]"

// sensitiveKeys are matched exactly and case-sensitively at every nesting depth.
var sensitiveKeys = map[string]struct{}{
	"password": {},
	"hash":     {},
	"salt":     {},
	"token":    {},
	"secret":   {},
}

// Clean returns a deep copy of v with sensitive values redacted. The caller's
// value is never mutated. Values that cannot be serialized (channels,
// functions, cycles) collapse to {"error": "unserializable"} instead of
// propagating an error.
func Clean(v any) any {
	if v == nil {
		return nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return map[string]any{"error": "unserializable"}
	}

	var copied any
	if err := json.Unmarshal(raw, &copied); err != nil {
		return map[string]any{"error": "unserializable"}
	}

	return redact(copied)
}

// Snapshot sanitizes v and renders it as a JSON column value. A nil input
// yields a nil column so the snapshot stays absent rather than "null".
func Snapshot(v any) datatypes.JSON {
	if v == nil {
		return nil
	}

	cleaned := Clean(v)
	raw, err := json.Marshal(cleaned)
	if err != nil {
		raw = []byte(`{"error":"unserializable"}`)
	}
	return datatypes.JSON(raw)
}

func redact(v any) any {
	switch value := v.(type) {
	case map[string]any:
		for key, nested := range value {
			if _, sensitive := sensitiveKeys[key]; sensitive {
				value[key] = RedactedMarker
				continue
			}
			value[key] = redact(nested)
		}
		return value
	case []any:
		for i, item := range value {
			value[i] = redact(item)
		}
		return value
	default:
		return v
	}
}
