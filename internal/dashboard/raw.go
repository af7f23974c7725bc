package dashboard

import (
	"encoding/json"
	"strconv"
	"strings"
)

// RawRecord is the untyped boundary for network payloads. Nothing
// downstream of the normalizer touches one of these directly; every
// field is extracted through the total coercion helpers below, which
// never panic and fall back to zero values on shape mismatch.
type RawRecord map[string]any

// field returns the first present key, tolerating snake_case and
// camelCase spellings of the same semantic value.
func (r RawRecord) field(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (r RawRecord) str(keys ...string) string {
	v, ok := r.field(keys...)
	if !ok {
		return ""
	}
	return coerceString(v)
}

func (r RawRecord) boolean(keys ...string) bool {
	v, ok := r.field(keys...)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s == "true" || s == "1" || s == "yes"
	case float64:
		return t != 0
	case int:
		return t != 0
	}
	return false
}

func (r RawRecord) integer(keys ...string) int {
	v, ok := r.field(keys...)
	if !ok {
		return 0
	}
	if f, ok := coerceNumber(v); ok {
		return int(f)
	}
	return 0
}

// float returns a pointer so callers can distinguish "absent or not a
// number" from an explicit zero.
func (r RawRecord) float(keys ...string) *float64 {
	v, ok := r.field(keys...)
	if !ok {
		return nil
	}
	if f, ok := coerceNumber(v); ok {
		return &f
	}
	return nil
}

func (r RawRecord) list(keys ...string) []any {
	v, ok := r.field(keys...)
	if !ok {
		return nil
	}
	if l, ok := v.([]any); ok {
		return l
	}
	return nil
}

func (r RawRecord) record(keys ...string) RawRecord {
	v, ok := r.field(keys...)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case map[string]any:
		return RawRecord(t)
	case RawRecord:
		return t
	}
	return nil
}

func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	}
	return ""
}

// coerceNumber converts a cell to a float64 when it is numeric or a
// numeric-looking string. Empty strings and non-numeric shapes fail.
func coerceNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
		return f, err == nil
	}
	return 0, false
}

// ToRawRecords converts a decoded JSON array into raw records,
// skipping entries that are not objects.
func ToRawRecords(list []any) []RawRecord {
	out := make([]RawRecord, 0, len(list))
	for _, v := range list {
		if m, ok := v.(map[string]any); ok {
			out = append(out, RawRecord(m))
		}
	}
	return out
}
