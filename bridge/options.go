package bridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/valyala/fastjson"
)

// Options is the loosely typed options bag every operation receives. Each
// value is passed through the caller's resolver before use.
type Options map[string]any

// Option field names.
const (
	FieldKey       = "key"
	FieldData      = "data"
	FieldTTL       = "ttl"
	FieldTimeout   = "timeout"
	FieldTimestamp = "timestamp"
	FieldLogLevel  = "log_level"
	FieldEvent     = "event"
	FieldID        = "id"
	FieldType      = "type"
	FieldUserID    = "user_id"
	FieldMessage   = "message"
	FieldDomain    = "domain"
	FieldSystem    = "system"
	FieldSessionID = "session_id"
	FieldContext   = "context"
)

// keyString renders a resolved key the way it is sent to the store.
func keyString(v any) string {
	switch v.(type) {
	case map[string]any, []any:
		if b, err := encodeJSON(v); err == nil {
			return b
		}
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprint(v)
}

// encodeJSON marshals v without HTML escaping and without the encoder's
// trailing newline.
func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// decodeValue returns the decoded structure when raw is JSON text and raw
// itself otherwise.
func decodeValue(raw string) any {
	if err := fastjson.Validate(raw); err != nil {
		return raw
	}
	var out any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return raw
	}
	return out
}

// number reads v as a float when it is numeric or a numeric string.
func number(v any) (float64, bool) {
	switch t := v.(type) {
	case string:
		f, err := cast.ToFloat64E(strings.TrimSpace(t))
		return f, err == nil
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		f, err := cast.ToFloat64E(v)
		return f, err == nil
	}
	return 0, false
}

// parseDuration interprets a resolved, truthy duration option. Numbers and
// numeric strings count in unit; other strings must parse as Go durations
// such as "250ms" or "2s".
func parseDuration(v any, unit time.Duration) (time.Duration, error) {
	var d time.Duration
	if f, ok := number(v); ok {
		d = time.Duration(f * float64(unit))
	} else {
		s, isString := v.(string)
		if !isString {
			return 0, fmt.Errorf("unsupported duration type %T", v)
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(s))
		if err != nil {
			return 0, err
		}
		d = parsed
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %s", d)
	}
	return d, nil
}
