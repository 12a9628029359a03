package bridge

import (
	"reflect"

	"github.com/kbukum/kvbridge/resolve"
)

// LogRecord is the entry log_insert appends to a store list. Fields that
// resolve to nil are left out of the serialized form, except e_id and aux
// which are always written.
type LogRecord struct {
	Timestamp any `json:"ts,omitempty"`
	Level     any `json:"level,omitempty"`
	Event     any `json:"e_event,omitempty"`
	ID        any `json:"e_id"`
	Type      any `json:"e_type,omitempty"`
	UserID    any `json:"uid,omitempty"`
	Message   any `json:"msg,omitempty"`
	Domain    any `json:"domain,omitempty"`
	System    any `json:"sys,omitempty"`
	SessionID any `json:"sess_id,omitempty"`
	Context   any `json:"aux"`
}

// NewLogRecord resolves every log field from opts.
//
// A falsy id becomes "". A context that resolves to a map, slice or struct
// is kept as-is; anything else is wrapped as {"data": value}.
func NewLogRecord(res resolve.Resolver, opts Options) LogRecord {
	res = resolve.OrIdentity(res)
	field := func(name string) any { return res.Resolve(opts[name]) }

	id := field(FieldID)
	if !resolve.Truthy(id) {
		id = ""
	}

	return LogRecord{
		Timestamp: field(FieldTimestamp),
		Level:     field(FieldLogLevel),
		Event:     field(FieldEvent),
		ID:        id,
		Type:      field(FieldType),
		UserID:    field(FieldUserID),
		Message:   field(FieldMessage),
		Domain:    field(FieldDomain),
		System:    field(FieldSystem),
		SessionID: field(FieldSessionID),
		Context:   normalizeContext(field(FieldContext)),
	}
}

// Encode returns the record's JSON text.
func (r LogRecord) Encode() (string, error) {
	return encodeJSON(r)
}

func normalizeContext(v any) any {
	if isStructured(v) {
		return v
	}
	return map[string]any{"data": v}
}

func isStructured(v any) bool {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return true
	}
	return false
}
