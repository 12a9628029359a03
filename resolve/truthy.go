package resolve

import (
	"encoding/json"
	"math"
	"reflect"

	"github.com/spf13/cast"
)

// Truthy reports whether v counts as present. Falsy values are nil, false,
// the empty string, numeric zero, NaN and nil pointers or interfaces.
// Maps, slices and structs are truthy even when empty.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		if t == "" {
			return false
		}
		f, err := cast.ToFloat64E(t.String())
		return err != nil || (f != 0 && !math.IsNaN(f))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}
