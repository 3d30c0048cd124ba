package scope

import (
	"fmt"
	"reflect"
	"strconv"
)

// Collection lets host types iterate in sections without being slices.
type Collection interface {
	Items() []any
}

// ValueOptions tunes ParseValue.
type ValueOptions struct {
	// ZeroTruthy treats numeric zero as truthy.
	ZeroTruthy bool
}

// Value classifies a resolved value for section rendering.
type Value struct {
	Truthy bool
	Array  bool
	Value  any
	Items  []any
}

// ParseValue is the single truthiness decision point. nil, false, "",
// empty collections and nil pointers are falsy; numeric zero is falsy
// unless opts.ZeroTruthy is set. Maps and structs are truthy objects.
func ParseValue(v any, opts ValueOptions) Value {
	out := Value{Value: v}
	switch x := v.(type) {
	case nil:
		return out
	case bool:
		out.Truthy = x
		return out
	case string:
		out.Truthy = x != ""
		return out
	case []byte:
		out.Truthy = len(x) > 0
		return out
	case Collection:
		out.Array = true
		out.Items = x.Items()
		out.Truthy = len(out.Items) > 0
		return out
	case []any:
		out.Array = true
		out.Items = x
		out.Truthy = len(x) > 0
		return out
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return out
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		out.Truthy = opts.ZeroTruthy || rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		out.Truthy = opts.ZeroTruthy || rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		out.Truthy = opts.ZeroTruthy || rv.Float() != 0
	case reflect.Bool:
		out.Truthy = rv.Bool()
	case reflect.String:
		out.Truthy = rv.Len() > 0
	case reflect.Slice, reflect.Array:
		out.Array = true
		out.Items = make([]any, rv.Len())
		for i := range out.Items {
			out.Items[i] = rv.Index(i).Interface()
		}
		out.Truthy = len(out.Items) > 0
	case reflect.Map:
		if rv.IsNil() {
			return out
		}
		out.Truthy = true
	case reflect.Func, reflect.Chan:
		out.Truthy = !rv.IsNil()
	default:
		out.Truthy = true
	}
	return out
}

// Stringify converts a resolved value to output text. nil and functions
// render empty.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	default:
		if reflect.ValueOf(x).Kind() == reflect.Func {
			return ""
		}
		return fmt.Sprint(x)
	}
}
