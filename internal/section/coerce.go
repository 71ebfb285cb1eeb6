// Dynamic-to-static value coercion for typed reads.
package section

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"

	"github.com/satchel-io/satchel/pkg/types"
)

// Coerce converts a generically deserialized value into the static type a
// caller requested. The decoder hands back json.Number for every numeric,
// map[string]any for every record, and []any for every sequence, while
// writers stored native Go values; both shapes must coerce. Values that
// cannot represent T return an error wrapping types.ErrCoercion.
func Coerce[T any](v any) (T, error) {
	var zero T

	// Fast path: fresh writes observed through the change callback arrive
	// un-serialized and already carry the requested type.
	if tv, ok := v.(T); ok {
		return tv, nil
	}
	if v == nil {
		// A stored null reads as the zero value, like a cleared entry.
		return zero, nil
	}

	rt := reflect.TypeOf(&zero).Elem()
	rv := reflect.New(rt).Elem()

	switch rt.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := coerceInt64(v)
		if err != nil {
			return zero, err
		}
		if rv.OverflowInt(i) {
			return zero, fmt.Errorf("%w: %d overflows %s", types.ErrCoercion, i, rt)
		}
		rv.SetInt(i)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := coerceUint64(v)
		if err != nil {
			return zero, err
		}
		if rv.OverflowUint(u) {
			return zero, fmt.Errorf("%w: %d overflows %s", types.ErrCoercion, u, rt)
		}
		rv.SetUint(u)

	case reflect.Float32, reflect.Float64:
		f, err := coerceFloat64(v)
		if err != nil {
			return zero, err
		}
		if rv.OverflowFloat(f) {
			return zero, fmt.Errorf("%w: %v overflows %s", types.ErrCoercion, f, rt)
		}
		rv.SetFloat(f)

	case reflect.String:
		str, err := cast.ToStringE(v)
		if err != nil {
			return zero, fmt.Errorf("%w: %v", types.ErrCoercion, err)
		}
		rv.SetString(str)

	case reflect.Bool:
		b, err := cast.ToBoolE(v)
		if err != nil {
			return zero, fmt.Errorf("%w: %v", types.ErrCoercion, err)
		}
		rv.SetBool(b)

	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array, reflect.Pointer:
		return coerceStructured[T](v)

	default:
		return zero, fmt.Errorf("%w: cannot coerce %T to %s", types.ErrCoercion, v, rt)
	}

	return rv.Interface().(T), nil
}

// coerceInt64 narrows the decoder's numeric representations to int64,
// erroring when the value is not integral or not numeric at all.
func coerceInt64(v any) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not numeric", types.ErrCoercion, n.String())
		}
		return floatToInt64(f)
	case float64:
		return floatToInt64(n)
	case float32:
		return floatToInt64(float64(n))
	default:
		i, err := cast.ToInt64E(v)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", types.ErrCoercion, err)
		}
		return i, nil
	}
}

// coerceUint64 is the unsigned counterpart of coerceInt64.
func coerceUint64(v any) (uint64, error) {
	i, err := coerceInt64(v)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		return 0, fmt.Errorf("%w: %d is negative", types.ErrCoercion, i)
	}
	return uint64(i), nil
}

// floatToInt64 narrows a float only when the value is integral and in range.
func floatToInt64(f float64) (int64, error) {
	if math.Trunc(f) != f || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %v is not representable as an integer", types.ErrCoercion, f)
	}
	return int64(f), nil
}

// coerceFloat64 widens the decoder's numeric representations to float64.
func coerceFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not numeric", types.ErrCoercion, n.String())
		}
		return f, nil
	default:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", types.ErrCoercion, err)
		}
		return f, nil
	}
}

// coerceStructured reconstructs a record, sequence, or map type from the
// decoder's generic representation. Field matching follows the json tags
// used to write the value; unknown fields in the stored form are ignored,
// so reading back into a narrower record type stays safe.
func coerceStructured[T any](v any) (T, error) {
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "json",
		Result:     &out,
		DecodeHook: jsonNumberHook,
	})
	if err != nil {
		return out, fmt.Errorf("%w: %v", types.ErrCoercion, err)
	}
	if err := dec.Decode(v); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %v", types.ErrCoercion, err)
	}
	return out, nil
}

// jsonNumberHook converts json.Number values into whichever numeric width
// the target record declares, with the same exactness rules as scalar reads.
func jsonNumberHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	n, ok := data.(json.Number)
	if !ok {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return coerceInt64(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return coerceUint64(n)
	case reflect.Float32, reflect.Float64:
		return coerceFloat64(n)
	case reflect.String:
		return n.String(), nil
	default:
		return data, nil
	}
}
