package canon

import (
	"fmt"
	"sort"
)

// Value is a sealed interface over the constrained value types a query may
// carry as a literal or parameter. Only Null, Bool, Int, Float, String,
// List, and Map implement it.
type Value interface {
	value() // Sealed - only types in this package implement it
}

// Null represents an absent value.
// An explicit type keeps the sealed interface total over nil-free trees.
type Null struct{}

func (Null) value() {}

// Bool represents a boolean value.
type Bool bool

func (Bool) value() {}

// Int represents an integer value. Always int64.
type Int int64

func (Int) value() {}

// Float represents a floating-point value.
// Serialized with strconv's shortest round-trip formatting, which is
// deterministic for any given bit pattern.
type Float float64

func (Float) value() {}

// String represents a text value.
type String string

func (String) value() {}

// List represents an ordered sequence of values.
type List []Value

func (List) value() {}

// Map represents a string-keyed mapping of values.
// Use SortedKeys for deterministic iteration.
type Map map[string]Value

func (Map) value() {}

// SortedKeys returns the map's keys in ascending byte-lexical order.
func (m Map) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FromAny converts a plain Go value into a Value. Supported inputs are nil,
// bool, string, all integer widths, float32/float64, []any, and
// map[string]any; anything else is rejected.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case int:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case float32:
		return Float(val), nil
	case float64:
		return Float(val), nil
	case []any:
		list := make(List, len(val))
		for i, elem := range val {
			cv, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			list[i] = cv
		}
		return list, nil
	case map[string]any:
		m := make(Map, len(val))
		for k, elem := range val {
			cv, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("map[%q]: %w", k, err)
			}
			m[k] = cv
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported parameter value type: %T", v)
	}
}

// MustFromAny is like FromAny but panics on error.
// Use only in tests or when inputs are known to be convertible.
func MustFromAny(v any) Value {
	cv, err := FromAny(v)
	if err != nil {
		panic(err)
	}
	return cv
}

// Native converts a Value back to the plain Go representation expected by
// database drivers: nil, bool, int64, float64, string, []any, map[string]any.
func Native(v Value) any {
	switch val := v.(type) {
	case Null:
		return nil
	case Bool:
		return bool(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case String:
		return string(val)
	case List:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = Native(elem)
		}
		return out
	case Map:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = Native(elem)
		}
		return out
	default:
		panic(fmt.Sprintf("canon: unknown Value type %T", v))
	}
}
