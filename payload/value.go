// Package payload holds the canonical JSON value domain the engine works
// with: nil, bool, string, int64, float64, []any, and map[string]any.
// Normalizing every payload at the transport boundary keeps the rest of
// the code free of json.Number and narrow integer types.
package payload

type Value = any

func AsMap(value Value) (map[string]any, bool) {
	typed, ok := value.(map[string]any)
	return typed, ok
}

func AsSlice(value Value) ([]any, bool) {
	typed, ok := value.([]any)
	return typed, ok
}

// IsPrimitive reports whether value is a JSON scalar (or null), i.e. not
// an object and not an array.
func IsPrimitive(value Value) bool {
	switch value.(type) {
	case nil, bool, string, int64, float64:
		return true
	default:
		return false
	}
}

func Clone(value Value) Value {
	switch typed := value.(type) {
	case map[string]any:
		cloned := make(map[string]any, len(typed))
		for key, item := range typed {
			cloned[key] = Clone(item)
		}
		return cloned
	case []any:
		cloned := make([]any, len(typed))
		for idx, item := range typed {
			cloned[idx] = Clone(item)
		}
		return cloned
	default:
		return typed
	}
}
