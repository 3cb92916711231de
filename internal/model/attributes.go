package model

// Attributes is an open attribute tree as decoded from JSON.
// Values are nil, bool, string, numbers, []any, or nested trees
// (Attributes or map[string]any).
type Attributes map[string]any

// AsAttributes returns v as a tree if it is one.
// A typed nil map is not a tree; callers treat it like an explicit null.
func AsAttributes(v any) (Attributes, bool) {
	switch t := v.(type) {
	case Attributes:
		return t, t != nil
	case map[string]any:
		return Attributes(t), t != nil
	}
	return nil, false
}

// String returns the string value stored at key
func (a Attributes) String(key string) (string, bool) {
	s, ok := a[key].(string)
	return s, ok
}

// Number returns the numeric value stored at key as a float64
func (a Attributes) Number(key string) (float64, bool) {
	return toFloat(a[key])
}

// Clone returns a deep copy of the tree
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies nested trees and slices; scalars are returned as-is
func CloneValue(v any) any {
	if tree, ok := AsAttributes(v); ok {
		return tree.Clone()
	}
	if list, ok := v.([]any); ok {
		out := make([]any, len(list))
		for i, item := range list {
			out[i] = CloneValue(item)
		}
		return out
	}
	return v
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
