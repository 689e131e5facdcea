package apifootball

import (
	"strconv"
	"strings"
)

// Object returns the nested object at key, or nil.
func Object(src map[string]any, key string) map[string]any {
	if src == nil {
		return nil
	}
	obj, _ := src[key].(map[string]any)
	return obj
}

// String returns the trimmed string at key; numbers are formatted.
func String(src map[string]any, key string) string {
	if src == nil {
		return ""
	}
	switch typed := src[key].(type) {
	case string:
		return strings.TrimSpace(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return ""
	}
}

// Int64 returns the integer at key, parsing numeric strings. ok is false when
// the key is absent, null or not numeric.
func Int64(src map[string]any, key string) (int64, bool) {
	if src == nil {
		return 0, false
	}
	switch typed := src[key].(type) {
	case int64:
		return typed, true
	case int:
		return int64(typed), true
	case float64:
		return int64(typed), true
	case string:
		v, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}

// NullableInt64 is Int64 returning nil on a miss.
func NullableInt64(src map[string]any, key string) *int64 {
	v, ok := Int64(src, key)
	if !ok {
		return nil
	}
	return &v
}

// NullableString is String returning nil for empty values.
func NullableString(src map[string]any, key string) *string {
	v := String(src, key)
	if v == "" {
		return nil
	}
	return &v
}

// AsObject returns v as a JSON object, or nil.
func AsObject(v any) map[string]any {
	obj, _ := v.(map[string]any)
	return obj
}

// Objects returns the JSON objects of the list at key, skipping other values.
func Objects(src map[string]any, key string) []map[string]any {
	if src == nil {
		return nil
	}
	list, _ := src[key].([]any)
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if obj := AsObject(item); obj != nil {
			out = append(out, obj)
		}
	}
	return out
}
