package database

import "fmt"

// Int64Value converts a scanned column value to int64. NULL and non-numeric
// values report false.
func Int64Value(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	case []byte:
		var out int64
		if _, err := fmt.Sscan(string(n), &out); err != nil {
			return 0, false
		}
		return out, true
	default:
		return 0, false
	}
}

// Int64Ptr converts a nullable integer column to a pointer (nil if NULL)
func Int64Ptr(v any) *int64 {
	if n, ok := Int64Value(v); ok {
		return &n
	}
	return nil
}

// StringValue converts a scanned column value to a string (empty if NULL)
func StringValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}

// StringPtr converts a nullable text column to a pointer (nil if NULL)
func StringPtr(v any) *string {
	if v == nil {
		return nil
	}
	s := StringValue(v)
	return &s
}

// Nullable turns an optional value into a bound parameter, NULL when absent.
func Nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}
