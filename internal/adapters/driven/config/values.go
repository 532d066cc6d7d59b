// Package config holds what the config stores share: coercion of raw
// values into the types the settings service reads.
//
// Values arrive as TOML types (int64, bool), as Go types set in code, or as
// strings from environment overrides, so every getter accepts all three.
package config

import (
	"strconv"
	"strings"
)

// String returns v if it is a string.
func String(v any) string {
	s, _ := v.(string)
	return s
}

// Int converts integer, float and numeric string values. Anything else is 0.
func Int(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}

// Bool converts bool and boolean string values. Anything else is false.
func Bool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return err == nil && parsed
	default:
		return false
	}
}
