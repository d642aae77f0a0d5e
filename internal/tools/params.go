package tools

import (
	"strconv"
	"strings"
)

// strParam pulls a string parameter. The literal "undefined" (any case) and
// "null" are treated as absent; upstream serializers have been seen stuffing
// them into id fields.
func strParam(params map[string]any, key string) (string, bool) {
	v, ok := params[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "undefined", "null":
		return "", false
	}
	return s, true
}

// intParam pulls an integer parameter. JSON numbers arrive as float64;
// numeric strings are accepted too.
func intParam(params map[string]any, key string) (int64, bool) {
	v, ok := params[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
