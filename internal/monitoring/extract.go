package monitoring

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Field extraction over the loosely-typed analyzer payloads. Upstream
// collaborators are inconsistent about field names, so every lookup
// takes an ordered candidate list and returns the first usable value.

// lookupPath resolves a dotted path ("result.reviews") in a nested map
func lookupPath(m map[string]interface{}, path string) (interface{}, bool) {
	if m == nil {
		return nil, false
	}

	parts := strings.Split(path, ".")
	var current interface{} = m
	for _, part := range parts {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = obj[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// lookupArray resolves a dotted path to an item array
func lookupArray(m map[string]interface{}, path string) ([]interface{}, bool) {
	v, ok := lookupPath(m, path)
	if !ok {
		return nil, false
	}
	arr, ok := v.([]interface{})
	return arr, ok
}

// firstString returns the first non-empty string among the candidates
func firstString(m map[string]interface{}, keys []string) string {
	for _, key := range keys {
		switch v := m[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			// numeric ids show up on some sources
			return strconv.FormatFloat(v, 'f', -1, 64)
		case json.Number:
			return v.String()
		}
	}
	return ""
}

// firstNumber returns the first parseable numeric value among the candidates
func firstNumber(m map[string]interface{}, keys []string) (float64, bool) {
	for _, key := range keys {
		if v, ok := asNumber(m[key]); ok {
			return v, true
		}
	}
	return 0, false
}

func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f, true
		}
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// firstTimestampMillis returns the first candidate field holding either
// an epoch-like number (normalized for the seconds/milliseconds
// ambiguity) or an RFC3339 string.
func firstTimestampMillis(m map[string]interface{}, keys []string) int64 {
	for _, key := range keys {
		v, present := m[key]
		if !present {
			continue
		}
		if n, ok := asNumber(v); ok && n > 0 {
			return normalizeTimestampMillis(n)
		}
		if s, ok := v.(string); ok {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				return t.UnixMilli()
			}
		}
	}
	return 0
}
