package shared

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"
)

// Path addresses a value nested in decoded JSON objects.
type Path []string

// Lookup is an ordered chain of alternative paths for one logical field.
// Upstream schemas move fields around between versions, so each scanner
// declares every known location and takes the first that is present.
type Lookup []Path

// P is shorthand for building a Path from dotted segments.
func P(segments ...string) Path {
	return Path(segments)
}

// Value returns the first non-null value found along the chain.
func (l Lookup) Value(root map[string]any) (any, bool) {
	for _, path := range l {
		if v, ok := PathValue(root, path...); ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// String returns the first non-empty string found along the chain.
// Non-string values are skipped rather than stringified.
func (l Lookup) String(root map[string]any) (string, bool) {
	for _, path := range l {
		v, ok := PathValue(root, path...)
		if !ok {
			continue
		}
		if s, ok := v.(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed, true
			}
		}
	}
	return "", false
}

// PathValue walks root along path. A missing segment or a non-object
// intermediate reports false.
func PathValue(root map[string]any, path ...string) (any, bool) {
	var current any = root
	for _, segment := range path {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		next, ok := node[segment]
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// PathMap is PathValue restricted to object values.
func PathMap(root map[string]any, path ...string) (map[string]any, bool) {
	v, ok := PathValue(root, path...)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// Count reads a token count. Negative integers and fractional numbers count
// as zero; numeric strings are accepted.
func Count(value any) int64 {
	switch v := value.(type) {
	case json.Number:
		if n, err := strconv.ParseUint(v.String(), 10, 64); err == nil {
			return clampUint(n)
		}
		return 0
	case float64:
		if v <= 0 || v != math.Trunc(v) {
			return 0
		}
		if v >= math.MaxInt64 {
			return math.MaxInt64
		}
		return int64(v)
	case int64:
		return max(v, 0)
	case int:
		return int64(max(v, 0))
	case string:
		if n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64); err == nil {
			return clampUint(n)
		}
	}
	return 0
}

// Amount reads a monetary value. Anything that is not a number or a numeric
// string is zero.
func Amount(value any) float64 {
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		if err == nil {
			return f
		}
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil {
			return f
		}
	}
	return 0
}

// CountAt is Count applied to the value at path.
func CountAt(root map[string]any, path ...string) int64 {
	v, _ := PathValue(root, path...)
	return Count(v)
}

// DecodeObject parses one JSON object, keeping numbers as json.Number so
// large integers survive intact.
func DecodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errNotObject
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailingData
	}
	return out, nil
}

func clampUint(n uint64) int64 {
	if n > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(n)
}
