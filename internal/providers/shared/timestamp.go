package shared

import (
	"encoding/json"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

const millisThreshold = 1_000_000_000_000

// NormalizeTimestamp coerces a decoded JSON value into an RFC3339 UTC string.
//
// Strings are tried as RFC3339 first, then as an all-digit epoch; any other
// non-empty string is returned as-is. Numbers are epochs. Epochs at or above
// 1e12 in magnitude are milliseconds, everything else seconds. A value that
// cannot be represented reports false so the caller can use its fallback.
func NormalizeTimestamp(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return "", false
		}
		if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return FormatTimestamp(ts), true
		}
		if allDigits(s) {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				if ts, ok := epochTime(n); ok {
					return FormatTimestamp(ts), true
				}
			}
		}
		return s, true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return "", false
		}
		return normalizeEpoch(n)
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt64 || v < math.MinInt64 {
			return "", false
		}
		return normalizeEpoch(int64(v))
	case int64:
		return normalizeEpoch(v)
	case int:
		return normalizeEpoch(int64(v))
	}
	return "", false
}

// FormatTimestamp renders t in the canonical form used by usage entries.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// FileModTime returns the last-modified time of path, or "" when it cannot
// be read. Scanners use it for entries without a usable timestamp.
func FileModTime(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	return FormatTimestamp(info.ModTime())
}

// TimestampOr normalizes value, substituting fallback when that fails.
func TimestampOr(value any, fallback string) string {
	if ts, ok := NormalizeTimestamp(value); ok {
		return ts
	}
	return fallback
}

func normalizeEpoch(n int64) (string, bool) {
	ts, ok := epochTime(n)
	if !ok {
		return "", false
	}
	return FormatTimestamp(ts), true
}

func epochTime(n int64) (time.Time, bool) {
	var ts time.Time
	if n >= millisThreshold || n <= -millisThreshold {
		ts = time.UnixMilli(n).UTC()
	} else {
		ts = time.Unix(n, 0).UTC()
	}
	if y := ts.Year(); y < 0 || y > 9999 {
		return time.Time{}, false
	}
	return ts, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
