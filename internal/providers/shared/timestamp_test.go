package shared

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNormalizeTimestamp(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   string
		wantOK bool
	}{
		{name: "rfc3339 utc", value: "2024-01-15T10:30:00Z", want: "2024-01-15T10:30:00Z", wantOK: true},
		{name: "rfc3339 offset", value: "2024-01-15T12:30:00+02:00", want: "2024-01-15T10:30:00Z", wantOK: true},
		{name: "rfc3339 fractional", value: "2024-01-15T10:30:00.250Z", want: "2024-01-15T10:30:00.25Z", wantOK: true},
		{name: "epoch seconds string", value: "1700000000", want: "2023-11-14T22:13:20Z", wantOK: true},
		{name: "epoch millis string", value: "1700000000000", want: "2023-11-14T22:13:20Z", wantOK: true},
		{name: "epoch seconds number", value: json.Number("1700000000"), want: "2023-11-14T22:13:20Z", wantOK: true},
		{name: "epoch millis number", value: json.Number("1700000000123"), want: "2023-11-14T22:13:20.123Z", wantOK: true},
		{name: "float64 epoch", value: float64(1700000000), want: "2023-11-14T22:13:20Z", wantOK: true},
		{name: "raw string passthrough", value: "yesterday", want: "yesterday", wantOK: true},
		{name: "trimmed raw string", value: "  2024/01/15  ", want: "2024/01/15", wantOK: true},
		{name: "empty string", value: "   ", want: "", wantOK: false},
		{name: "fractional number", value: json.Number("1700000000.5"), want: "", wantOK: false},
		{name: "out of range number", value: json.Number("999999999999999999"), want: "", wantOK: false},
		{name: "out of range digits keep raw", value: "999999999999999999", want: "999999999999999999", wantOK: true},
		{name: "nil", value: nil, want: "", wantOK: false},
		{name: "bool", value: true, want: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeTimestamp(tt.value)
			if got != tt.want || ok != tt.wantOK {
				t.Fatalf("NormalizeTimestamp(%v) = %q, %v; want %q, %v", tt.value, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestTimestampOrFallsBack(t *testing.T) {
	if got := TimestampOr(nil, "fallback"); got != "fallback" {
		t.Fatalf("TimestampOr(nil) = %q, want fallback", got)
	}
	if got := TimestampOr("1700000000", "fallback"); got != "2023-11-14T22:13:20Z" {
		t.Fatalf("TimestampOr(epoch) = %q", got)
	}
}

func TestFileModTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jsonl")
	if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	mtime := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	if got := FileModTime(path); got != "2024-03-01T08:00:00Z" {
		t.Fatalf("FileModTime() = %q, want 2024-03-01T08:00:00Z", got)
	}
	if got := FileModTime(filepath.Join(t.TempDir(), "missing")); got != "" {
		t.Fatalf("FileModTime(missing) = %q, want empty", got)
	}
}
