package opencode

import (
	"math"
	"testing"

	"github.com/janekbaraniewski/usagescan/internal/core"
	"github.com/janekbaraniewski/usagescan/internal/pricing"
	"github.com/janekbaraniewski/usagescan/internal/providers/shared"
)

func testContext() *shared.FileContext {
	return &shared.FileContext{
		Path:     "msg_1.json",
		Fallback: "2026-02-02T00:00:00Z",
		Pricing: pricing.NewStaticResolver(pricing.Table{
			"anthropic/claude-sonnet-4": {InputCostPerToken: 3e-6, OutputCostPerToken: 1.5e-5, CacheReadCostPerToken: 3e-7, CacheWriteCostPerToken: 3.75e-6},
		}),
	}
}

func parseMessage(data []byte) (core.UsageEntry, bool) {
	rec, ok := NewUsageSource().ParseDocument(data, testContext())
	return rec.Entry, ok
}

func TestParseDocument_RecordID(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"message id", `{"id":"msg_abc","tokens":{"input":1}}`, "msg_abc"},
		{"file name fallback", `{"tokens":{"input":1}}`, "msg_1"},
		{"blank id falls back", `{"id":"  ","tokens":{"input":1}}`, "msg_1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := NewUsageSource().ParseDocument([]byte(tt.doc), testContext())
			if !ok {
				t.Fatal("expected a record")
			}
			if rec.ID != tt.want {
				t.Fatalf("ID = %q, want %q", rec.ID, tt.want)
			}
		})
	}
}

func TestParseDocument_ReportedCost(t *testing.T) {
	doc := `{
		"id":"msg_1",
		"role":"assistant",
		"modelID":"qwen/qwen3-coder-flash",
		"time":{"created":1771754400000,"completed":1771754405000},
		"cost":0.012,
		"tokens":{"input":120,"output":40,"reasoning":5,"cache":{"read":10,"write":2}}
	}`

	entry, ok := parseMessage([]byte(doc))
	if !ok {
		t.Fatal("expected an entry")
	}
	if entry.Cost != 0.012 {
		t.Fatalf("cost = %v, want 0.012", entry.Cost)
	}
	if entry.InputTokens != 120 || entry.OutputTokens != 40 || entry.CacheReadTokens != 10 || entry.CacheWriteTokens != 2 {
		t.Fatalf("tokens = %+v", entry.Tokens())
	}
	if entry.Model != "qwen/qwen3-coder-flash" {
		t.Fatalf("model = %q", entry.Model)
	}
	if entry.Timestamp != "2026-02-22T10:00:00Z" {
		t.Fatalf("timestamp = %q, want 2026-02-22T10:00:00Z", entry.Timestamp)
	}
}

func TestParseDocument_EstimatesWithProviderPrefix(t *testing.T) {
	doc := `{"modelID":"claude-sonnet-4","tokens":{"input":1000,"output":100,"cache":{"read":0,"write":0}}}`

	entry, ok := parseMessage([]byte(doc))
	if !ok {
		t.Fatal("expected an entry")
	}
	want := 1000*3e-6 + 100*1.5e-5
	if math.Abs(entry.Cost-want) > 1e-12 {
		t.Fatalf("cost = %v, want %v", entry.Cost, want)
	}
	if entry.Timestamp != "2026-02-02T00:00:00Z" {
		t.Fatalf("timestamp = %q, want fallback", entry.Timestamp)
	}
}

func TestParseDocument_Skips(t *testing.T) {
	docs := []string{
		`{"role":"user","time":{"created":1771754400000}}`,
		`{"modelID":"claude-sonnet-4","cost":0,"tokens":{"input":0,"output":0,"cache":{"read":0,"write":0}}}`,
		`{"tokens":`,
	}
	for _, doc := range docs {
		if entry, ok := parseMessage([]byte(doc)); ok {
			t.Errorf("ParseDocument(%s) = %+v, want skip", doc, entry)
		}
	}
}

func TestParseDocument_UnknownModelNotEstimated(t *testing.T) {
	entry, ok := parseMessage([]byte(`{"tokens":{"input":5}}`))
	if !ok {
		t.Fatal("expected an entry")
	}
	if entry.Model != "unknown" || entry.Cost != 0 {
		t.Fatalf("entry = %+v, want unknown model with zero cost", entry)
	}
}
