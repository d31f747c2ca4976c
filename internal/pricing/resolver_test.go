package pricing

import (
	"testing"

	"github.com/janekbaraniewski/usagescan/internal/core"
)

func TestResolveExactAndPrefixed(t *testing.T) {
	r := NewStaticResolver(Table{
		"claude-sonnet-4-5":  {InputCostPerToken: 3e-6},
		"openai/gpt-4o-mini": {InputCostPerToken: 1e-7},
	})

	if info, ok := r.Resolve("claude-sonnet-4-5"); !ok || info.InputCostPerToken != 3e-6 {
		t.Fatalf("exact resolve = %+v, %v", info, ok)
	}
	if info, ok := r.Resolve("gpt-4o-mini"); !ok || info.InputCostPerToken != 1e-7 {
		t.Fatalf("prefixed resolve = %+v, %v", info, ok)
	}
}

func TestResolveDateSuffix(t *testing.T) {
	r := NewStaticResolver(Table{"gpt-4": {InputCostPerToken: 30e-6, OutputCostPerToken: 60e-6}})

	for _, model := range []string{"gpt-4", "gpt-4-20240101"} {
		info, ok := r.Resolve(model)
		if !ok {
			t.Fatalf("Resolve(%q) found nothing", model)
		}
		if info.InputCostPerToken != 30e-6 {
			t.Fatalf("Resolve(%q).InputCostPerToken = %v, want 30e-6", model, info.InputCostPerToken)
		}
	}
}

func TestResolveFuzzyMatchesSomeCandidate(t *testing.T) {
	table := Table{
		"anthropic.claude-opus-4-1-v1:0": {InputCostPerToken: 15e-6},
		"bedrock/claude-opus-4-1":        {InputCostPerToken: 15e-6},
		"gpt-5":                          {InputCostPerToken: 1.25e-6},
	}
	r := NewStaticResolver(table)

	info, ok := r.Resolve("CLAUDE-OPUS-4-1")
	if !ok {
		t.Fatal("expected fuzzy match")
	}
	if info.InputCostPerToken != 15e-6 {
		t.Fatalf("fuzzy match returned %+v, want one of the opus entries", info)
	}
}

func TestResolveNormalizations(t *testing.T) {
	r := NewStaticResolver(Table{
		"claude-3-7-sonnet": {InputCostPerToken: 3e-6},
		"o3":                {InputCostPerToken: 2e-6},
	})

	tests := []string{
		"claude-3-7-sonnet-thinking",
		"claude-3-7-sonnet-20250219",
		"claude-3-7-sonnet-20250219-thinking",
		"claude-3-7-sonnet-thinking-20250219",
	}
	for _, model := range tests {
		if _, ok := r.Resolve(model); !ok {
			t.Errorf("Resolve(%q) found nothing", model)
		}
	}

	// "o3-high" already contains "o3" so it resolves by substring; the quality
	// suffix only matters when the substring step cannot see through it.
	if _, ok := r.Resolve("o3-high"); !ok {
		t.Error("Resolve(o3-high) found nothing")
	}
}

func TestCandidatesOrder(t *testing.T) {
	got := candidates("m-thinking-20250101")
	want := []string{"m-thinking-20250101", "m-thinking", "m"}
	if len(got) != len(want) {
		t.Fatalf("candidates = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("candidates = %v, want %v", got, want)
		}
	}

	got = candidates("gpt-5-medium")
	if len(got) != 2 || got[1] != "gpt-5" {
		t.Fatalf("candidates(gpt-5-medium) = %v", got)
	}
}

func TestStripDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "gpt-4-20240101", want: "gpt-4", ok: true},
		{in: "gpt-4-2024010", want: "gpt-4-2024010", ok: false},
		{in: "gpt-4-2024O101", want: "gpt-4-2024O101", ok: false},
		{in: "20240101", want: "20240101", ok: false},
	}
	for _, tt := range tests {
		got, ok := stripDate(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("stripDate(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestResolveUnknownAndEmpty(t *testing.T) {
	r := NewStaticResolver(Table{"gpt-4": {InputCostPerToken: 1}})
	if _, ok := r.Resolve(""); ok {
		t.Fatal("empty model should not resolve")
	}
	if _, ok := r.Resolve("mistral-large"); ok {
		t.Fatal("unrelated model should not resolve")
	}
	if got := r.EstimateCost("mistral-large", core.Tokens{Input: 100}); got != 0 {
		t.Fatalf("EstimateCost(unknown) = %v, want 0", got)
	}
}

func TestResolverLoadsOnce(t *testing.T) {
	calls := 0
	r := NewResolver(func() Table {
		calls++
		return Table{"gpt-4": {InputCostPerToken: 1e-6}}
	})
	for i := 0; i < 3; i++ {
		r.Resolve("gpt-4")
	}
	if calls != 1 {
		t.Fatalf("load called %d times, want 1", calls)
	}
}

func TestResolverEmptyTable(t *testing.T) {
	r := NewResolver(func() Table { return nil })
	if got := r.EstimateCost("gpt-4", core.Tokens{Input: 10}); got != 0 {
		t.Fatalf("EstimateCost with empty table = %v, want 0", got)
	}
	if r.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", r.Len())
	}
}
