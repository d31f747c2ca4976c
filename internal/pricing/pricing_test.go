package pricing

import (
	"math"
	"testing"

	"github.com/janekbaraniewski/usagescan/internal/core"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTieredCost(t *testing.T) {
	tests := []struct {
		name  string
		n     int64
		base  float64
		above float64
		want  float64
	}{
		{name: "zero tokens", n: 0, base: 1e-6, above: 2e-6, want: 0},
		{name: "below threshold", n: 1000, base: 1e-6, above: 2e-6, want: 0.001},
		{name: "exactly threshold", n: 200_000, base: 1e-6, above: 2e-6, want: 0.2},
		{name: "above threshold", n: 250_000, base: 1e-6, above: 2e-6, want: 0.3},
		{name: "above threshold without tier", n: 250_000, base: 1e-6, above: 0, want: 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TieredCost(tt.n, tt.base, tt.above)
			if !almostEqual(got, tt.want) {
				t.Fatalf("TieredCost(%d) = %v, want %v", tt.n, got, tt.want)
			}
		})
	}
}

func TestInfoCostDoesNotSubtractCacheReads(t *testing.T) {
	info := Info{
		InputCostPerToken:      3e-6,
		OutputCostPerToken:     15e-6,
		CacheReadCostPerToken:  0.3e-6,
		CacheWriteCostPerToken: 3.75e-6,
	}
	tokens := core.Tokens{Input: 1000, Output: 500, CacheRead: 1000, CacheWrite: 2000}

	want := 1000*3e-6 + 500*15e-6 + 1000*0.3e-6 + 2000*3.75e-6
	if got := info.Cost(tokens); !almostEqual(got, want) {
		t.Fatalf("Cost() = %v, want %v", got, want)
	}
}

func TestInfoCostClaudeExample(t *testing.T) {
	info := Info{InputCostPerToken: 3e-6, OutputCostPerToken: 15e-6}
	got := info.Cost(core.Tokens{Input: 10_000, Output: 5_000})
	if !almostEqual(got, 0.105) {
		t.Fatalf("Cost() = %v, want 0.105", got)
	}
}
