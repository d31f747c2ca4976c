// Package pricing loads the LiteLLM price table and estimates request cost
// from token counts.
package pricing

import "github.com/janekbaraniewski/usagescan/internal/core"

// TieredThreshold is the token count above which the "above 200k" rates apply.
const TieredThreshold int64 = 200_000

// Info is the per-token price schedule for one model key. A zero Above* rate
// means the category is not tiered.
type Info struct {
	InputCostPerToken      float64
	OutputCostPerToken     float64
	CacheReadCostPerToken  float64
	CacheWriteCostPerToken float64

	InputCostAbove200k      float64
	OutputCostAbove200k     float64
	CacheReadCostAbove200k  float64
	CacheWriteCostAbove200k float64
}

// Table maps model keys as published by the price feed to their prices.
type Table map[string]Info

// TieredCost prices n tokens at base up to the threshold and at above beyond
// it. Exactly TieredThreshold tokens are priced entirely at base.
func TieredCost(n int64, base, above float64) float64 {
	if n <= 0 {
		return 0
	}
	if above > 0 && n > TieredThreshold {
		return float64(TieredThreshold)*base + float64(n-TieredThreshold)*above
	}
	return float64(n) * base
}

// Cost sums the tiered cost of each token category. Input tokens are priced
// as reported; cache reads are not subtracted from them.
func (p Info) Cost(t core.Tokens) float64 {
	return TieredCost(t.Input, p.InputCostPerToken, p.InputCostAbove200k) +
		TieredCost(t.Output, p.OutputCostPerToken, p.OutputCostAbove200k) +
		TieredCost(t.CacheRead, p.CacheReadCostPerToken, p.CacheReadCostAbove200k) +
		TieredCost(t.CacheWrite, p.CacheWriteCostPerToken, p.CacheWriteCostAbove200k)
}
