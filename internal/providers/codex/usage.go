// Package codex reads token usage from Codex CLI session rollouts.
package codex

import (
	"github.com/janekbaraniewski/usagescan/internal/core"
	"github.com/janekbaraniewski/usagescan/internal/providers/shared"
)

// DefaultModel is assumed for token counts logged before any model is known.
const DefaultModel = "gpt-5"

var modelLookup = shared.Lookup{
	shared.P("payload", "info", "model"),
	shared.P("payload", "info", "model_name"),
	shared.P("payload", "info", "metadata", "model"),
	shared.P("payload", "model"),
	shared.P("payload", "metadata", "model"),
}

var timestampLookup = shared.Lookup{
	shared.P("timestamp"),
	shared.P("time"),
	shared.P("created_at"),
	shared.P("payload", "info", "time"),
	shared.P("payload", "time"),
}

type usageSource struct{}

// NewUsageSource returns the line parser for Codex session files.
func NewUsageSource() shared.LineParser { return usageSource{} }

func (usageSource) Tool() core.Tool { return core.ToolCodex }

func (usageSource) DefaultPatterns() []string {
	return []string{"~/.codex/sessions/**/*.jsonl"}
}

// ParseLine handles one rollout record. turn_context records only move the
// current model; token_count events emit usage. fc.State carries the model
// and the last cumulative snapshot between lines and between reads.
func (usageSource) ParseLine(line []byte, fc *shared.FileContext) (core.UsageEntry, bool) {
	root, err := shared.DecodeObject(line)
	if err != nil {
		return core.UsageEntry{}, false
	}
	state := fc.State
	if state == nil {
		state = &shared.FileState{}
		fc.State = state
	}

	recordType, _ := root["type"].(string)
	switch recordType {
	case "turn_context":
		if model, ok := modelLookup.String(root); ok {
			state.Model = model
		}
		return core.UsageEntry{}, false
	case "event_msg":
	default:
		return core.UsageEntry{}, false
	}

	if payloadType, _ := shared.PathValue(root, "payload", "type"); payloadType != "token_count" {
		return core.UsageEntry{}, false
	}

	var tokens core.Tokens
	if last, ok := shared.PathMap(root, "payload", "info", "last_token_usage"); ok {
		tokens = readUsage(last)
	} else if total, ok := shared.PathMap(root, "payload", "info", "total_token_usage"); ok {
		current := readUsage(total)
		if state.Totals != nil {
			tokens = CumulativeDelta(*state.Totals, current)
		} else {
			tokens = current
		}
		state.Totals = &current
	} else {
		return core.UsageEntry{}, false
	}

	if tokens.IsZero() {
		return core.UsageEntry{}, false
	}

	model := state.Model
	if inline, ok := modelLookup.String(root); ok {
		model = inline
		state.Model = inline
	}
	if model == "" {
		model = DefaultModel
	}

	ts, _ := timestampLookup.Value(root)
	return core.NewUsageEntry(
		core.ToolCodex,
		model,
		shared.TimestampOr(ts, fc.Fallback),
		tokens,
		fc.Estimate(model, tokens),
	), true
}

// CumulativeDelta is the per-category increase from previous to current.
// A category that went down means the counter was reset and contributes 0.
func CumulativeDelta(previous, current core.Tokens) core.Tokens {
	return core.Tokens{
		Input:      saturatingSub(current.Input, previous.Input),
		Output:     saturatingSub(current.Output, previous.Output),
		CacheRead:  saturatingSub(current.CacheRead, previous.CacheRead),
		CacheWrite: saturatingSub(current.CacheWrite, previous.CacheWrite),
	}
}

func readUsage(usage map[string]any) core.Tokens {
	cached, ok := usage["cached_input_tokens"]
	if !ok || cached == nil {
		cached = usage["cache_read_input_tokens"]
	}
	return core.Tokens{
		Input:     shared.Count(usage["input_tokens"]),
		Output:    shared.Count(usage["output_tokens"]),
		CacheRead: shared.Count(cached),
	}
}

func saturatingSub(a, b int64) int64 {
	if a <= b {
		return 0
	}
	return a - b
}
