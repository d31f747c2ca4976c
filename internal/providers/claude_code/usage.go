// Package claude_code reads token usage from Claude Code project transcripts.
package claude_code

import (
	"github.com/janekbaraniewski/usagescan/internal/core"
	"github.com/janekbaraniewski/usagescan/internal/providers/shared"
)

const unknownModel = "unknown"

var modelLookup = shared.Lookup{
	shared.P("message", "model"),
	shared.P("model"),
}

type usageSource struct{}

// NewUsageSource returns the line parser for Claude Code transcripts.
func NewUsageSource() shared.LineParser { return usageSource{} }

func (usageSource) Tool() core.Tool { return core.ToolClaude }

func (usageSource) DefaultPatterns() []string {
	return []string{
		"~/.config/claude/projects/**/*.jsonl",
		"~/.claude/projects/**/*.jsonl",
	}
}

func (usageSource) ParseLine(line []byte, fc *shared.FileContext) (core.UsageEntry, bool) {
	root, err := shared.DecodeObject(line)
	if err != nil {
		return core.UsageEntry{}, false
	}

	usage, _ := shared.PathMap(root, "message", "usage")
	tokens := core.Tokens{
		Input:      shared.Count(usage["input_tokens"]),
		Output:     shared.Count(usage["output_tokens"]),
		CacheRead:  shared.Count(usage["cache_read_input_tokens"]),
		CacheWrite: shared.Count(usage["cache_creation_input_tokens"]),
	}
	cost := shared.Amount(root["costUSD"])
	if tokens.IsZero() && cost == 0 {
		return core.UsageEntry{}, false
	}

	model := resolveModel(root)
	if cost == 0 && model != unknownModel {
		cost = fc.Estimate(model, tokens)
	}

	return core.NewUsageEntry(
		core.ToolClaude,
		model,
		shared.TimestampOr(root["timestamp"], fc.Fallback),
		tokens,
		cost,
	), true
}

// resolveModel treats a literal "unknown" like a missing field so the
// top-level model still gets a chance.
func resolveModel(root map[string]any) string {
	for _, path := range modelLookup {
		model, ok := shared.Lookup{path}.String(root)
		if ok && model != unknownModel {
			return model
		}
	}
	return unknownModel
}
