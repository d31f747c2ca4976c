// Package opencode reads token usage from OpenCode message storage, both the
// per-message JSON files and the newer SQLite database.
package opencode

import (
	"path/filepath"
	"strings"

	"github.com/janekbaraniewski/usagescan/internal/core"
	"github.com/janekbaraniewski/usagescan/internal/providers/shared"
)

const unknownModel = "unknown"

type usageSource struct{}

// NewUsageSource returns the document parser for OpenCode message files.
func NewUsageSource() shared.DocumentParser { return usageSource{} }

func (usageSource) Tool() core.Tool { return core.ToolOpenCode }

func (usageSource) DefaultPatterns() []string {
	return []string{"~/.local/share/opencode/storage/message/**/*.json"}
}

// ParseDocument decodes one message file. The record id is the message's
// own id, or the file name when the message has none.
func (usageSource) ParseDocument(data []byte, fc *shared.FileContext) (shared.Record, bool) {
	root, err := shared.DecodeObject(data)
	if err != nil {
		return shared.Record{}, false
	}
	entry, ok := messageEntry(root, fc)
	if !ok {
		return shared.Record{}, false
	}
	fallback := ""
	if fc != nil && fc.Path != "" {
		fallback = strings.TrimSuffix(filepath.Base(fc.Path), filepath.Ext(fc.Path))
	}
	return shared.Record{ID: messageID(root, fallback), Entry: entry}, true
}

func messageID(root map[string]any, fallback string) string {
	if id, ok := (shared.Lookup{shared.P("id")}).String(root); ok {
		return id
	}
	return strings.TrimSpace(fallback)
}

// messageEntry converts one decoded message record. Files and database rows
// share the same JSON shape.
func messageEntry(root map[string]any, fc *shared.FileContext) (core.UsageEntry, bool) {
	tokens := core.Tokens{
		Input:      shared.CountAt(root, "tokens", "input"),
		Output:     shared.CountAt(root, "tokens", "output"),
		CacheRead:  shared.CountAt(root, "tokens", "cache", "read"),
		CacheWrite: shared.CountAt(root, "tokens", "cache", "write"),
	}
	cost := shared.Amount(root["cost"])
	if tokens.IsZero() && cost == 0 {
		return core.UsageEntry{}, false
	}

	model, ok := shared.Lookup{shared.P("modelID")}.String(root)
	if !ok {
		model = unknownModel
	}
	if cost == 0 && model != unknownModel {
		cost = fc.Estimate(model, tokens)
	}

	created, _ := shared.PathValue(root, "time", "created")
	return core.NewUsageEntry(
		core.ToolOpenCode,
		model,
		shared.TimestampOr(created, fc.Fallback),
		tokens,
		cost,
	), true
}
