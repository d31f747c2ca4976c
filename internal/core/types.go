package core

// Tool identifies the coding assistant that produced a log.
type Tool string

const (
	ToolClaude   Tool = "Claude"
	ToolCodex    Tool = "Codex"
	ToolOpenCode Tool = "OpenCode"
)

// AllTools lists the supported tools in their canonical scan order.
func AllTools() []Tool {
	return []Tool{ToolClaude, ToolCodex, ToolOpenCode}
}

// ParseTool maps a CLI/config spelling onto a Tool.
func ParseTool(name string) (Tool, bool) {
	switch name {
	case "claude", "claude_code", "claude-code", string(ToolClaude):
		return ToolClaude, true
	case "codex", string(ToolCodex):
		return ToolCodex, true
	case "opencode", "open_code", string(ToolOpenCode):
		return ToolOpenCode, true
	}
	return "", false
}

// Tokens groups the four token categories every tool reports.
type Tokens struct {
	Input      int64
	Output     int64
	CacheRead  int64
	CacheWrite int64
}

func (t Tokens) IsZero() bool {
	return t.Input == 0 && t.Output == 0 && t.CacheRead == 0 && t.CacheWrite == 0
}

func (t Tokens) Total() int64 {
	return t.Input + t.Output + t.CacheRead + t.CacheWrite
}

// UsageEntry is one observed token-usage event.
type UsageEntry struct {
	Timestamp        string  `json:"timestamp"`
	Tool             Tool    `json:"tool"`
	Model            string  `json:"model"`
	InputTokens      int64   `json:"input_tokens"`
	OutputTokens     int64   `json:"output_tokens"`
	CacheReadTokens  int64   `json:"cache_read_tokens"`
	CacheWriteTokens int64   `json:"cache_write_tokens"`
	Cost             float64 `json:"cost"`
}

// NewUsageEntry builds an entry from a token group.
func NewUsageEntry(tool Tool, model, timestamp string, tokens Tokens, cost float64) UsageEntry {
	return UsageEntry{
		Timestamp:        timestamp,
		Tool:             tool,
		Model:            model,
		InputTokens:      tokens.Input,
		OutputTokens:     tokens.Output,
		CacheReadTokens:  tokens.CacheRead,
		CacheWriteTokens: tokens.CacheWrite,
		Cost:             cost,
	}
}

func (e UsageEntry) Tokens() Tokens {
	return Tokens{
		Input:      e.InputTokens,
		Output:     e.OutputTokens,
		CacheRead:  e.CacheReadTokens,
		CacheWrite: e.CacheWriteTokens,
	}
}

// HasUsage reports whether the entry carries any information. Entries with
// no tokens and no cost are never emitted.
func (e UsageEntry) HasUsage() bool {
	return !e.Tokens().IsZero() || e.Cost != 0
}
