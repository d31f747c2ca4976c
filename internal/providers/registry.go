package providers

import (
	"strings"

	"github.com/samber/lo"

	"github.com/janekbaraniewski/usagescan/internal/config"
	"github.com/janekbaraniewski/usagescan/internal/core"
	"github.com/janekbaraniewski/usagescan/internal/providers/claude_code"
	"github.com/janekbaraniewski/usagescan/internal/providers/codex"
	"github.com/janekbaraniewski/usagescan/internal/providers/opencode"
	"github.com/janekbaraniewski/usagescan/internal/providers/shared"
)

// disabledDBPath in the config turns off database reads for a tool.
const disabledDBPath = "-"

// Binding is everything needed to scan one tool: the parser for its files,
// the patterns locating them and, for tools that have one, a database.
// Exactly one of Lines and Document is set.
type Binding struct {
	Tool     core.Tool
	Patterns []string
	Lines    shared.LineParser
	Document shared.DocumentParser
	Database shared.DatabaseReader
	DBPath   string
}

// AllUsageSources returns every registered file parser in scan order.
func AllUsageSources() []shared.Source {
	return []shared.Source{
		claude_code.NewUsageSource(),
		codex.NewUsageSource(),
		opencode.NewUsageSource(),
	}
}

// Bindings resolves the enabled tools against cfg.
func Bindings(cfg config.Config) []Binding {
	all := lo.Map(AllUsageSources(), func(src shared.Source, _ int) Binding {
		return bind(src, cfg)
	})
	return lo.Filter(all, func(b Binding, _ int) bool {
		return cfg.Source(b.Tool).Enabled
	})
}

// BindingFor returns the binding of tool regardless of whether it is
// enabled in cfg.
func BindingFor(cfg config.Config, tool core.Tool) (Binding, bool) {
	byTool := lo.KeyBy(lo.Map(AllUsageSources(), func(src shared.Source, _ int) Binding {
		return bind(src, cfg)
	}), func(b Binding) core.Tool { return b.Tool })
	b, ok := byTool[tool]
	return b, ok
}

func bind(src shared.Source, cfg config.Config) Binding {
	b := Binding{
		Tool:     src.Tool(),
		Patterns: src.DefaultPatterns(),
	}
	if custom := cfg.Source(b.Tool).Patterns; len(custom) > 0 {
		b.Patterns = lo.Compact(lo.Map(custom, func(p string, _ int) string { return strings.TrimSpace(p) }))
	}

	switch parser := src.(type) {
	case shared.LineParser:
		b.Lines = parser
	case shared.DocumentParser:
		b.Document = parser
	}

	if b.Tool == core.ToolOpenCode {
		dbPath := strings.TrimSpace(cfg.Sources.OpenCode.DBPath)
		switch dbPath {
		case disabledDBPath:
		case "":
			b.Database = opencode.NewDatabaseSource()
			b.DBPath = opencode.DefaultDBPath
		default:
			b.Database = opencode.NewDatabaseSource()
			b.DBPath = dbPath
		}
	}
	return b
}
