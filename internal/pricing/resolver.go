package pricing

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/janekbaraniewski/usagescan/internal/core"
)

var providerPrefixes = []string{"anthropic/", "openai/", "azure/", "google/", "vertex_ai/", "gemini/"}

var qualitySuffixes = []string{"-high", "-low", "-medium"}

// Resolver maps free-form model names onto price table entries. The table
// is loaded lazily on first use and never reloaded.
type Resolver struct {
	load func() Table

	once  sync.Once
	table Table
	keys  []string
}

// NewResolver returns a resolver that calls load once, on first lookup.
func NewResolver(load func() Table) *Resolver {
	return &Resolver{load: load}
}

// NewSourceResolver loads the table from src on first lookup.
func NewSourceResolver(src Source) *Resolver {
	return NewResolver(func() Table {
		ctx := context.Background()
		if src.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, src.Timeout)
			defer cancel()
		}
		return Load(ctx, src)
	})
}

// NewStaticResolver wraps an already loaded table.
func NewStaticResolver(table Table) *Resolver {
	return NewResolver(func() Table { return table })
}

func (r *Resolver) ensure() {
	r.once.Do(func() {
		if r.load != nil {
			r.table = r.load()
		}
		if r.table == nil {
			r.table = Table{}
		}
		r.keys = make([]string, 0, len(r.table))
		for k := range r.table {
			r.keys = append(r.keys, k)
		}
		sort.Strings(r.keys)
	})
}

// Len reports how many priced models the table holds.
func (r *Resolver) Len() int {
	r.ensure()
	return len(r.table)
}

// Resolve finds the price entry for model. Lookup goes exact, then with a
// provider prefix, then by case-insensitive substring in either direction.
// When all three miss, normalized spellings of the name are retried:
// without "-thinking", without a -YYYYMMDD date, both, and without a
// quality suffix.
//
// Substring matching visits keys in sorted order. Which of several
// overlapping keys wins is a heuristic and callers should not rely on it.
func (r *Resolver) Resolve(model string) (Info, bool) {
	r.ensure()
	if len(r.table) == 0 || model == "" {
		return Info{}, false
	}

	for _, candidate := range candidates(model) {
		if info, ok := r.match(candidate); ok {
			return info, true
		}
	}
	return Info{}, false
}

// EstimateCost prices tokens for model. Unknown models cost zero.
func (r *Resolver) EstimateCost(model string, tokens core.Tokens) float64 {
	info, ok := r.Resolve(model)
	if !ok {
		return 0
	}
	return info.Cost(tokens)
}

func (r *Resolver) match(model string) (Info, bool) {
	if model == "" {
		return Info{}, false
	}
	if info, ok := r.table[model]; ok {
		return info, true
	}
	for _, prefix := range providerPrefixes {
		if info, ok := r.table[prefix+model]; ok {
			return info, true
		}
	}

	lower := strings.ToLower(model)
	for _, key := range r.keys {
		if key == "" {
			continue
		}
		k := strings.ToLower(key)
		if strings.Contains(k, lower) || strings.Contains(lower, k) {
			return r.table[key], true
		}
	}
	return Info{}, false
}

// candidates lists the spellings tried for model, original first.
func candidates(model string) []string {
	out := []string{model}
	add := func(s string) {
		if s == "" {
			return
		}
		for _, existing := range out {
			if existing == s {
				return
			}
		}
		out = append(out, s)
	}

	if base, ok := strings.CutSuffix(model, "-thinking"); ok {
		add(base)
		if undated, ok := stripDate(base); ok {
			add(undated)
		}
	}
	if undated, ok := stripDate(model); ok {
		add(undated)
		if base, ok := strings.CutSuffix(undated, "-thinking"); ok {
			add(base)
		}
	}
	for _, suffix := range qualitySuffixes {
		if base, ok := strings.CutSuffix(model, suffix); ok {
			add(base)
			break
		}
	}
	return out
}

// stripDate removes a trailing -YYYYMMDD component.
func stripDate(model string) (string, bool) {
	idx := strings.LastIndexByte(model, '-')
	if idx < 0 {
		return model, false
	}
	suffix := model[idx+1:]
	if len(suffix) != 8 {
		return model, false
	}
	for i := 0; i < len(suffix); i++ {
		if suffix[i] < '0' || suffix[i] > '9' {
			return model, false
		}
	}
	return model[:idx], true
}
