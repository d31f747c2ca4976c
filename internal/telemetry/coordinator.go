package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/janekbaraniewski/usagescan/internal/core"
	"github.com/janekbaraniewski/usagescan/internal/providers"
	"github.com/janekbaraniewski/usagescan/internal/providers/shared"
)

// Coordinator runs the per-tool scanners and remembers how far each file
// has been read, so repeated incremental scans only return new usage.
//
// Full and incremental scans share one lock. A full scan replaces all
// tracked state, so callers mixing the two should sequence them.
type Coordinator struct {
	bindings []providers.Binding
	pricing  shared.CostEstimator

	mu    sync.Mutex
	state *ScanState
}

func NewCoordinator(bindings []providers.Binding, pricing shared.CostEstimator) *Coordinator {
	return &Coordinator{
		bindings: bindings,
		pricing:  pricing,
		state:    NewScanState(),
	}
}

// Bindings returns the tool bindings the coordinator scans.
func (c *Coordinator) Bindings() []providers.Binding {
	return slices.Clone(c.bindings)
}

// ScanAll reads every file from the beginning and returns all entries. The
// tracked cursors are then re-baselined to where this scan stopped and the
// cache is replaced with its result.
func (c *Coordinator) ScanAll() []core.UsageEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	fresh := NewScanState()
	entries := c.scan(fresh, c.bindings)
	fresh.cached = slices.Clone(entries)
	c.state = fresh
	return entries
}

// ScanIncremental returns only entries appended since the previous scan and
// adds them to the cache.
func (c *Coordinator) ScanIncremental() []core.UsageEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.scanIncrementalLocked()
}

// scanIncrementalLocked must be called with c.mu held.
func (c *Coordinator) scanIncrementalLocked() []core.UsageEntry {
	entries := c.scan(c.state, c.bindings)
	c.state.cached = append(c.state.cached, entries...)
	return entries
}

// Cached returns every entry returned by scans since the last ScanAll.
func (c *Coordinator) Cached() []core.UsageEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.state.cached)
}

// ScanTool fully scans one tool with throwaway state. Tracked cursors and
// the cache are left alone.
func (c *Coordinator) ScanTool(tool core.Tool) []core.UsageEntry {
	bindings := make([]providers.Binding, 0, 1)
	for _, b := range c.bindings {
		if b.Tool == tool {
			bindings = append(bindings, b)
		}
	}
	return c.scan(NewScanState(), bindings)
}

func (c *Coordinator) ScanClaudeUsage() []core.UsageEntry { return c.ScanTool(core.ToolClaude) }

func (c *Coordinator) ScanCodexUsage() []core.UsageEntry { return c.ScanTool(core.ToolCodex) }

func (c *Coordinator) ScanOpenCodeUsage() []core.UsageEntry { return c.ScanTool(core.ToolOpenCode) }

// ScanAllUsage is ScanAll.
func (c *Coordinator) ScanAllUsage() []core.UsageEntry { return c.ScanAll() }

// ScanAllUsageIncremental runs an incremental scan and returns the whole
// cache, old entries first.
func (c *Coordinator) ScanAllUsageIncremental() []core.UsageEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.scanIncrementalLocked()
	return slices.Clone(c.state.cached)
}

// scan runs one goroutine per binding. Results keep binding order.
func (c *Coordinator) scan(state *ScanState, bindings []providers.Binding) []core.UsageEntry {
	results := make([][]core.UsageEntry, len(bindings))

	var g errgroup.Group
	for i, b := range bindings {
		ts := state.tool(b.Tool)
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%s scan panicked: %v", b.Tool, r)
				}
			}()
			results[i] = c.scanBinding(b, ts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("telemetry: %v", err)
	}
	return slices.Concat(results...)
}

func (c *Coordinator) scanBinding(b providers.Binding, ts *toolState) []core.UsageEntry {
	var out []core.UsageEntry
	for _, path := range shared.Discover(b.Patterns) {
		switch {
		case b.Lines != nil:
			out = append(out, c.scanLineFile(b.Lines, path, ts)...)
		case b.Document != nil:
			if rec, ok := c.scanDocumentFile(b.Document, path, ts); ok && ts.admit(rec, originFile) {
				out = append(out, rec.Entry)
			}
		}
	}

	if b.Database != nil && b.DBPath != "" {
		records, cursor, err := b.Database.ReadSince(context.Background(), b.DBPath, ts.db, c.pricing)
		if err != nil {
			log.Printf("telemetry: %s database: %v", b.Tool, err)
		}
		ts.db = cursor
		for _, rec := range records {
			if ts.admit(rec, originDatabase) {
				out = append(out, rec.Entry)
			}
		}
	}
	return out
}

func (c *Coordinator) scanLineFile(parser shared.LineParser, path string, ts *toolState) []core.UsageEntry {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	size := info.Size()

	cursor, seen := ts.cursor(path)
	switch {
	case seen && size == cursor.Offset:
		return nil
	case seen && size < cursor.Offset:
		// Truncated or replaced: start over, including any per-file context.
		cursor.reset()
	}

	fc := &shared.FileContext{
		Path:     path,
		Fallback: shared.FileModTime(path),
		Pricing:  c.pricing,
		State:    &cursor.State,
	}

	var out []core.UsageEntry
	next, err := readLines(path, cursor.Offset, func(line []byte) {
		if entry, ok := parser.ParseLine(line, fc); ok {
			out = append(out, entry)
		}
	})
	if err != nil {
		log.Printf("telemetry: %v", err)
	}
	cursor.Offset = next
	return out
}

func (c *Coordinator) scanDocumentFile(parser shared.DocumentParser, path string, ts *toolState) (shared.Record, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return shared.Record{}, false
	}
	size := info.Size()

	cursor, seen := ts.cursor(path)
	if seen && size == cursor.Offset {
		return shared.Record{}, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("telemetry: read %s: %v", path, err)
		return shared.Record{}, false
	}
	if !json.Valid(data) {
		// Likely still being written; keep the old size so it is retried.
		return shared.Record{}, false
	}
	cursor.Offset = int64(len(data))

	fc := &shared.FileContext{
		Path:     path,
		Fallback: shared.FileModTime(path),
		Pricing:  c.pricing,
	}
	return parser.ParseDocument(data, fc)
}
