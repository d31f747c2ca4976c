package telemetry

import (
	"github.com/janekbaraniewski/usagescan/internal/core"
	"github.com/janekbaraniewski/usagescan/internal/providers/shared"
)

// Cursor is what the coordinator remembers about one file between scans.
// For line files Offset is the number of bytes consumed; for whole-file
// documents it is the size seen at the last successful read.
type Cursor struct {
	Offset int64
	State  shared.FileState
}

func (c *Cursor) reset() {
	c.Offset = 0
	c.State.Reset()
}

// recordOrigin says which storage first produced a message id.
type recordOrigin uint8

const (
	originFile recordOrigin = iota + 1
	originDatabase
)

type toolState struct {
	files map[string]*Cursor
	db    shared.DBCursor
	// emitted maps message ids to the storage that first produced them. A
	// message mirrored in the other storage is dropped; updates from the
	// same storage pass through.
	emitted map[string]recordOrigin
}

func newToolState() *toolState {
	return &toolState{
		files:   make(map[string]*Cursor),
		emitted: make(map[string]recordOrigin),
	}
}

// admit reports whether a record from origin should be emitted.
func (t *toolState) admit(rec shared.Record, origin recordOrigin) bool {
	if rec.ID == "" {
		return true
	}
	first, ok := t.emitted[rec.ID]
	if !ok {
		t.emitted[rec.ID] = origin
		return true
	}
	return first == origin
}

func (t *toolState) cursor(path string) (*Cursor, bool) {
	c, ok := t.files[path]
	if !ok {
		c = &Cursor{}
		t.files[path] = c
	}
	return c, ok
}

// ScanState holds per-file cursors for every tool plus the cache of entries
// returned so far. It is not safe for concurrent use on its own; the
// coordinator serializes access, and within one scan each tool's goroutine
// touches only its own toolState.
type ScanState struct {
	tools  map[core.Tool]*toolState
	cached []core.UsageEntry
}

func NewScanState() *ScanState {
	s := &ScanState{tools: make(map[core.Tool]*toolState, len(core.AllTools()))}
	for _, tool := range core.AllTools() {
		s.tools[tool] = newToolState()
	}
	return s
}

func (s *ScanState) tool(tool core.Tool) *toolState {
	if ts, ok := s.tools[tool]; ok {
		return ts
	}
	// Unknown tools get throwaway state so concurrent scans never write the
	// shared map.
	return newToolState()
}

// Cursor returns the tracked cursor for path, if any.
func (s *ScanState) Cursor(tool core.Tool, path string) (Cursor, bool) {
	ts, ok := s.tools[tool]
	if !ok {
		return Cursor{}, false
	}
	c, ok := ts.files[path]
	if !ok {
		return Cursor{}, false
	}
	return *c, true
}
