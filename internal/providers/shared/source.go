package shared

import (
	"context"
	"errors"

	"github.com/janekbaraniewski/usagescan/internal/core"
)

var (
	errNotObject    = errors.New("json value is not an object")
	errTrailingData = errors.New("unexpected data after json object")
)

// CostEstimator prices a token group for a model. Unknown models cost zero.
type CostEstimator interface {
	EstimateCost(model string, tokens core.Tokens) float64
}

// Source is a usage log producer discovered through glob patterns.
type Source interface {
	Tool() core.Tool
	DefaultPatterns() []string
}

// FileState is parsing state that must survive between reads of the same
// file. Only scanners that track context across lines use it.
type FileState struct {
	Model string
	// Totals is the last cumulative counter snapshot, nil until one is seen.
	Totals *core.Tokens
}

// Reset forgets everything learned about the file.
func (s *FileState) Reset() {
	s.Model = ""
	s.Totals = nil
}

// FileContext is handed to parsers for every unit they decode.
type FileContext struct {
	Path string
	// Fallback is the file's modification time, used when an entry carries
	// no usable timestamp of its own.
	Fallback string
	Pricing  CostEstimator
	State    *FileState
}

func (fc *FileContext) Estimate(model string, tokens core.Tokens) float64 {
	if fc == nil || fc.Pricing == nil {
		return 0
	}
	return fc.Pricing.EstimateCost(model, tokens)
}

// LineParser decodes line-delimited logs. ParseLine sees one non-empty line
// at a time, in file order, and reports false for lines yielding no entry.
type LineParser interface {
	Source
	ParseLine(line []byte, fc *FileContext) (core.UsageEntry, bool)
}

// Record is a parsed entry plus the id of the stored message it came from.
// ID is empty when the source has no stable identity for the record.
type Record struct {
	ID    string
	Entry core.UsageEntry
}

// DocumentParser decodes logs where each file holds a single JSON record.
type DocumentParser interface {
	Source
	ParseDocument(data []byte, fc *FileContext) (Record, bool)
}

// DBCursor marks how far a database has been read: the highest update time
// seen and the ids already returned at exactly that time. Rows sharing the
// watermark can still arrive later, so they are tracked by id.
type DBCursor struct {
	Watermark int64
	AtMark    map[string]struct{}
}

// Seen reports whether a row updated at updated with id was already read.
func (c DBCursor) Seen(id string, updated int64) bool {
	if updated < c.Watermark {
		return true
	}
	if updated > c.Watermark {
		return false
	}
	_, ok := c.AtMark[id]
	return ok
}

// Mark records that the row id updated at updated was read. Rows must be
// marked in ascending update order.
func (c *DBCursor) Mark(id string, updated int64) {
	if updated > c.Watermark || c.AtMark == nil {
		if updated > c.Watermark {
			c.Watermark = updated
		}
		c.AtMark = make(map[string]struct{})
	}
	if updated == c.Watermark {
		c.AtMark[id] = struct{}{}
	}
}

// DatabaseReader reads records stored in a database rather than files.
// ReadSince returns records not yet covered by cursor and the cursor to
// pass on the next call.
type DatabaseReader interface {
	Tool() core.Tool
	ReadSince(ctx context.Context, dbPath string, cursor DBCursor, pricing CostEstimator) ([]Record, DBCursor, error)
}
