package opencode

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/janekbaraniewski/usagescan/internal/core"
	"github.com/janekbaraniewski/usagescan/internal/providers/shared"
)

// DefaultDBPath is where OpenCode keeps its message database.
const DefaultDBPath = "~/.local/share/opencode/opencode.db"

type databaseSource struct{}

// NewDatabaseSource returns the reader for the OpenCode SQLite store.
func NewDatabaseSource() shared.DatabaseReader { return databaseSource{} }

func (databaseSource) Tool() core.Tool { return core.ToolOpenCode }

// ReadSince returns usage from message rows not covered by cursor. Rows
// updated at exactly the watermark are re-queried and filtered by id, so a
// row landing on the same millisecond as an earlier one is still returned.
// A missing database or message table is not an error.
func (databaseSource) ReadSince(ctx context.Context, dbPath string, cursor shared.DBCursor, pricing shared.CostEstimator) ([]shared.Record, shared.DBCursor, error) {
	dbPath, ok := shared.ExpandHome(dbPath)
	if !ok {
		return nil, cursor, nil
	}
	if _, err := os.Stat(dbPath); err != nil {
		return nil, cursor, nil
	}

	db, err := sql.Open("sqlite3", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, cursor, fmt.Errorf("open opencode db: %w", err)
	}
	defer db.Close()

	if !sqliteTableExists(ctx, db, "message") {
		return nil, cursor, nil
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, time_created, time_updated, data
		FROM message
		WHERE time_updated >= ?
		ORDER BY time_updated ASC, id ASC
	`, cursor.Watermark)
	if err != nil {
		return nil, cursor, fmt.Errorf("query opencode messages: %w", err)
	}
	defer rows.Close()

	next := shared.DBCursor{Watermark: cursor.Watermark, AtMark: maps.Clone(cursor.AtMark)}
	var out []shared.Record
	for rows.Next() {
		var (
			id          string
			timeCreated int64
			timeUpdated int64
			data        string
		)
		if err := rows.Scan(&id, &timeCreated, &timeUpdated, &data); err != nil {
			continue
		}
		if cursor.Seen(id, timeUpdated) {
			continue
		}
		next.Mark(id, timeUpdated)

		root, err := shared.DecodeObject([]byte(data))
		if err != nil {
			continue
		}
		fc := &shared.FileContext{
			Path:     dbPath,
			Fallback: shared.TimestampOr(timeCreated, ""),
			Pricing:  pricing,
		}
		if entry, ok := messageEntry(root, fc); ok {
			out = append(out, shared.Record{ID: messageID(root, id), Entry: entry})
		}
	}
	if err := rows.Err(); err != nil {
		return out, next, fmt.Errorf("read opencode messages: %w", err)
	}
	return out, next, nil
}

func sqliteTableExists(ctx context.Context, db *sql.DB, table string) bool {
	var exists int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM sqlite_master WHERE type='table' AND name=? LIMIT 1`, strings.TrimSpace(table)).Scan(&exists)
	return err == nil && exists == 1
}
