package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/janekbaraniewski/usagescan/internal/core"
)

const (
	formatJSON  = "json"
	formatJSONL = "jsonl"
)

func validateFormat(format string) error {
	switch format {
	case formatJSON, formatJSONL:
		return nil
	}
	return fmt.Errorf("unknown format %q; expected json or jsonl", format)
}

// writeEntries prints entries as one JSON array or as JSON lines.
func writeEntries(w io.Writer, entries []core.UsageEntry, format string) error {
	enc := json.NewEncoder(w)
	switch format {
	case formatJSONL:
		for _, entry := range entries {
			if err := enc.Encode(entry); err != nil {
				return fmt.Errorf("writing entry: %w", err)
			}
		}
		return nil
	case formatJSON:
		if entries == nil {
			entries = []core.UsageEntry{}
		}
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("writing entries: %w", err)
		}
		return nil
	}
	return validateFormat(format)
}
