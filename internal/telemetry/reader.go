package telemetry

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

const readBufferSize = 256 * 1024

// readLines calls fn for every non-empty line of path from offset on and
// returns the offset to resume from. A final line without a newline that is
// not valid JSON is assumed to be mid-write and is left for the next read.
func readLines(path string, offset int64, fn func(line []byte)) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return offset, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if offset > 0 {
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			return offset, fmt.Errorf("seek %s: %w", path, err)
		}
	}

	reader := bufio.NewReaderSize(f, readBufferSize)
	pos := offset
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			trimmed := bytes.TrimSpace(line)
			if errors.Is(err, io.EOF) && len(trimmed) > 0 && !json.Valid(trimmed) {
				return pos, nil
			}
			pos += int64(len(line))
			if len(trimmed) > 0 {
				fn(trimmed)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return pos, nil
			}
			return pos, fmt.Errorf("read %s: %w", path, err)
		}
	}
}
