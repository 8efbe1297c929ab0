// Package history persists event logs to disk. The on-disk format is
// the same single JSON array the engine serializes; paths ending in .gz
// are transparently gzip-compressed. Writes are atomic so a crashed
// save never leaves a truncated log behind.
package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/lox/deckforge/internal/event"
	"github.com/lox/deckforge/internal/fileutil"
)

// Save writes the event log to path.
func Save(path string, events []event.Event) error {
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("encode event log: %w", err)
	}

	if compressed(path) {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return fmt.Errorf("compress event log: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("compress event log: %w", err)
		}
		data = buf.Bytes()
	}

	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Load reads an event log from path.
func Load(path string) ([]event.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if compressed(path) {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decompress %s: %w", path, err)
		}
		defer zr.Close()
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(zr); err != nil {
			return nil, fmt.Errorf("decompress %s: %w", path, err)
		}
		data = buf.Bytes()
	}

	var events []event.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return events, nil
}

func compressed(path string) bool {
	return strings.HasSuffix(path, ".gz")
}
