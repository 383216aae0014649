// Package logreader loads PokerNow session exports. An export is a CSV
// file with columns (entry, at, order) written newest-first; the reader
// owns the reversal so downstream consumers always see chronological
// records.
package logreader

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/kmatts/pokernight/internal/parser"
)

// Read decodes one export stream into chronological records. The header
// row, when present, is dropped.
func Read(r io.Reader) ([]parser.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) > 0 && rows[0][0] == "entry" {
		rows = rows[1:]
	}

	records := make([]parser.Record, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		if len(row) < 3 {
			return nil, fmt.Errorf("csv row %d has %d fields, want 3", i+1, len(row))
		}
		at, err := time.Parse(time.RFC3339, row[1])
		if err != nil {
			return nil, fmt.Errorf("csv row %d: bad timestamp %q: %w", i+1, row[1], err)
		}
		records = append(records, parser.Record{Text: row[0], At: at, Token: row[2]})
	}
	return records, nil
}

// ReadFile loads one export file into chronological records.
func ReadFile(path string) ([]parser.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log %s: %w", path, err)
	}
	defer f.Close()

	records, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("log %s: %w", path, err)
	}
	slog.Debug("log file loaded", "path", path, "records", len(records))
	return records, nil
}

// DetectLogFiles finds PokerNow exports under dir, sorted newest first.
// An empty dir means the current directory.
func DetectLogFiles(dir string) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	matches, err := filepath.Glob(filepath.Join(dir, "poker_now_log_*.csv"))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no poker_now_log_*.csv files found in %s", dir)
	}
	sortByModTimeDesc(matches)
	return matches, nil
}

// sortByModTimeDesc sorts paths newest-first using a single os.Stat per
// file rather than stat calls inside the comparator.
func sortByModTimeDesc(paths []string) {
	modTimes := make(map[string]time.Time, len(paths))
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil {
			modTimes[p] = info.ModTime()
		}
	}
	sort.Slice(paths, func(i, j int) bool {
		return modTimes[paths[i]].After(modTimes[paths[j]])
	})
}
