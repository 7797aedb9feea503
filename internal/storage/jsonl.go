// Package storage persists sweep runs in JSONL and SQLite formats.
//
// The JSONL log is the source of truth; the SQLite database is a query cache
// that can be rebuilt from it at any time.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/matsen/lfreval/internal/sweep"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (16MB per line).
// A run with many nodes and k values is stored on a single line.
const MaxJSONLLineCapacity = 16 * 1024 * 1024

// Run is a sweep report with a stable identifier.
type Run struct {
	ID string `json:"id"`
	sweep.Report
}

// NewRun assigns a fresh ID to report.
func NewRun(report *sweep.Report) Run {
	return Run{ID: uuid.NewString(), Report: *report}
}

// ReadRuns reads all runs from a JSONL file.
func ReadRuns(path string) ([]Run, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Missing log means no runs yet
		}
		return nil, fmt.Errorf("opening runs file: %w", err)
	}
	defer f.Close()

	var runs []Run
	scanner := bufio.NewScanner(f)

	// Increase buffer size for long lines
	scanner.Buffer(make([]byte, 64*1024), MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var run Run
		if err := json.Unmarshal(line, &run); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		runs = append(runs, run)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading runs file: %w", err)
	}

	return runs, nil
}

// AppendRun adds a run to the end of a JSONL file, creating it if needed.
func AppendRun(path string, run Run) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening runs file for append: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encoding run: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing run: %w", err)
	}

	return nil
}
