package community

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// DefaultDelimiter separates the two endpoints of a record.
const DefaultDelimiter = " "

// Sentinel is the marker that terminates a discovered-community file.
// Any line containing it ends the read, wherever it appears in the line.
const Sentinel = "-1"

// MaxLineCapacity is the maximum buffer size for a single record line.
const MaxLineCapacity = 64 * 1024

// ErrMalformedRecord is returned when a non-sentinel line is not a pair of node identifiers.
var ErrMalformedRecord = errors.New("malformed record")

// RecordError describes a malformed line. It unwraps to ErrMalformedRecord.
type RecordError struct {
	Line   int    // 1-based line number
	Text   string // Trimmed line content
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("line %d: %s: %q: %s", e.Line, ErrMalformedRecord, e.Text, e.Reason)
}

func (e *RecordError) Unwrap() error {
	return ErrMalformedRecord
}

// ParseOptions controls how records are split and where reading stops.
type ParseOptions struct {
	Delimiter string // Field separator; empty means DefaultDelimiter
	// StopAtBlank treats a blank line as terminal. Without it a blank line is malformed.
	StopAtBlank bool
}

// Parsed is the result of reading a pair-list file.
type Parsed struct {
	Nodes Set // Every endpoint seen before the sentinel
	Edges int // Number of records read
}

// Parse reads records from r until the sentinel, EOF, or (with StopAtBlank) a blank line.
// Lines after the terminator are never read.
func Parse(r io.Reader, opts ParseOptions) (*Parsed, error) {
	delim := opts.Delimiter
	if delim == "" {
		delim = DefaultDelimiter
	}

	out := &Parsed{Nodes: make(Set)}
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 4096)
	scanner.Buffer(buf, MaxLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		raw := scanner.Text()
		if strings.Contains(raw, Sentinel) {
			return out, nil
		}

		line := strings.TrimSpace(raw)
		if line == "" && opts.StopAtBlank {
			return out, nil
		}

		a, b, err := splitPair(line, delim)
		if err != nil {
			return nil, &RecordError{Line: lineNum, Text: line, Reason: err.Error()}
		}
		out.Nodes.Add(a)
		out.Nodes.Add(b)
		out.Edges++
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	return out, nil
}

// splitPair splits a trimmed line into exactly two integer node identifiers.
func splitPair(line, delim string) (int, int, error) {
	fields := strings.Split(line, delim)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("expected 2 fields, got %d", len(fields))
	}
	a, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid node %q", fields[0])
	}
	b, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid node %q", fields[1])
	}
	return a, b, nil
}

// parseFile opens path, parses it with opts and closes it before returning.
func parseFile(path string, opts ParseOptions) (*Parsed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening community file: %w", err)
	}
	defer f.Close()

	parsed, err := Parse(f, opts)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return parsed, nil
}

// GraphSize reports the number of distinct nodes and the number of edges in a
// discovered-community file. A blank line ends the read as well as the sentinel.
func GraphSize(path, delimiter string) (nodes, edges int, err error) {
	parsed, err := parseFile(path, ParseOptions{Delimiter: delimiter, StopAtBlank: true})
	if err != nil {
		return 0, 0, err
	}
	return parsed.Nodes.Len(), parsed.Edges, nil
}

// ReadMembers returns the proposed community stored in path: the union of all
// endpoints before the sentinel, using the default delimiter.
func ReadMembers(path string) (Set, error) {
	parsed, err := parseFile(path, ParseOptions{})
	if err != nil {
		return nil, err
	}
	return parsed.Nodes, nil
}
