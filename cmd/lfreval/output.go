package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/matsen/lfreval/internal/community"
	"github.com/matsen/lfreval/internal/groundtruth"
	"github.com/matsen/lfreval/internal/storage"
)

// MaxHumanMembers limits how many set members are printed in human output.
const MaxHumanMembers = 20

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// exitCodeFor maps a domain error to an exit code.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, community.ErrMalformedRecord),
		errors.Is(err, groundtruth.ErrMalformedRecord),
		errors.Is(err, groundtruth.ErrConflictingAssignment):
		return ExitDataError
	case errors.Is(err, groundtruth.ErrUnresolvedNode),
		errors.Is(err, storage.ErrRunNotFound):
		return ExitNotFound
	default:
		return ExitError
	}
}

// ErrorResponse is the JSON body written on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// formatMembers renders a set in ascending order, truncated after limit members.
func formatMembers(s community.Set, limit int) string {
	members := s.Sorted()
	parts := make([]string, 0, min(len(members), limit))
	for i, n := range members {
		if i == limit {
			parts = append(parts, fmt.Sprintf("... (%d more)", len(members)-limit))
			break
		}
		parts = append(parts, strconv.Itoa(n))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
