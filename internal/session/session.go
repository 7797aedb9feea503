// Package session holds the state shared by every evaluation in a run: the
// ground-truth index and the universe size.
package session

import (
	"fmt"

	"github.com/matsen/lfreval/internal/community"
	"github.com/matsen/lfreval/internal/groundtruth"
	"github.com/matsen/lfreval/internal/metric"
)

// Session is read-only after construction and safe for concurrent use.
type Session struct {
	index        *groundtruth.Index
	universeSize int
}

// Evaluation is the score of one proposed community for one query node.
type Evaluation struct {
	Node     int
	TrueSize int
	metric.Result
}

// New wraps an already-built index. A universeSize <= 0 selects metric.DefaultUniverseSize.
func New(idx *groundtruth.Index, universeSize int) *Session {
	if universeSize <= 0 {
		universeSize = metric.DefaultUniverseSize
	}
	return &Session{index: idx, universeSize: universeSize}
}

// Open builds the ground-truth index at path and returns a session over it.
func Open(groundTruthPath string, universeSize int) (*Session, error) {
	idx, err := groundtruth.Build(groundTruthPath)
	if err != nil {
		return nil, err
	}
	return New(idx, universeSize), nil
}

// Index returns the ground-truth index.
func (s *Session) Index() *groundtruth.Index {
	return s.index
}

// UniverseSize returns the number of nodes assumed in the benchmark network.
func (s *Session) UniverseSize() int {
	return s.universeSize
}

// TrueCommunity returns the planted community of node.
func (s *Session) TrueCommunity(node int) (community.Set, error) {
	return s.index.TrueCommunity(node)
}

// Evaluate scores the proposed community stored at proposedPath against the
// true community of node.
func (s *Session) Evaluate(node int, proposedPath string) (Evaluation, error) {
	truth, err := s.index.TrueCommunity(node)
	if err != nil {
		return Evaluation{}, err
	}

	res, err := metric.Evaluate(proposedPath, truth, s.universeSize)
	if err != nil {
		return Evaluation{}, fmt.Errorf("evaluating node %d: %w", node, err)
	}

	return Evaluation{Node: node, TrueSize: truth.Len(), Result: res}, nil
}
