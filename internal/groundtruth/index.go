// Package groundtruth builds the planted-partition index of an LFR benchmark from
// its node-to-community table.
//
// The file format is one record per line, "<node>\t<community>", terminated by the
// first blank line or end of file. The index is built once and is read-only
// afterwards, so a single *Index may be shared by concurrent evaluations.
package groundtruth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/matsen/lfreval/internal/community"
)

// FieldSeparator separates node and community id in a ground-truth record.
const FieldSeparator = "\t"

// Index errors.
var (
	ErrMalformedRecord       = errors.New("malformed ground-truth record")
	ErrConflictingAssignment = errors.New("node assigned to more than one community")
	ErrUnresolvedNode        = errors.New("node not in ground truth")
)

// Index maps every node to its planted community and every community to its nodes.
// A node n is in comToNodes[c] iff nodeToCom[n] == c.
type Index struct {
	nodeToCom  map[int]int
	comToNodes map[int]community.Set
}

// Build reads the ground-truth file at path.
func Build(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ground truth: %w", err)
	}
	defer f.Close()

	idx, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return idx, nil
}

// Parse reads ground-truth records from r.
func Parse(r io.Reader) (*Index, error) {
	idx := &Index{
		nodeToCom:  make(map[int]int),
		comToNodes: make(map[int]community.Set),
	}

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			break
		}

		node, com, err := parseRecord(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: %v", lineNum, ErrMalformedRecord, err)
		}
		if err := idx.assign(node, com); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ground truth: %w", err)
	}
	return idx, nil
}

// parseRecord splits "<node>\t<community>" into its two integers.
func parseRecord(line string) (int, int, error) {
	fields := strings.Split(line, FieldSeparator)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("expected 2 tab-separated fields, got %d in %q", len(fields), line)
	}
	node, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid node %q", fields[0])
	}
	com, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid community %q", fields[1])
	}
	return node, com, nil
}

// assign records node as a member of com, creating the community on first sight.
func (idx *Index) assign(node, com int) error {
	if prev, ok := idx.nodeToCom[node]; ok {
		if prev != com {
			return fmt.Errorf("%w: node %d in %d and %d", ErrConflictingAssignment, node, prev, com)
		}
		return nil
	}

	idx.nodeToCom[node] = com
	members, ok := idx.comToNodes[com]
	if !ok {
		members = make(community.Set)
		idx.comToNodes[com] = members
	}
	members.Add(node)
	return nil
}

// TrueCommunity returns the planted community of node. The returned set is a copy.
func (idx *Index) TrueCommunity(node int) (community.Set, error) {
	com, ok := idx.nodeToCom[node]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnresolvedNode, node)
	}
	return idx.comToNodes[com].Clone(), nil
}

// CommunityOf returns the community id of node.
func (idx *Index) CommunityOf(node int) (int, bool) {
	com, ok := idx.nodeToCom[node]
	return com, ok
}

// CommunitySize returns the number of nodes in community com (0 if unknown).
func (idx *Index) CommunitySize(com int) int {
	return idx.comToNodes[com].Len()
}

// Len returns the number of indexed nodes.
func (idx *Index) Len() int {
	return len(idx.nodeToCom)
}

// NumCommunities returns the number of distinct communities.
func (idx *Index) NumCommunities() int {
	return len(idx.comToNodes)
}

// Nodes returns all indexed nodes in ascending order.
func (idx *Index) Nodes() []int {
	out := make([]int, 0, len(idx.nodeToCom))
	for n := range idx.nodeToCom {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Communities returns all community ids in ascending order.
func (idx *Index) Communities() []int {
	out := make([]int, 0, len(idx.comToNodes))
	for c := range idx.comToNodes {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}
