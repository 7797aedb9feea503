// Package sweep evaluates a set of query nodes across a range of k values and
// collects the results into per-node series.
package sweep

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Placeholders expanded in Plan.ProposedPath.
const (
	PlaceholderNode   = "{node}"
	PlaceholderK      = "{k}"
	PlaceholderMixing = "{mixing}"
)

// DefaultWorkers is used when a plan does not set workers.
const DefaultWorkers = 4

// Plan validation errors.
var (
	ErrNoGroundTruth  = errors.New("ground_truth is required")
	ErrNoQueryNodes   = errors.New("query_nodes must list at least one node")
	ErrNoKValues      = errors.New("one of k or k_values is required")
	ErrBothKForms     = errors.New("k and k_values are mutually exclusive")
	ErrNoProposedPath = errors.New("proposed_path is required")
)

// KRange is an inclusive range of k values.
type KRange struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

// Plan describes one sweep, loaded from YAML.
type Plan struct {
	Name         string  `yaml:"name,omitempty"`
	GroundTruth  string  `yaml:"ground_truth"`
	UniverseSize int     `yaml:"universe_size,omitempty"`
	Mixing       string  `yaml:"mixing,omitempty"` // LFR mixing parameter tag, e.g. "05"
	QueryNodes   []int   `yaml:"query_nodes"`
	K            *KRange `yaml:"k,omitempty"`
	KValues      []int   `yaml:"k_values,omitempty"`
	ProposedPath string  `yaml:"proposed_path"` // Template with {node}, {k}, {mixing}
	Workers      int     `yaml:"workers,omitempty"`
}

// Job is one (node, k) evaluation.
type Job struct {
	Node int
	K    int
	Path string
}

// LoadPlan reads and validates a plan file. Relative paths inside the plan are
// resolved against the plan file's directory.
func LoadPlan(path string) (*Plan, error) {
	return LoadPlanFrom(path, filepath.Dir(path))
}

// LoadPlanFrom reads and validates a plan file, resolving relative paths against baseDir.
func LoadPlanFrom(path, baseDir string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan %s: %w", path, err)
	}

	plan.Resolve(baseDir)
	return &plan, nil
}

// Validate checks that the plan is complete and consistent.
func (p *Plan) Validate() error {
	if p.GroundTruth == "" {
		return ErrNoGroundTruth
	}
	if len(p.QueryNodes) == 0 {
		return ErrNoQueryNodes
	}
	if p.K == nil && len(p.KValues) == 0 {
		return ErrNoKValues
	}
	if p.K != nil && len(p.KValues) > 0 {
		return ErrBothKForms
	}
	if p.K != nil && p.K.From > p.K.To {
		return fmt.Errorf("k range: from (%d) must be <= to (%d)", p.K.From, p.K.To)
	}
	if p.ProposedPath == "" {
		return ErrNoProposedPath
	}
	if !strings.Contains(p.ProposedPath, PlaceholderNode) || !strings.Contains(p.ProposedPath, PlaceholderK) {
		return fmt.Errorf("proposed_path %q must contain %s and %s", p.ProposedPath, PlaceholderNode, PlaceholderK)
	}
	if p.UniverseSize < 0 {
		return fmt.Errorf("universe_size must be positive, got %d", p.UniverseSize)
	}
	if p.Workers < 0 {
		return fmt.Errorf("workers must be positive, got %d", p.Workers)
	}
	return nil
}

// Resolve makes relative ground-truth and proposed paths absolute against baseDir.
func (p *Plan) Resolve(baseDir string) {
	if baseDir == "" {
		return
	}
	if !filepath.IsAbs(p.GroundTruth) {
		p.GroundTruth = filepath.Join(baseDir, p.GroundTruth)
	}
	if !filepath.IsAbs(p.ProposedPath) {
		p.ProposedPath = filepath.Join(baseDir, p.ProposedPath)
	}
}

// Ks returns the swept k values in ascending order without duplicates.
func (p *Plan) Ks() []int {
	if p.K != nil {
		ks := make([]int, 0, p.K.To-p.K.From+1)
		for k := p.K.From; k <= p.K.To; k++ {
			ks = append(ks, k)
		}
		return ks
	}

	seen := make(map[int]bool, len(p.KValues))
	ks := make([]int, 0, len(p.KValues))
	for _, k := range p.KValues {
		if !seen[k] {
			seen[k] = true
			ks = append(ks, k)
		}
	}
	sort.Ints(ks)
	return ks
}

// ProposedPathFor expands the proposed_path template for one combination.
func (p *Plan) ProposedPathFor(node, k int) string {
	r := strings.NewReplacer(
		PlaceholderNode, strconv.Itoa(node),
		PlaceholderK, strconv.Itoa(k),
		PlaceholderMixing, p.Mixing,
	)
	return r.Replace(p.ProposedPath)
}

// Jobs returns every (node, k) combination, nodes in plan order and k ascending.
func (p *Plan) Jobs() []Job {
	ks := p.Ks()
	jobs := make([]Job, 0, len(p.QueryNodes)*len(ks))
	for _, n := range p.QueryNodes {
		for _, k := range ks {
			jobs = append(jobs, Job{Node: n, K: k, Path: p.ProposedPathFor(n, k)})
		}
	}
	return jobs
}

// WorkerCount returns the configured worker count or DefaultWorkers.
func (p *Plan) WorkerCount() int {
	if p.Workers > 0 {
		return p.Workers
	}
	return DefaultWorkers
}
