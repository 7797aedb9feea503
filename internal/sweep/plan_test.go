package sweep

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadPlan(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sweep.yml")
	content := `name: kcore-lfr005
ground_truth: data/community.txt
universe_size: 10000
mixing: "05"
query_nodes: [9525, 9002]
k: {from: 10, to: 12}
proposed_path: "com_search/LFR0{mixing}/{node}/kcore_k{k}.txt"
workers: 2
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	plan, err := LoadPlan(path)
	if err != nil {
		t.Fatalf("LoadPlan() error = %v", err)
	}

	if plan.GroundTruth != filepath.Join(dir, "data/community.txt") {
		t.Errorf("GroundTruth = %q, want resolved against plan dir", plan.GroundTruth)
	}
	if got := plan.Ks(); !reflect.DeepEqual(got, []int{10, 11, 12}) {
		t.Errorf("Ks() = %v, want [10 11 12]", got)
	}
	want := filepath.Join(dir, "com_search/LFR005/9525/kcore_k11.txt")
	if got := plan.ProposedPathFor(9525, 11); got != want {
		t.Errorf("ProposedPathFor() = %q, want %q", got, want)
	}
	if plan.WorkerCount() != 2 {
		t.Errorf("WorkerCount() = %d, want 2", plan.WorkerCount())
	}
}

func TestPlan_Validate(t *testing.T) {
	valid := func() Plan {
		return Plan{
			GroundTruth:  "gt.txt",
			QueryNodes:   []int{1},
			KValues:      []int{3},
			ProposedPath: "{node}/k{k}.txt",
		}
	}

	tests := []struct {
		name    string
		mutate  func(p *Plan)
		wantErr error
	}{
		{"valid", func(p *Plan) {}, nil},
		{"no ground truth", func(p *Plan) { p.GroundTruth = "" }, ErrNoGroundTruth},
		{"no query nodes", func(p *Plan) { p.QueryNodes = nil }, ErrNoQueryNodes},
		{"no k", func(p *Plan) { p.KValues = nil }, ErrNoKValues},
		{"both k forms", func(p *Plan) { p.K = &KRange{From: 1, To: 2} }, ErrBothKForms},
		{"no proposed path", func(p *Plan) { p.ProposedPath = "" }, ErrNoProposedPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPlan_ValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		plan Plan
	}{
		{"reversed range", Plan{GroundTruth: "g", QueryNodes: []int{1}, K: &KRange{From: 5, To: 2}, ProposedPath: "{node}{k}"}},
		{"missing placeholder", Plan{GroundTruth: "g", QueryNodes: []int{1}, KValues: []int{1}, ProposedPath: "k{k}.txt"}},
		{"negative workers", Plan{GroundTruth: "g", QueryNodes: []int{1}, KValues: []int{1}, ProposedPath: "{node}{k}", Workers: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.plan.Validate(); err == nil {
				t.Error("Validate() error = nil, want error")
			}
		})
	}
}

func TestPlan_KsDeduplicatesAndSorts(t *testing.T) {
	p := Plan{KValues: []int{12, 10, 12, 11}}
	if got := p.Ks(); !reflect.DeepEqual(got, []int{10, 11, 12}) {
		t.Errorf("Ks() = %v, want [10 11 12]", got)
	}
}

func TestPlan_Jobs(t *testing.T) {
	p := Plan{QueryNodes: []int{7, 3}, KValues: []int{2, 1}, ProposedPath: "{node}-{k}"}
	jobs := p.Jobs()

	want := []Job{
		{Node: 7, K: 1, Path: "7-1"},
		{Node: 7, K: 2, Path: "7-2"},
		{Node: 3, K: 1, Path: "3-1"},
		{Node: 3, K: 2, Path: "3-2"},
	}
	if !reflect.DeepEqual(jobs, want) {
		t.Errorf("Jobs() = %v, want %v", jobs, want)
	}
}

func TestLoadPlan_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	if err := os.WriteFile(path, []byte("query_nodes: [1]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPlan(path); !errors.Is(err, ErrNoGroundTruth) {
		t.Errorf("LoadPlan() error = %v, want ErrNoGroundTruth", err)
	}
}

func TestLoadPlanFrom_DataRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.yml")
	content := "ground_truth: community.txt\nquery_nodes: [1]\nk_values: [3]\nproposed_path: \"{node}/k{k}.txt\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	plan, err := LoadPlanFrom(path, "/data/lfr")
	if err != nil {
		t.Fatalf("LoadPlanFrom() error = %v", err)
	}
	if plan.GroundTruth != "/data/lfr/community.txt" {
		t.Errorf("GroundTruth = %q, want resolved against data root", plan.GroundTruth)
	}
	if got := plan.ProposedPathFor(1, 3); got != "/data/lfr/1/k3.txt" {
		t.Errorf("ProposedPathFor() = %q", got)
	}
}
