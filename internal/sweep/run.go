package sweep

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/matsen/lfreval/internal/session"
	"github.com/matsen/lfreval/internal/telemetry"
)

// Point is the evaluation of one proposed community at one k.
type Point struct {
	K            int     `json:"k"`
	Precision    float64 `json:"precision"`
	Recall       float64 `json:"recall"`
	F1           float64 `json:"f1"`
	TrueSize     int     `json:"true_size"`
	ProposedSize int     `json:"proposed_size"`
	SymDiffSize  int     `json:"sym_diff_size"`
	Path         string  `json:"path"`
	Error        string  `json:"error,omitempty"`
}

// Failed reports whether the evaluation could not be completed.
func (p Point) Failed() bool {
	return p.Error != ""
}

// Series holds the points of one query node, ordered by k.
type Series struct {
	Node     int     `json:"node"`
	TrueSize int     `json:"true_size"`
	Points   []Point `json:"points"`
}

// Report is the outcome of a sweep run.
type Report struct {
	Name         string        `json:"name,omitempty"`
	Mixing       string        `json:"mixing,omitempty"`
	GroundTruth  string        `json:"ground_truth"`
	UniverseSize int           `json:"universe_size"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration_ns"`
	Evaluations  int           `json:"evaluations"`
	Failures     int           `json:"failures"`
	Series       []Series      `json:"series"`
}

// Options configures Run.
type Options struct {
	Workers int                // Overrides the plan's worker count when > 0
	Logger  *zerolog.Logger    // Progress logging; nil disables it
	Metrics *telemetry.Metrics // Optional
}

// Run evaluates every (node, k) combination of plan against sess.
//
// A failed evaluation is recorded on its point and does not stop the run. Run
// returns an error only when ctx is cancelled. Series follow the plan's node order
// with points sorted by k, whatever order the workers finished in.
func Run(ctx context.Context, sess *session.Session, plan *Plan, opts Options) (*Report, error) {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	workers := plan.WorkerCount()
	if opts.Workers > 0 {
		workers = opts.Workers
	}

	jobs := plan.Jobs()
	points := make([]Point, len(jobs))
	started := time.Now()

	logger.Info().
		Str("plan", plan.Name).
		Int("nodes", len(plan.QueryNodes)).
		Int("jobs", len(jobs)).
		Int("workers", workers).
		Msg("Starting sweep")

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, job := range jobs {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			points[i] = evaluate(sess, job, opts.Metrics)
			if points[i].Failed() {
				logger.Warn().Int("node", job.Node).Int("k", job.K).Str("error", points[i].Error).Msg("Evaluation failed")
			} else {
				logger.Debug().Int("node", job.Node).Int("k", job.K).Float64("f1", points[i].F1).Msg("Evaluated")
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		Name:         plan.Name,
		Mixing:       plan.Mixing,
		GroundTruth:  plan.GroundTruth,
		UniverseSize: sess.UniverseSize(),
		StartedAt:    started.UTC(),
		Duration:     time.Since(started),
		Evaluations:  len(points),
		Series:       buildSeries(sess, plan, points),
	}
	for _, p := range points {
		if p.Failed() {
			report.Failures++
		}
	}

	logger.Info().
		Int("evaluations", report.Evaluations).
		Int("failures", report.Failures).
		Dur("duration", report.Duration).
		Msg("Sweep complete")

	return report, nil
}

// evaluate runs one job and converts the outcome to a Point.
func evaluate(sess *session.Session, job Job, metrics *telemetry.Metrics) Point {
	start := time.Now()
	ev, err := sess.Evaluate(job.Node, job.Path)
	elapsed := time.Since(start)

	if err != nil {
		if metrics != nil {
			metrics.ObserveFailed(elapsed)
		}
		return Point{K: job.K, Path: job.Path, Error: err.Error()}
	}
	if metrics != nil {
		metrics.ObserveScored(elapsed, ev.F1, ev.ProposedSize)
	}

	return Point{
		K:            job.K,
		Precision:    ev.Precision,
		Recall:       ev.Recall,
		F1:           ev.F1,
		TrueSize:     ev.TrueSize,
		ProposedSize: ev.ProposedSize,
		SymDiffSize:  ev.SymmetricDifference.Len(),
		Path:         job.Path,
	}
}

// buildSeries groups points by node. Jobs are generated node-major with k
// ascending, so each node's points are a contiguous, already sorted run.
func buildSeries(sess *session.Session, plan *Plan, points []Point) []Series {
	perNode := len(plan.Ks())
	series := make([]Series, 0, len(plan.QueryNodes))
	for i, node := range plan.QueryNodes {
		s := Series{Node: node, Points: points[i*perNode : (i+1)*perNode]}
		if truth, err := sess.TrueCommunity(node); err == nil {
			s.TrueSize = truth.Len()
		}
		series = append(series, s)
	}
	return series
}

// ErrUnknownNode is returned by Report.SeriesFor for a node outside the sweep.
var ErrUnknownNode = errors.New("node not in sweep")

// SeriesFor returns the series of node.
func (r *Report) SeriesFor(node int) (Series, error) {
	for _, s := range r.Series {
		if s.Node == node {
			return s, nil
		}
	}
	return Series{}, ErrUnknownNode
}

// Best returns the point with the highest F1 among successful points, ties
// broken by the smaller k. ok is false when no point succeeded.
func (s Series) Best() (best Point, ok bool) {
	for _, p := range s.Points {
		if p.Failed() {
			continue
		}
		if !ok || p.F1 > best.F1 {
			best, ok = p, true
		}
	}
	return best, ok
}
