package viz

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matsen/lfreval/internal/sweep"
)

// Panel geometry in SVG user units.
const (
	PanelWidth   = 360
	PanelHeight  = 240
	marginLeft   = 40
	marginRight  = 12
	marginTop    = 12
	marginBottom = 30
	plotWidth    = PanelWidth - marginLeft - marginRight
	plotHeight   = PanelHeight - marginTop - marginBottom
)

// ValidMetrics lists the metric names that can be plotted.
var ValidMetrics = []string{"precision", "recall", "f1"}

var metricColors = map[string]string{
	"precision": "#4A90D9",
	"recall":    "#E8923A",
	"f1":        "#27AE60",
}

// metricValue extracts a named metric from a point.
func metricValue(metric string, p sweep.Point) float64 {
	switch metric {
	case "precision":
		return p.Precision
	case "recall":
		return p.Recall
	default:
		return p.F1
	}
}

// validateMetrics checks that every requested metric is known.
func validateMetrics(metrics []string) error {
	for _, m := range metrics {
		known := false
		for _, v := range ValidMetrics {
			if m == v {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("invalid metric %q: must be one of %s", m, strings.Join(ValidMetrics, ", "))
		}
	}
	return nil
}

// BuildChart lays out one panel per series of report.
// Failed points are left out of the curves and counted on the panel.
func BuildChart(report *sweep.Report, title string, metrics []string) (*Chart, error) {
	if report == nil {
		return nil, fmt.Errorf("report cannot be nil")
	}
	if len(metrics) == 0 {
		metrics = ValidMetrics
	}
	if err := validateMetrics(metrics); err != nil {
		return nil, err
	}

	chart := &Chart{Title: title}
	for _, s := range report.Series {
		chart.Panels = append(chart.Panels, buildPanel(s, metrics))
	}
	return chart, nil
}

func buildPanel(s sweep.Series, metrics []string) Panel {
	panel := Panel{Node: s.Node, TrueSize: s.TrueSize}

	kMin, kMax := 0, 0
	for i, p := range s.Points {
		if i == 0 || p.K < kMin {
			kMin = p.K
		}
		if i == 0 || p.K > kMax {
			kMax = p.K
		}
		if p.Failed() {
			panel.Failures++
		}
	}

	x := func(k int) float64 {
		if kMax == kMin {
			return marginLeft + plotWidth/2
		}
		return marginLeft + float64(k-kMin)/float64(kMax-kMin)*plotWidth
	}
	y := func(v float64) float64 {
		return marginTop + (1-v)*plotHeight
	}

	for _, m := range metrics {
		var coords []string
		for _, p := range s.Points {
			if p.Failed() {
				continue
			}
			coords = append(coords, formatCoord(x(p.K))+","+formatCoord(y(metricValue(m, p))))
		}
		panel.Lines = append(panel.Lines, Line{
			Metric: m,
			Color:  metricColors[m],
			Points: strings.Join(coords, " "),
		})
	}

	for _, p := range s.Points {
		panel.XTicks = append(panel.XTicks, Tick{Pos: x(p.K), Label: strconv.Itoa(p.K)})
	}
	for _, v := range []float64{0, 0.25, 0.5, 0.75, 1} {
		panel.YTicks = append(panel.YTicks, Tick{Pos: y(v), Label: strconv.FormatFloat(v, 'f', 2, 64)})
	}

	if best, ok := s.Best(); ok {
		panel.BestK, panel.BestF1, panel.HasBest = best.K, best.F1, true
	}
	return panel
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
