// Package viz renders sweep results as a self-contained HTML page of score curves.
package viz

// Chart is the data for one page: one panel per query node.
type Chart struct {
	Title  string
	Panels []Panel
}

// Panel plots the score curves of a single query node against k.
type Panel struct {
	Node     int
	TrueSize int
	Lines    []Line
	XTicks   []Tick
	YTicks   []Tick
	Failures int
	BestK    int
	BestF1   float64
	HasBest  bool
}

// Line is one metric drawn as an SVG polyline.
type Line struct {
	Metric string
	Color  string
	Points string // SVG "x,y x,y ..." in panel coordinates
}

// Tick is an axis label position.
type Tick struct {
	Pos   float64
	Label string
}

// IsEmpty returns true if the chart has nothing to plot.
func (c *Chart) IsEmpty() bool {
	return len(c.Panels) == 0
}
