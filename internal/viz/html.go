package viz

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/matsen/lfreval/internal/sweep"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate *template.Template

func init() {
	compiledTemplate = template.Must(template.New("viz").Funcs(template.FuncMap{
		"pct": func(v float64) string { return fmt.Sprintf("%.3f", v) },
	}).Parse(htmlTemplate))
}

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Title   string   // Page heading; derived from the report when empty
	Metrics []string // Curves to draw; all of ValidMetrics when empty
	Columns int      // Panels per row
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{
		Metrics: ValidMetrics,
		Columns: 2,
	}
}

// DefaultTitle names a report the way the k-core sweeps are usually labelled.
func DefaultTitle(report *sweep.Report) string {
	if report.Mixing != "" {
		return fmt.Sprintf("k vs score for k-core on LFR0.%s", report.Mixing)
	}
	if report.Name != "" {
		return fmt.Sprintf("k vs score: %s", report.Name)
	}
	return "k vs score"
}

// GenerateHTML generates a self-contained HTML page plotting each query node's
// precision, recall and F1 against k.
func GenerateHTML(report *sweep.Report, opts HTMLOptions) (string, error) {
	if report == nil {
		return "", fmt.Errorf("report cannot be nil")
	}

	title := opts.Title
	if title == "" {
		title = DefaultTitle(report)
	}
	chart, err := BuildChart(report, title, opts.Metrics)
	if err != nil {
		return "", err
	}

	if chart.IsEmpty() {
		return generateEmptyHTML(title), nil
	}

	columns := opts.Columns
	if columns <= 0 {
		columns = 2
	}

	data := templateData{
		Chart:        chart,
		Columns:      columns,
		Width:        PanelWidth,
		Height:       PanelHeight,
		PlotLeft:     marginLeft,
		PlotRight:    PanelWidth - marginRight,
		PlotTop:      marginTop,
		PlotBottom:   PanelHeight - marginBottom,
		Legend:       chart.Panels[0].Lines,
		UniverseSize: report.UniverseSize,
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// templateData holds data for the HTML template.
type templateData struct {
	Chart        *Chart
	Columns      int
	Width        int
	Height       int
	PlotLeft     int
	PlotRight    int
	PlotTop      int
	PlotBottom   int
	Legend       []Line
	UniverseSize int
}

// generateEmptyHTML returns HTML for a report without series.
func generateEmptyHTML(title string) string {
	return `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>` + template.HTMLEscapeString(title) + ` - Empty</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      display: flex;
      justify-content: center;
      align-items: center;
      height: 100vh;
      margin: 0;
      background: #f5f5f5;
    }
    .empty-state {
      text-align: center;
      color: #666;
    }
  </style>
</head>
<body>
  <div class="empty-state">
    <h2>No results</h2>
    <p>The sweep produced no series to plot.</p>
  </div>
</body>
</html>`
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Chart.Title}}</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      padding: 16px;
      background: #f5f5f5;
      color: #333;
    }
    h1 {
      font-size: 18px;
      text-align: center;
    }
    .legend {
      text-align: center;
      font-size: 13px;
      margin-bottom: 12px;
    }
    .legend span {
      margin: 0 8px;
    }
    .grid {
      display: grid;
      grid-template-columns: repeat({{.Columns}}, {{.Width}}px);
      gap: 16px;
      justify-content: center;
    }
    .panel {
      background: white;
      border: 1px solid #ddd;
      border-radius: 4px;
      padding: 8px;
    }
    .panel h2 {
      font-size: 13px;
      margin: 0 0 4px 0;
      text-align: center;
    }
    .panel .detail {
      font-size: 11px;
      color: #666;
      text-align: center;
    }
    svg text {
      font-size: 10px;
      fill: #555;
    }
  </style>
</head>
<body>
  <h1>{{.Chart.Title}}</h1>
  <div class="legend">
    {{range .Legend}}<span style="color: {{.Color}}">&#9632; {{.Metric}}</span>{{end}}
  </div>
  <div class="grid">
  {{- $d := . }}
  {{- range .Chart.Panels}}
    <div class="panel">
      <h2>node: {{.Node}}</h2>
      <svg width="{{$d.Width}}" height="{{$d.Height}}" viewBox="0 0 {{$d.Width}} {{$d.Height}}">
        <line x1="{{$d.PlotLeft}}" y1="{{$d.PlotBottom}}" x2="{{$d.PlotRight}}" y2="{{$d.PlotBottom}}" stroke="#999"/>
        <line x1="{{$d.PlotLeft}}" y1="{{$d.PlotTop}}" x2="{{$d.PlotLeft}}" y2="{{$d.PlotBottom}}" stroke="#999"/>
        {{- range .YTicks}}
        <line x1="{{$d.PlotLeft}}" y1="{{.Pos}}" x2="{{$d.PlotRight}}" y2="{{.Pos}}" stroke="#eee"/>
        <text x="{{$d.PlotLeft}}" y="{{.Pos}}" dx="-4" dy="3" text-anchor="end">{{.Label}}</text>
        {{- end}}
        {{- range .XTicks}}
        <text x="{{.Pos}}" y="{{$d.PlotBottom}}" dy="14" text-anchor="middle">{{.Label}}</text>
        {{- end}}
        {{- range .Lines}}
        <polyline class="metric-{{.Metric}}" fill="none" stroke="{{.Color}}" stroke-width="2" points="{{.Points}}"/>
        {{- end}}
      </svg>
      <div class="detail">
        |true| = {{.TrueSize}}{{if .HasBest}} &middot; best k = {{.BestK}} (F1 {{pct .BestF1}}){{end}}{{if .Failures}} &middot; {{.Failures}} failed{{end}}
      </div>
    </div>
  {{- end}}
  </div>
  <div class="legend">universe size {{.UniverseSize}}</div>
</body>
</html>`
