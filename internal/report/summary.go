package report

import (
	"encoding/json"
	"fmt"
	html "html/template"
	"io"
	"text/template"
	"time"

	"github.com/FranksOps/puresearch/internal/journal"
	"github.com/dustin/go-humanize"
)

// Summary contains aggregated figures about journaled API calls.
type Summary struct {
	TotalCalls    int
	TotalFailures int
	CallsByOp     map[string]int
	Outcomes      map[string]int
	StatusCodes   map[int]int
	AvgDuration   time.Duration
	MaxDuration   time.Duration
	SlowestOp     string
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
}

// GenerateSummary processes journal records to generate summary figures.
func GenerateSummary(records []*journal.Record) Summary {
	s := Summary{
		CallsByOp:   make(map[string]int),
		Outcomes:    make(map[string]int),
		StatusCodes: make(map[int]int),
	}

	if len(records) == 0 {
		return s
	}

	s.StartTime = records[0].CreatedAt
	s.EndTime = records[0].CreatedAt

	var total time.Duration
	for _, r := range records {
		s.TotalCalls++
		if r.Failed() {
			s.TotalFailures++
		}
		s.CallsByOp[r.Op]++
		s.Outcomes[r.Outcome]++
		if r.StatusCode > 0 {
			s.StatusCodes[r.StatusCode]++
		}

		total += r.Duration
		if r.Duration > s.MaxDuration {
			s.MaxDuration = r.Duration
			s.SlowestOp = r.Op
		}

		if r.CreatedAt.Before(s.StartTime) {
			s.StartTime = r.CreatedAt
		}
		if r.CreatedAt.After(s.EndTime) {
			s.EndTime = r.CreatedAt
		}
	}

	s.AvgDuration = total / time.Duration(s.TotalCalls)
	s.Duration = s.EndTime.Sub(s.StartTime)
	return s
}

// WriteJSON writes the summary to the provided writer in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("context: %w", err)
	}
	return nil
}

var summaryFuncs = map[string]any{
	"ago": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return humanize.Time(t)
	},
}

// WriteText writes a human-readable text summary to the provided writer.
func WriteText(w io.Writer, summary Summary) error {
	const textTmpl = `PureSearch API Journal
----------------------
Time:          {{.StartTime.Format "2006-01-02 15:04:05"}} - {{.EndTime.Format "2006-01-02 15:04:05"}} (last call {{ago .EndTime}})
Duration:      {{.Duration}}
Total Calls:   {{.TotalCalls}}
Failures:      {{.TotalFailures}}
Avg Latency:   {{.AvgDuration}}
Slowest:       {{.MaxDuration}}{{if .SlowestOp}} ({{.SlowestOp}}){{end}}

Calls By Operation:
{{- range $op, $count := .CallsByOp}}
  {{$op}}: {{$count}}
{{- else}}
  None
{{- end}}

Outcomes:
{{- range $outcome, $count := .Outcomes}}
  {{$outcome}}: {{$count}}
{{- else}}
  None
{{- end}}

Status Codes:
{{- range $code, $count := .StatusCodes}}
  {{$code}}: {{$count}}
{{- else}}
  None
{{- end}}
`

	t, err := template.New("textReport").Funcs(summaryFuncs).Parse(textTmpl)
	if err != nil {
		return fmt.Errorf("context: %w", err)
	}

	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("context: %w", err)
	}

	return nil
}

// WriteHTML writes a basic HTML report to the provided writer.
func WriteHTML(w io.Writer, summary Summary) error {
	const htmlTmpl = `<!DOCTYPE html>
<html>
<head>
<title>PureSearch API Journal</title>
<style>
  body { font-family: sans-serif; margin: 40px; color: #333; }
  h1 { border-bottom: 2px solid #ccc; padding-bottom: 10px; }
  .stat-card { display: inline-block; padding: 20px; margin: 10px 10px 10px 0; background: #f4f4f4; border-radius: 5px; min-width: 150px; }
  .stat-val { font-size: 24px; font-weight: bold; }
  .bad { color: red; }
  .good { color: green; }
  table { border-collapse: collapse; margin-top: 10px; }
  th, td { padding: 8px 12px; border: 1px solid #ccc; text-align: left; }
  th { background: #eaeaea; }
</style>
</head>
<body>
  <h1>PureSearch API Journal</h1>
  <p><strong>Time:</strong> {{.StartTime.Format "2006-01-02 15:04:05"}} to {{.EndTime.Format "2006-01-02 15:04:05"}} ({{.Duration}})</p>

  <div class="stat-card">
    <div>Total Calls</div>
    <div class="stat-val">{{.TotalCalls}}</div>
  </div>
  <div class="stat-card">
    <div>Failures</div>
    <div class="stat-val {{if gt .TotalFailures 0}}bad{{else}}good{{end}}">{{.TotalFailures}}</div>
  </div>
  <div class="stat-card">
    <div>Avg Latency</div>
    <div class="stat-val">{{.AvgDuration}}</div>
  </div>

  <h3>Calls By Operation</h3>
  <table>
    <tr><th>Operation</th><th>Count</th></tr>
    {{- range $op, $count := .CallsByOp}}
    <tr><td>{{$op}}</td><td>{{$count}}</td></tr>
    {{- else}}
    <tr><td colspan="2">None</td></tr>
    {{- end}}
  </table>

  <h3>Outcomes</h3>
  <table>
    <tr><th>Outcome</th><th>Count</th></tr>
    {{- range $outcome, $count := .Outcomes}}
    <tr><td>{{$outcome}}</td><td>{{$count}}</td></tr>
    {{- else}}
    <tr><td colspan="2">None</td></tr>
    {{- end}}
  </table>

  <h3>Status Codes</h3>
  <table>
    <tr><th>Code</th><th>Count</th></tr>
    {{- range $code, $count := .StatusCodes}}
    <tr><td>{{$code}}</td><td>{{$count}}</td></tr>
    {{- else}}
    <tr><td colspan="2">None</td></tr>
    {{- end}}
  </table>
</body>
</html>
`
	t, err := html.New("htmlReport").Parse(htmlTmpl)
	if err != nil {
		return fmt.Errorf("context: %w", err)
	}

	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("context: %w", err)
	}

	return nil
}
