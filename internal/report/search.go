// Package report writes pages and journal summaries as text, HTML or JSON.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	html "html/template"
	"io"
	"strings"
	"text/template"

	"github.com/FranksOps/puresearch/internal/api"
	"github.com/FranksOps/puresearch/internal/page"
	"github.com/FranksOps/puresearch/internal/render"
)

// Format selects a writer.
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatText:
		return FormatText, nil
	case FormatHTML, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q", s)
	}
}

type searchRow struct {
	Number   int
	Selected bool
	render.Row
	BandLabel  string
	BandIcon   string
	Confidence string
}

type searchDoc struct {
	page.SearchView
	State        string
	ErrorMessage string
	Items        []searchRow
}

func newSearchDoc(v page.SearchView, selected int) searchDoc {
	doc := searchDoc{SearchView: v, State: v.State.String(), ErrorMessage: v.ErrorMessage()}
	offset := 0
	if v.Page > 1 {
		offset = (v.Page - 1) * v.PerPage
	}
	for i, r := range v.Rows {
		doc.Items = append(doc.Items, searchRow{
			Number:     offset + i + 1,
			Selected:   i == selected,
			Row:        r,
			BandLabel:  r.Band.Label(),
			BandIcon:   r.Band.Icon(),
			Confidence: render.ConfidenceLabel(r.Confidence),
		})
	}
	return doc
}

// WriteSearch dispatches on format. selected is the highlighted row or -1.
func WriteSearch(w io.Writer, format Format, v page.SearchView, selected int) error {
	switch format {
	case FormatHTML:
		return WriteSearchHTML(w, v)
	case FormatJSON:
		return WriteSearchJSON(w, v)
	default:
		return WriteSearchText(w, v, selected)
	}
}

// WriteSearchText writes a search page for a terminal.
func WriteSearchText(w io.Writer, v page.SearchView, selected int) error {
	const textTmpl = `{{- if eq .State "uninitialized"}}Type a query to search for human-written content.
{{else -}}
{{- if .ErrorMessage}}Error: {{.ErrorMessage}}
{{end -}}
{{- if eq .State "loading"}}Searching for "{{.Query}}"...
{{end -}}
{{- if eq .State "empty"}}No results for "{{.Query}}".
{{end -}}
{{- if and .CountMessage (ne .State "empty")}}{{.CountMessage}}{{if gt .PageCount 1}} (page {{.Page}} of {{.PageCount}}){{end}}
{{end -}}
{{- if .Hidden}}{{.Hidden}} result(s) hidden by filters
{{end -}}
{{- range .Items}}
{{if .Selected}}>{{else}} {{end}}{{printf "%2d" .Number}}. {{.Title}}
    {{.Display}}{{if .Published}} · {{.Published}}{{end}}{{if .ContentType}} · {{.ContentType}}{{end}}
    {{.BandIcon}} {{.Confidence}}
{{- if .Description}}
    {{.Description}}
{{- end}}
{{end -}}
{{- end}}`

	t, err := template.New("searchText").Parse(textTmpl)
	if err != nil {
		return fmt.Errorf("context: %w", err)
	}
	if err := t.Execute(w, newSearchDoc(v, selected)); err != nil {
		return fmt.Errorf("context: %w", err)
	}
	return nil
}

// WriteSearchHTML writes a standalone results page. Result text is escaped.
func WriteSearchHTML(w io.Writer, v page.SearchView) error {
	const htmlTmpl = `<!DOCTYPE html>
<html>
<head>
<title>{{if .Query}}{{.Query}} - {{end}}PureSearch</title>
<style>
  body { font-family: sans-serif; margin: 40px; color: #333; max-width: 760px; }
  .count { color: #666; }
  .error { color: #b00; border: 1px solid #b00; padding: 8px; }
  .result { margin: 20px 0; }
  .result a { font-size: 18px; }
  .meta { color: #060; font-size: 13px; }
  .band { font-size: 13px; padding: 2px 6px; border-radius: 4px; background: #eee; }
</style>
</head>
<body>
  <h1>PureSearch</h1>
  {{- if .ErrorMessage}}
  <div class="error">{{.ErrorMessage}}</div>
  {{- end}}
  {{- if .CountMessage}}
  <p class="count">{{.CountMessage}}</p>
  {{- end}}
  {{- if eq .State "empty"}}
  <p>No results for "{{.Query}}".</p>
  {{- end}}
  {{- range .Items}}
  <div class="result">
    <a href="{{.URL}}" target="_blank" rel="noopener">{{.Title}}</a>
    <div class="meta">{{.Display}}{{if .Published}} · {{.Published}}{{end}}</div>
    <span class="band" title="{{.BandLabel}}">{{.BandIcon}} {{.Confidence}}</span>
    <p>{{.Description}}</p>
  </div>
  {{- end}}
</body>
</html>
`
	t, err := html.New("searchHTML").Parse(htmlTmpl)
	if err != nil {
		return fmt.Errorf("context: %w", err)
	}
	if err := t.Execute(w, newSearchDoc(v, -1)); err != nil {
		return fmt.Errorf("context: %w", err)
	}
	return nil
}

type searchJSON struct {
	State     string       `json:"state"`
	Query     string       `json:"query"`
	Page      int          `json:"page"`
	PageCount int          `json:"page_count"`
	Total     int          `json:"total"`
	Message   string       `json:"message,omitempty"`
	Hidden    int          `json:"hidden,omitempty"`
	Error     string       `json:"error,omitempty"`
	Results   []resultJSON `json:"results"`
}

type resultJSON struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Display       string  `json:"display"`
	Description   string  `json:"description"`
	Confidence    float64 `json:"confidence"`
	Band          string  `json:"band"`
	PublishedDate string  `json:"publishedDate,omitempty"`
	ContentType   string  `json:"contentType,omitempty"`
}

// WriteSearchJSON writes the rendered view, bands included.
func WriteSearchJSON(w io.Writer, v page.SearchView) error {
	out := searchJSON{
		State:     v.State.String(),
		Query:     v.Query,
		Page:      v.Page,
		PageCount: v.PageCount,
		Total:     v.Total,
		Message:   v.CountMessage,
		Hidden:    v.Hidden,
		Error:     v.ErrorMessage(),
		Results:   make([]resultJSON, 0, len(v.Rows)),
	}
	for _, r := range v.Rows {
		out.Results = append(out.Results, resultJSON{
			ID:            r.ID,
			Title:         r.Title,
			URL:           r.URL,
			Display:       r.Display,
			Description:   r.Description,
			Confidence:    r.Confidence,
			Band:          r.Band.Label(),
			PublishedDate: r.Published,
			ContentType:   r.ContentType,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("context: %w", err)
	}
	return nil
}

// WriteClassification writes a classify result for a terminal.
func WriteClassification(w io.Writer, resp *api.ClassificationResponse) error {
	verdict := "no"
	if resp.Result.IsHuman {
		verdict = "yes"
	}
	a := resp.Result.Analysis
	lang := a.Language
	if lang == "" {
		lang = "unknown"
	}
	_, err := fmt.Fprintf(w,
		"Human-written: %s\nConfidence:    %s %s\nLength:        %d\nComplexity:    %.2f\nPatterns:      %t\nLanguage:      %s\n",
		verdict,
		render.BandOf(resp.Result.Confidence).Icon(),
		render.ConfidenceLabel(resp.Result.Confidence),
		a.Length, a.Complexity, a.PatternsDetected, lang,
	)
	if err != nil {
		return fmt.Errorf("context: %w", err)
	}
	return nil
}

// WriteCrawl writes the crawler page for a terminal.
func WriteCrawl(w io.Writer, v page.CrawlerView) error {
	var b strings.Builder
	if v.URL != "" {
		fmt.Fprintf(&b, "URL:        %s (depth %d)\n", v.URL, v.Depth)
	}
	if v.RequestID != "" {
		fmt.Fprintf(&b, "Request ID: %s\n", v.RequestID)
	}
	if v.Badge != "" {
		fmt.Fprintf(&b, "Status:     %s\n", v.Badge)
	}
	if v.Status.Message != "" && v.Status.Status != api.CrawlFailed {
		fmt.Fprintf(&b, "Message:    %s\n", v.Status.Message)
	}
	if v.Submitting {
		b.WriteString("Submitting...\n")
	}
	if v.Checking {
		b.WriteString("Checking status...\n")
	}
	if err := v.Err(); err != nil {
		msg := err.Error()
		var re *api.RequestError
		if errors.As(err, &re) {
			msg = re.Message
		}
		fmt.Fprintf(&b, "Error:      %s\n", msg)
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("context: %w", err)
	}
	return nil
}
