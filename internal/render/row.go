package render

import (
	"fmt"
	"math"

	"github.com/FranksOps/puresearch/internal/api"
	"github.com/dustin/go-humanize"
)

// Row is the display record for one search result.
type Row struct {
	ID          string
	Title       string
	URL         string
	Display     string // host and first path segment
	Description string
	Confidence  float64
	Band        Band
	Published   string
	ContentType string
}

func RowOf(r api.SearchResult) Row {
	return Row{
		ID:          r.ID,
		Title:       r.Title,
		URL:         r.URL,
		Display:     DisplayPath(r.URL),
		Description: r.Description,
		Confidence:  r.Confidence,
		Band:        BandOf(r.Confidence),
		Published:   r.PublishedDate,
		ContentType: r.ContentType,
	}
}

// Rows keeps backend order.
func Rows(results []api.SearchResult) []Row {
	out := make([]Row, 0, len(results))
	for _, r := range results {
		out = append(out, RowOf(r))
	}
	return out
}

// URLs returns the rows' URLs in order, for a Selection.
func URLs(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.URL
	}
	return out
}

// CountMessage is the line above the result list.
func CountMessage(total int, query string) string {
	switch total {
	case 0:
		return fmt.Sprintf("No results for %q", query)
	case 1:
		return fmt.Sprintf("1 result for %q", query)
	}
	return fmt.Sprintf("About %s results for %q", humanize.Comma(int64(total)), query)
}

// ConfidenceLabel renders a score the same way everywhere: "92% very likely human".
// The percentage is truncated so it never crosses into the next band.
func ConfidenceLabel(confidence float64) string {
	return fmt.Sprintf("%.0f%% %s", math.Floor(confidence), BandOf(confidence).Label())
}
