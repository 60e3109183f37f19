package render

import (
	"fmt"
	"strings"
	"testing"

	"github.com/FranksOps/puresearch/internal/api"
)

func TestRows_TenOfThirtySeven(t *testing.T) {
	results := make([]api.SearchResult, 10)
	for i := range results {
		results[i] = api.SearchResult{
			ID:         fmt.Sprint(i),
			Title:      fmt.Sprintf("Result %d", i),
			URL:        fmt.Sprintf("https://www.example.com/history/%d", i),
			Confidence: float64(60 + i*4),
		}
	}

	rows := Rows(results)
	if len(rows) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(rows))
	}
	for i, r := range rows {
		if r.ID != fmt.Sprint(i) {
			t.Errorf("row %d out of order: %s", i, r.ID)
		}
		if r.Display != "example.com/history" {
			t.Errorf("unexpected display %q", r.Display)
		}
	}
	if rows[0].Band != PossiblyHuman || rows[9].Band != VeryLikelyHuman {
		t.Errorf("unexpected bands %v %v", rows[0].Band, rows[9].Band)
	}

	msg := CountMessage(37, "history")
	if !strings.Contains(msg, "37") || msg != `About 37 results for "history"` {
		t.Errorf("unexpected count message %q", msg)
	}
	if got := len(URLs(rows)); got != 10 {
		t.Errorf("expected 10 urls, got %d", got)
	}
}

func TestCountMessage(t *testing.T) {
	tests := []struct {
		total int
		want  string
	}{
		{0, `No results for "q"`},
		{1, `1 result for "q"`},
		{12345, `About 12,345 results for "q"`},
	}
	for _, tt := range tests {
		if got := CountMessage(tt.total, "q"); got != tt.want {
			t.Errorf("CountMessage(%d) = %q, want %q", tt.total, got, tt.want)
		}
	}
}

func TestConfidenceLabel(t *testing.T) {
	tests := []struct {
		confidence float64
		want       string
	}{
		{92.4, "92% very likely human"},
		{89.6, "89% likely human"},
		{69.99, "69% possibly human"},
		{90, "90% very likely human"},
	}
	for _, tt := range tests {
		if got := ConfidenceLabel(tt.confidence); got != tt.want {
			t.Errorf("ConfidenceLabel(%v): expected %q, got %q", tt.confidence, tt.want, got)
		}
	}
}
