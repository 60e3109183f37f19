package render

import (
	"fmt"
	"strings"

	"github.com/FranksOps/puresearch/internal/api"
)

// CrawlBadge is the one-line status shown next to a crawl request.
func CrawlBadge(st api.CrawlStatus) string {
	switch st.Status {
	case api.CrawlPending:
		return "Pending"
	case api.CrawlInProgress:
		switch {
		case st.TotalPages > 0:
			return fmt.Sprintf("In Progress (%d/%d)", st.CrawledPages, st.TotalPages)
		case st.CrawledPages > 0:
			return fmt.Sprintf("In Progress (%s)", pages(st.CrawledPages))
		}
		return "In Progress"
	case api.CrawlCompleted:
		return fmt.Sprintf("Completed (%s)", pages(st.CrawledPages))
	case api.CrawlFailed:
		if st.Message != "" {
			return "Failed - " + st.Message
		}
		return "Failed"
	case "":
		return "Unknown"
	default:
		s := strings.ReplaceAll(string(st.Status), "_", " ")
		return strings.ToUpper(s[:1]) + s[1:]
	}
}

func pages(n int) string {
	if n == 1 {
		return "1 page"
	}
	return fmt.Sprintf("%d pages", n)
}
