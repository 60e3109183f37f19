package page

import "strings"

// HomePage holds the search box.
type HomePage struct {
	input string
}

// SetInput records what is typed in the search box.
func (h *HomePage) SetInput(s string) { h.input = s }

// Submit returns the location to navigate to. Blank input is not submitted.
func (h *HomePage) Submit() (location string, ok bool) {
	q := strings.TrimSpace(h.input)
	if q == "" {
		return "", false
	}
	return SearchLocation(q, 1), true
}
