// Package page composes hooks and render helpers into the home, search and
// crawler pages. Pages hold navigation state only; request state lives in
// the hooks.
package page

import (
	"net/url"
	"strconv"
	"strings"
)

// Route identifies a page.
type Route int

const (
	RouteUnknown Route = iota
	RouteHome
	RouteSearch
	RouteCrawler
)

func (r Route) String() string {
	switch r {
	case RouteHome:
		return "home"
	case RouteSearch:
		return "search"
	case RouteCrawler:
		return "crawler"
	default:
		return "unknown"
	}
}

// RouteOf resolves the page a location points at.
func RouteOf(loc string) Route {
	u, err := url.Parse(loc)
	if err != nil {
		return RouteUnknown
	}
	p := strings.TrimRight(u.Path, "/")
	switch {
	case p == "":
		return RouteHome
	case p == "/search" || strings.HasPrefix(p, "/search/"):
		return RouteSearch
	case p == "/crawler":
		return RouteCrawler
	default:
		return RouteUnknown
	}
}

// QueryFromLocation extracts the search query from loc. The query may be
// carried as path segments (/search/a/b) or as ?q=a%2Fb; both give "a/b".
// Path segments win when both are present.
func QueryFromLocation(loc string) string {
	u, err := url.Parse(loc)
	if err != nil {
		return ""
	}

	if rest, ok := strings.CutPrefix(u.EscapedPath(), "/search/"); ok {
		var segs []string
		for _, seg := range strings.Split(rest, "/") {
			if seg == "" {
				continue
			}
			s, err := url.PathUnescape(seg)
			if err != nil {
				s = seg
			}
			segs = append(segs, s)
		}
		if q := strings.TrimSpace(strings.Join(segs, "/")); q != "" {
			return q
		}
	}

	return strings.TrimSpace(u.Query().Get("q"))
}

// PageFromLocation reads ?page=, defaulting to 1.
func PageFromLocation(loc string) int {
	u, err := url.Parse(loc)
	if err != nil {
		return 1
	}
	n, err := strconv.Atoi(u.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// SearchLocation builds the canonical location for query on page n.
func SearchLocation(query string, n int) string {
	v := url.Values{}
	v.Set("q", query)
	if n > 1 {
		v.Set("page", strconv.Itoa(n))
	}
	return "/search?" + v.Encode()
}
