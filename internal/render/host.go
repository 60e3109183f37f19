package render

import "strings"

// DisplayHost strips the scheme, credentials, path and exactly one
// leading "www." from raw. Input without a scheme is accepted.
func DisplayHost(raw string) string {
	host, _ := splitDisplay(raw)
	return host
}

// DisplayPath is DisplayHost plus at most the first path segment:
// "https://www.example.com/a/b/c" becomes "example.com/a".
func DisplayPath(raw string) string {
	host, path := splitDisplay(raw)
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			return host + "/" + seg
		}
	}
	return host
}

func splitDisplay(raw string) (host, path string) {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	} else if strings.HasPrefix(s, "//") {
		s = s[2:]
	}
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	host, path, _ = strings.Cut(s, "/")
	if i := strings.LastIndex(host, "@"); i >= 0 {
		host = host[i+1:]
	}
	if len(host) >= 4 && strings.EqualFold(host[:4], "www.") {
		host = host[4:]
	}
	return host, path
}
