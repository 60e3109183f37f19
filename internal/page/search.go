package page

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/FranksOps/puresearch/internal/api"
	"github.com/FranksOps/puresearch/internal/hook"
	"github.com/FranksOps/puresearch/internal/render"
)

// SearchState is the page-level state derived from the hook.
type SearchState int

const (
	Uninitialized SearchState = iota
	Loading
	Populated
	Empty
	Errored
)

func (s SearchState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Populated:
		return "populated"
	case Empty:
		return "empty"
	case Errored:
		return "errored"
	default:
		return "uninitialized"
	}
}

// Filters narrow already-fetched results. Empty slices match everything.
type Filters struct {
	ContentTypes []string
	Bands        []render.Band
}

func (f Filters) Match(r render.Row) bool {
	if len(f.ContentTypes) > 0 && !slices.ContainsFunc(f.ContentTypes, func(ct string) bool {
		return strings.EqualFold(ct, r.ContentType)
	}) {
		return false
	}
	if len(f.Bands) > 0 && !slices.Contains(f.Bands, r.Band) {
		return false
	}
	return true
}

// SearchView is everything the search page renders.
type SearchView struct {
	State        SearchState
	Query        string
	Page         int
	PerPage      int
	PageCount    int
	Total        int
	CountMessage string
	Rows         []render.Row
	Hidden       int      // rows removed by filters
	ContentTypes []string // facets present in the fetched results
	Err          error
}

// ErrorMessage is the inline error text, empty when there is no error.
func (v SearchView) ErrorMessage() string {
	if v.Err == nil {
		return ""
	}
	var re *api.RequestError
	if errors.As(v.Err, &re) {
		return re.Message
	}
	return v.Err.Error()
}

// SearchPage drives a search hook from the navigation location.
type SearchPage struct {
	hook    *hook.Search
	perPage int

	mu      sync.Mutex
	query   string
	page    int
	filters Filters
}

// NewSearchPage binds a page to h. perPage <= 0 means api.DefaultPerPage.
func NewSearchPage(h *hook.Search, perPage int) *SearchPage {
	if perPage <= 0 {
		perPage = api.DefaultPerPage
	}
	return &SearchPage{hook: h, perPage: perPage}
}

// Navigate points the page at loc. The hook is triggered when the query or
// page number differs from the current one; a location without a query
// returns the page to Uninitialized.
func (p *SearchPage) Navigate(ctx context.Context, loc string) error {
	q, n := QueryFromLocation(loc), PageFromLocation(loc)

	p.mu.Lock()
	if q == "" {
		p.query, p.page = "", 0
		p.mu.Unlock()
		p.hook.Reset()
		return nil
	}
	if q == p.query && n == p.page {
		p.mu.Unlock()
		return nil
	}
	p.query, p.page = q, n
	p.mu.Unlock()

	return p.fetch(ctx, q, n)
}

// GoToPage fetches page n of the current query.
func (p *SearchPage) GoToPage(ctx context.Context, n int) error {
	if n < 1 {
		return fmt.Errorf("invalid page %d", n)
	}
	p.mu.Lock()
	q := p.query
	if q == "" {
		p.mu.Unlock()
		return errors.New("no query to paginate")
	}
	p.page = n
	p.mu.Unlock()

	return p.fetch(ctx, q, n)
}

// Retry re-runs the current query and page.
func (p *SearchPage) Retry(ctx context.Context) error {
	p.mu.Lock()
	q, n := p.query, p.page
	p.mu.Unlock()
	if q == "" {
		return nil
	}
	return p.fetch(ctx, q, n)
}

// SetFilters replaces the active filters. No request is made.
func (p *SearchPage) SetFilters(f Filters) {
	p.mu.Lock()
	p.filters = f
	p.mu.Unlock()
}

// Location is the canonical location of what the page shows.
func (p *SearchPage) Location() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.query == "" {
		return "/"
	}
	return SearchLocation(p.query, p.page)
}

func (p *SearchPage) fetch(ctx context.Context, q string, n int) error {
	_, err := p.hook.Trigger(ctx, q, n, p.perPage)
	return err
}

// View derives the page from the hook's current state.
func (p *SearchPage) View() SearchView {
	p.mu.Lock()
	q, n, f := p.query, p.page, p.filters
	p.mu.Unlock()

	st := p.hook.State()
	v := SearchView{Query: q, Page: n, PerPage: p.perPage, Err: st.Err}
	if q == "" {
		v.State = Uninitialized
		return v
	}

	if st.Data != nil {
		all := render.Rows(st.Data.Results)
		v.ContentTypes = facets(all)
		for _, r := range all {
			if f.Match(r) {
				v.Rows = append(v.Rows, r)
			}
		}
		v.Hidden = len(all) - len(v.Rows)
		v.Total = st.Data.Total
		v.CountMessage = render.CountMessage(st.Data.Total, st.Data.Query)
		v.PageCount = pageCount(st.Data.Total, p.perPage)
	}

	switch {
	case st.IsLoading:
		v.State = Loading
	case st.Err != nil:
		v.State = Errored
	case st.Data == nil:
		v.State = Uninitialized
	case len(st.Data.Results) == 0:
		v.State = Empty
	default:
		v.State = Populated
	}
	return v
}

func facets(rows []render.Row) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		if r.ContentType == "" || seen[r.ContentType] {
			continue
		}
		seen[r.ContentType] = true
		out = append(out, r.ContentType)
	}
	sort.Strings(out)
	return out
}

func pageCount(total, perPage int) int {
	if total <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}
