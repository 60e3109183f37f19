package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/FranksOps/puresearch/internal/page"
	"github.com/FranksOps/puresearch/internal/render"
	"github.com/FranksOps/puresearch/internal/report"
)

type searchOptions struct {
	page         int
	perPage      int
	format       string
	theme        string
	contentTypes []string
	bands        []string
	interactive  bool
}

func newSearchCmd(a *app) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search for human-written content",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), a, strings.Join(args, " "), opts)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.page, "page", "p", 1, "result page")
	f.IntVar(&opts.perPage, "per-page", 0, "results per page")
	f.StringVarP(&opts.format, "format", "f", "text", "output format: text, html or json")
	f.StringVar(&opts.theme, "theme", "system", "html theme: system, light or dark")
	f.StringSliceVar(&opts.contentTypes, "content-type", nil, "only show these content types")
	f.StringSliceVar(&opts.bands, "band", nil, "only show these confidence bands, e.g. very-likely-human")
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "browse results with j/k and open them with enter")
	bindConfig(cmd, "per-page", "search.per_page")

	return cmd
}

func runSearch(ctx context.Context, a *app, query string, opts searchOptions) error {
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	theme, err := page.ParseTheme(opts.theme)
	if err != nil {
		return err
	}
	filters, err := parseFilters(opts.contentTypes, opts.bands)
	if err != nil {
		return err
	}

	session, err := a.mountSession(ctx, theme)
	if err != nil {
		return err
	}
	sp, err := session.SearchPage(a.cfg.Search.PerPage)
	if err != nil {
		return err
	}
	sp.SetFilters(filters)

	// The view carries the error; the return value is only for logging.
	if err := sp.Navigate(ctx, page.SearchLocation(query, opts.page)); err != nil {
		a.logger.Debug("search failed", "query", query, "err", err)
	}

	if opts.interactive {
		return browse(ctx, a, sp)
	}

	v := sp.View()
	if err := report.WriteSearch(a.out, format, v, -1); err != nil {
		return err
	}
	if v.State == page.Errored {
		return fmt.Errorf("search failed: %s", v.ErrorMessage())
	}
	return nil
}

func parseFilters(contentTypes, bands []string) (page.Filters, error) {
	f := page.Filters{ContentTypes: contentTypes}
	for _, s := range bands {
		b, err := render.ParseBand(strings.ReplaceAll(s, "_", "-"))
		if err != nil {
			return f, err
		}
		f.Bands = append(f.Bands, b)
	}
	return f, nil
}

const browseHelp = "[j/k] move  [enter] open  [n/p] next/prev page  [r] retry  [q] quit"

// browse runs the keyboard loop: one command per input line.
func browse(ctx context.Context, a *app, sp *page.SearchPage) error {
	opener := a.opener
	if opener == nil {
		opener = render.BrowserOpener{Ctx: ctx}
	}
	prompt := false
	if f, ok := a.in.(*os.File); ok {
		prompt = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	sel := render.NewSelection(render.URLs(sp.View().Rows), opener)
	scanner := bufio.NewScanner(a.in)
	for {
		v := sp.View()
		if err := report.WriteSearchText(a.out, v, sel.Index()); err != nil {
			return err
		}
		if prompt {
			fmt.Fprintf(a.out, "%s > ", browseHelp)
		}

		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch cmd := strings.ToLower(line); cmd {
		case "q", "quit":
			return nil
		case "n", "p", "r":
			if err := turnPage(ctx, sp, v, cmd); err != nil {
				a.logger.Debug("navigation failed", "err", err)
			}
			sel.Reset(render.URLs(sp.View().Rows))
			continue
		}

		opened, err := sel.Handle(render.ParseKey(line))
		if err != nil {
			fmt.Fprintln(a.errOut, "Error:", err)
			continue
		}
		if opened != "" {
			fmt.Fprintf(a.out, "Opened %s\n", opened)
		}
	}
}

func turnPage(ctx context.Context, sp *page.SearchPage, v page.SearchView, cmd string) error {
	switch {
	case cmd == "n" && v.Page < v.PageCount:
		return sp.GoToPage(ctx, v.Page+1)
	case cmd == "p" && v.Page > 1:
		return sp.GoToPage(ctx, v.Page-1)
	case cmd == "r":
		return sp.Retry(ctx)
	}
	return nil
}
