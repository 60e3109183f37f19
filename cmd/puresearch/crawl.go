package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/FranksOps/puresearch/internal/api"
	"github.com/FranksOps/puresearch/internal/metrics"
	"github.com/FranksOps/puresearch/internal/page"
	"github.com/FranksOps/puresearch/internal/render"
	"github.com/FranksOps/puresearch/internal/report"
)

func newCrawlCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Submit crawl jobs and follow their progress",
	}
	cmd.PersistentFlags().Duration("interval", 0, "poll interval for watching")
	bindPersistent(cmd, "interval", "crawl.poll_interval")

	cmd.AddCommand(
		newCrawlSubmitCmd(a),
		newCrawlStatusCmd(a),
		newCrawlWatchCmd(a),
		newCrawlSitemapCmd(a),
	)
	return cmd
}

// crawlerPage returns a page whose polls are counted and, when verbose,
// printed as they arrive.
func crawlerPage(ctx context.Context, a *app, verbose bool) (*page.CrawlerPage, error) {
	session, err := a.mountSession(ctx, "")
	if err != nil {
		return nil, err
	}
	return session.CrawlerPage(page.CrawlerOptions{
		OnPoll: func(st api.CrawlStatus) {
			metrics.RecordCrawlPoll(st)
			if verbose {
				fmt.Fprintf(a.out, "%s  %s\n", time.Now().Format(time.TimeOnly), render.CrawlBadge(st))
			}
		},
	})
}

func newCrawlSubmitCmd(a *app) *cobra.Command {
	var (
		depth int
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "submit <url>",
		Short: "Queue a site for crawling",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cp, err := crawlerPage(ctx, a, watch)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("depth") {
				depth = a.cfg.Crawl.DefaultDepth
			}

			_, submitErr := cp.Submit(ctx, args[0], depth)
			if err := report.WriteCrawl(a.out, cp.View()); err != nil {
				return err
			}
			if submitErr != nil || !watch {
				return submitErr
			}
			return watchCrawl(ctx, a, cp)
		},
	}
	cmd.Flags().IntVarP(&depth, "depth", "d", 1, "link depth to follow, 1 to 3")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "poll until the crawl finishes")
	return cmd
}

func newCrawlStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <request-id>",
		Short: "Show the status of a crawl",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cp, err := crawlerPage(cmd.Context(), a, false)
			if err != nil {
				return err
			}
			cp.Track(args[0])
			_, statusErr := cp.CheckStatus(cmd.Context())
			if err := report.WriteCrawl(a.out, cp.View()); err != nil {
				return err
			}
			return statusErr
		},
	}
}

func newCrawlWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <request-id>",
		Short: "Poll a crawl until it completes or fails",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cp, err := crawlerPage(cmd.Context(), a, true)
			if err != nil {
				return err
			}
			cp.Track(args[0])
			return watchCrawl(cmd.Context(), a, cp)
		},
	}
}

func watchCrawl(ctx context.Context, a *app, cp *page.CrawlerPage) error {
	st, err := cp.Watch(ctx, a.cfg.Crawl.PollInterval)
	if werr := report.WriteCrawl(a.out, cp.View()); werr != nil {
		return werr
	}
	if err != nil {
		return err
	}
	if st.Status == api.CrawlFailed {
		return fmt.Errorf("crawl %s failed", cp.RequestID())
	}
	return nil
}

func newCrawlSitemapCmd(a *app) *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "sitemap <sitemap-url>",
		Short: "Queue a crawl for every page listed in a sitemap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.pipeline(cmd.Context())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("depth") {
				depth = a.cfg.Crawl.DefaultDepth
			}
			outcomes, err := p.SubmitSitemap(cmd.Context(), args[0], page.ClampDepth(depth))
			if werr := writeOutcomes(a.out, outcomes); werr != nil {
				return werr
			}
			return err
		},
	}
	cmd.Flags().IntVarP(&depth, "depth", "d", 1, "link depth to follow for each page, 1 to 3")
	cmd.Flags().Bool("respect-robots", true, "skip pages disallowed by robots.txt")
	cmd.Flags().Int("concurrency", 0, "parallel submissions")
	bindConfig(cmd, "respect-robots", "index.respect_robots")
	bindConfig(cmd, "concurrency", "index.concurrency")
	return cmd
}
