package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/FranksOps/puresearch/internal/pipeline"
)

func newIndexCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Extract pages and submit them to the search index",
	}
	cmd.PersistentFlags().Bool("respect-robots", true, "skip pages disallowed by robots.txt")
	cmd.PersistentFlags().Int("concurrency", 0, "parallel submissions for sitemaps")
	bindPersistent(cmd, "respect-robots", "index.respect_robots")
	bindPersistent(cmd, "concurrency", "index.concurrency")

	cmd.AddCommand(newIndexURLCmd(a), newIndexSitemapCmd(a))
	return cmd
}

func bindPersistent(cmd *cobra.Command, flag, key string) {
	_ = cmd.PersistentFlags().SetAnnotation(flag, "config", []string{key})
}

func newIndexURLCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "url <url>",
		Short: "Index a single page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.pipeline(ctx)
			if err != nil {
				return err
			}
			doc, err := p.Document(ctx, args[0])
			if err != nil {
				return err
			}
			req := doc.IndexRequest()

			if dryRun {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(req)
			}

			session, err := a.mountSession(ctx, "")
			if err != nil {
				return err
			}
			indexer, err := session.Indexer()
			if err != nil {
				return err
			}
			resp, err := indexer.Trigger(ctx, req)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.out, "Indexed %s\nID:         %s\nConfidence: %.0f%%\nLanguage:   %s\n",
				resp.URL, resp.ID, resp.Confidence, orUnknown(req.Language))
			return err
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the extracted document without submitting it")
	return cmd
}

func newIndexSitemapCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sitemap <sitemap-url>",
		Short: "Index every page listed in a sitemap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.pipeline(cmd.Context())
			if err != nil {
				return err
			}
			outcomes, err := p.IndexSitemap(cmd.Context(), args[0])
			if werr := writeOutcomes(a.out, outcomes); werr != nil {
				return werr
			}
			return err
		},
	}
}

func writeOutcomes(w io.Writer, outcomes []pipeline.Outcome) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tURL\tID\tERROR")
	for _, o := range outcomes {
		msg := ""
		if o.Err != nil {
			msg = o.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", o.Status, o.URL, o.RequestID, msg)
	}
	t := pipeline.Tally(outcomes)
	fmt.Fprintf(tw, "\n%d submitted, %d skipped, %d failed\n",
		t[pipeline.StatusSubmitted], t[pipeline.StatusSkipped], t[pipeline.StatusFailed])
	return tw.Flush()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
