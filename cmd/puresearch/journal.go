package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/FranksOps/puresearch/internal/journal"
	"github.com/FranksOps/puresearch/internal/report"
)

func newJournalCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the API call journal",
	}
	cmd.AddCommand(newJournalReportCmd(a))
	return cmd
}

func newJournalReportCmd(a *app) *cobra.Command {
	var (
		op         string
		since      time.Duration
		limit      int
		failedOnly bool
		format     string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarise journaled API calls",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmtType, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			b, err := a.journalBackend(cmd.Context())
			if err != nil {
				return err
			}
			if b == nil {
				return errNoJournal
			}

			filter := journal.Filter{Op: op, Limit: limit}
			if since > 0 {
				t := time.Now().Add(-since)
				filter.Since = &t
			}
			if failedOnly {
				filter.Failed = &failedOnly
			}

			records, err := b.Query(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("context: query journal: %w", err)
			}
			summary := report.GenerateSummary(records)

			switch fmtType {
			case report.FormatJSON:
				return report.WriteJSON(a.out, summary)
			case report.FormatHTML:
				return report.WriteHTML(a.out, summary)
			default:
				return report.WriteText(a.out, summary)
			}
		},
	}

	f := cmd.Flags()
	f.StringVar(&op, "op", "", "only this operation, e.g. search or crawl_status")
	f.DurationVar(&since, "since", 0, "only calls newer than this, e.g. 24h")
	f.IntVar(&limit, "limit", 0, "most recent N calls")
	f.BoolVar(&failedOnly, "failed", false, "only failed calls")
	f.StringVarP(&format, "format", "f", "text", "output format: text, html or json")
	return cmd
}
