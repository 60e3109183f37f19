package main

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/FranksOps/puresearch/internal/fakebackend"
)

func newMockBackendCmd(a *app) *cobra.Command {
	var (
		addr          string
		latency       time.Duration
		pagesPerLevel int
	)

	cmd := &cobra.Command{
		Use:   "mock-backend",
		Short: "Serve an in-memory backend for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !strings.EqualFold(a.cfg.Log.Level, "debug") {
				gin.SetMode(gin.ReleaseMode)
			}
			srv := fakebackend.New(fakebackend.Config{
				Latency:       latency,
				PagesPerLevel: pagesPerLevel,
				Logger:        a.logger,
			})
			a.logger.Info("api mounted", "addr", addr, "path", fakebackend.BasePath)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	f := cmd.Flags()
	f.StringVar(&addr, "addr", ":8080", "listen address")
	f.DurationVar(&latency, "latency", 200*time.Millisecond, "delay added to every API response")
	f.IntVar(&pagesPerLevel, "pages-per-level", 6, "pages a fake crawl reports per depth level")
	return cmd
}
