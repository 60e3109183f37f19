package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/FranksOps/puresearch/internal/config"
)

func newRootCmd(a *app) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "puresearch",
		Short:         "Search the web for human-written content",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default ./"+config.DefaultFile+")")
	pf.String("base-url", "", "backend API base url")
	pf.Duration("timeout", 0, "per-request timeout")
	pf.String("tls-profile", "", "TLS client hello: go, chrome, firefox or safari")
	pf.String("log-level", "", "debug, info, warn or error")
	pf.String("log-format", "", "text or json")
	pf.String("journal", "", "call journal backend: none, sqlite, postgres, json or csv")
	pf.String("journal-dsn", "", "journal file path or postgres connection string")
	pf.Int("metrics-port", 0, "serve Prometheus metrics on this port (0 = off)")

	bindings := map[string]*pflag.Flag{
		"api.base_url":    pf.Lookup("base-url"),
		"api.timeout":     pf.Lookup("timeout"),
		"api.tls_profile": pf.Lookup("tls-profile"),
		"log.level":       pf.Lookup("log-level"),
		"log.format":      pf.Lookup("log-format"),
		"journal.backend": pf.Lookup("journal"),
		"journal.dsn":     pf.Lookup("journal-dsn"),
		"metrics.port":    pf.Lookup("metrics-port"),
	}

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		for key, f := range localBindings(cmd) {
			bindings[key] = f
		}
		cfg, err := config.Load(configPath, bindings)
		if err != nil {
			return err
		}
		return a.init(cfg)
	}

	root.AddCommand(
		newSearchCmd(a),
		newClassifyCmd(a),
		newIndexCmd(a),
		newCrawlCmd(a),
		newJournalCmd(a),
		newMockBackendCmd(a),
	)
	return root
}

// localBindings collects config keys that a subcommand maps onto its own
// flags through the "config" flag annotation.
func localBindings(cmd *cobra.Command) map[string]*pflag.Flag {
	out := make(map[string]*pflag.Flag)
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if keys, ok := f.Annotations["config"]; ok && len(keys) > 0 {
			out[keys[0]] = f
		}
	})
	return out
}

func bindConfig(cmd *cobra.Command, flag, key string) {
	_ = cmd.Flags().SetAnnotation(flag, "config", []string{key})
}
