package main

import (
	"errors"
	"net/http"

	"github.com/dhamidi/pgen/lsp"
	"github.com/dhamidi/pgen/metrics"
	"github.com/dhamidi/pgen/parser"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
)

func newLSPCmd(flags *globalFlags) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []parser.Option
			if metricsAddr != "" {
				collector := metrics.NewCollector(nil)
				opts = append(opts, parser.WithObserver(collector))
				go serveMetrics(metricsAddr, collector)
			}

			lang, err := openLanguage(flags, opts...)
			if err != nil {
				return err
			}
			server := lsp.NewServer(lang, version)
			return server.RunStdio()
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")

	return cmd
}

func serveMetrics(addr string, collector *metrics.Collector) {
	log := commonlog.GetLogger("pgen.metrics")
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorf("metrics server: %s", err)
	}
}
