package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/MrEthical07/goAuthClient/metrics/export/prometheus"
	"github.com/spf13/cobra"
)

func newWatchCommand(opts *options) *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the session alive and print every transition",
		Long: "watch restores the stored session and stays in the foreground, letting the\n" +
			"refresh timer rotate tokens until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m, done, err := opts.openManager(ctx)
			if err != nil {
				return err
			}
			defer done()

			states, unsubscribe := m.Subscribe(32)
			defer unsubscribe()

			if metricsAddr != "" {
				stop, err := serveMetrics(metricsAddr, prometheus.NewCollector(m).Handler())
				if err != nil {
					return err
				}
				defer stop()
				fmt.Fprintf(opts.stderr, "metrics on http://%s/metrics\n", metricsAddr)
			}

			fmt.Fprintln(opts.stdout, renderStatus(m.State(), m.NextRefresh))
			for {
				select {
				case <-ctx.Done():
					return nil
				case s, ok := <-states:
					if !ok {
						return nil
					}
					fmt.Fprintln(opts.stdout, renderTransition(s))
				}
			}
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

// serveMetrics listens on addr before returning so a bad address fails the
// command instead of a background goroutine.
func serveMetrics(addr string, h http.Handler) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
