package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/MrEthical07/goAuthClient/mockserver"
	"github.com/MrEthical07/goAuthClient/provider/memory"
	"github.com/spf13/cobra"
)

func newServeMockCommand(opts *options) *cobra.Command {
	var (
		addr       string
		prefix     string
		signingKey string
		latency    time.Duration
		accessTTL  time.Duration
		trace      bool
	)
	cmd := &cobra.Command{
		Use:   "serve-mock",
		Short: "Serve the demo auth API with the seeded storefront accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger()
			if !opts.verbose {
				logger = slog.New(slog.NewTextHandler(opts.stderr, nil))
			}

			cfg := memory.DefaultConfig([]byte(signingKey))
			cfg.AccessTTL = accessTTL
			cfg.ResetDelivery = func(email, token string) {
				logger.Info("password reset issued", "email", email, "token", token)
			}
			backend, err := memory.NewDemo(cfg)
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			srv := &http.Server{
				Handler: mockserver.NewRouter(backend, mockserver.Options{
					Logger:  logger,
					Prefix:  prefix,
					Trace:   trace,
					Latency: latency,
				}),
				ReadHeaderTimeout: 5 * time.Second,
			}

			fmt.Fprintf(opts.stderr, "auth API on http://%s%s\n", ln.Addr(), prefix)
			for _, a := range memory.DemoAccounts {
				fmt.Fprintf(opts.stderr, "  %-22s %s\n", a.Email, a.Password)
			}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Serve(ln) }()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-cmd.Context().Done():
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(ctx)
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8081", "listen address")
	cmd.Flags().StringVar(&prefix, "prefix", "/api", "route prefix")
	cmd.Flags().StringVar(&signingKey, "signing-key", "goauth-session-demo-signing-key-change-me", "HS256 signing key")
	cmd.Flags().DurationVar(&latency, "latency", 0, "artificial delay per response")
	cmd.Flags().DurationVar(&accessTTL, "access-ttl", 15*time.Minute, "access token lifetime")
	cmd.Flags().BoolVar(&trace, "trace", false, "wrap the router in otelhttp")
	return cmd
}
