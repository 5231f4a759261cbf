package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/provider/httpapi"
	"github.com/MrEthical07/goAuthClient/storage"
	"github.com/MrEthical07/goAuthClient/storage/redisarea"
	"github.com/MrEthical07/goAuthClient/storage/sqlarea"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const defaultAPIURL = "http://127.0.0.1:8081/api"

type options struct {
	apiURL    string
	store     string
	redisAddr string
	namespace string
	timeout   time.Duration
	verbose   bool

	stdout io.Writer
	stderr io.Writer
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{stdout: stdout, stderr: stderr}
	cmd := &cobra.Command{
		Use:           "goauth-session",
		Short:         "Manage a storefront session from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api", defaultAPIURL, "auth API base URL")
	cmd.PersistentFlags().StringVar(&opts.store, "store", "goauth-session.db", "SQLite file holding remembered credentials")
	cmd.PersistentFlags().StringVar(&opts.redisAddr, "redis-addr", "", "keep remembered credentials in redis instead of SQLite")
	cmd.PersistentFlags().StringVar(&opts.namespace, "namespace", "default", "credential namespace within the store")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", httpapi.DefaultTimeout, "per-request timeout")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(
		newLoginCommand(opts),
		newRegisterCommand(opts),
		newLogoutCommand(opts),
		newStatusCommand(opts),
		newRefreshCommand(opts),
		newProfileCommand(opts),
		newPasswordCommand(opts),
		newWatchCommand(opts),
		newServeMockCommand(opts),
	)
	return cmd
}

func (o *options) logger() *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(o.stderr, &slog.HandlerOptions{Level: level}))
}

// openArea returns the durable area and a func releasing it.
func (o *options) openArea(ctx context.Context) (storage.Area, func(), error) {
	if o.redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: o.redisAddr})
		area := redisarea.New(client, "goauth-session:"+o.namespace, 0)
		if _, err := area.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis %s: %w", o.redisAddr, err)
		}
		return area, func() { _ = client.Close() }, nil
	}
	area, err := sqlarea.OpenSQLite(o.store, o.namespace)
	if err != nil {
		return nil, nil, err
	}
	return area, func() { _ = area.Close() }, nil
}

// openManager builds and initializes a Manager over the configured API and
// store. The returned func closes both.
func (o *options) openManager(ctx context.Context) (*goAuthClient.Manager, func(), error) {
	client, err := httpapi.New(httpapi.Options{BaseURL: o.apiURL, Timeout: o.timeout})
	if err != nil {
		return nil, nil, err
	}
	area, release, err := o.openArea(ctx)
	if err != nil {
		return nil, nil, err
	}

	m, err := goAuthClient.New().
		WithCredentialService(client).
		WithDurableArea(area).
		WithNotifier(goAuthClient.NotifierFunc(func(_ context.Context, n goAuthClient.Notification) {
			fmt.Fprintln(o.stderr, renderNotification(n))
		})).
		WithLogger(o.logger()).
		WithMetricsEnabled(true).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		release()
		return nil, nil, err
	}
	if err := m.Initialize(ctx); err != nil {
		m.Close()
		release()
		return nil, nil, err
	}
	return m, func() {
		m.Close()
		release()
	}, nil
}

// withManager runs fn against an initialized Manager and turns its error into
// the manager's user-facing message.
func (o *options) withManager(cmd *cobra.Command, fn func(context.Context, *goAuthClient.Manager) error) error {
	ctx := cmd.Context()
	m, done, err := o.openManager(ctx)
	if err != nil {
		return err
	}
	defer done()

	if err := fn(ctx, m); err != nil {
		if errors.Is(err, errSignedOut) {
			return err
		}
		return &userError{msg: m.UserMessage(err), err: err}
	}
	return nil
}

// userError shows the manager's message while keeping the cause for errors.Is.
type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.err }

var errSignedOut = errors.New("not signed in")

func requireSignedIn(m *goAuthClient.Manager) error {
	if !m.IsAuthenticated() {
		return errSignedOut
	}
	return nil
}
