// Command goauth-session keeps a storefront session on disk and drives it
// from the shell.
//
//	goauth-session serve-mock --addr 127.0.0.1:8081 &
//	goauth-session login --email admin@example.com --password admin123
//	goauth-session status
//	goauth-session watch --metrics-addr 127.0.0.1:9464
//	goauth-session logout
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		stop()
		os.Exit(1)
	}
}
