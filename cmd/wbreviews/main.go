package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kutoven/wbreviews/internal/cli"
)

func main() {
	// Cancelled on SIGINT/SIGTERM; "serve" drains on it, one-shot scrapes abort the browser.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
