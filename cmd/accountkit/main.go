// Command accountkit inspects the persisted account cache configured by the
// ACCOUNTKIT_ environment.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonwraymond/accountkit/config"
	"github.com/jonwraymond/accountkit/internal/cli"
)

func main() {
	opts, err := cli.ParseArgs(flag.CommandLine, os.Args[1:])
	if err != nil {
		exitf("Error: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	if err := cli.Run(ctx, cfg, opts, os.Stdout); err != nil {
		exitf("Error: %v", err)
	}
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
