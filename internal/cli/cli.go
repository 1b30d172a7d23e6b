// Package cli implements the accountkit command: inspecting, clearing and
// health-checking the persisted account cache of a deployment.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/jonwraymond/accountkit/account"
	"github.com/jonwraymond/accountkit/config"
	"github.com/jonwraymond/accountkit/health"
	"github.com/jonwraymond/accountkit/record"
)

var (
	// ErrUsage indicates missing or malformed command arguments.
	ErrUsage = errors.New("usage: accountkit [-json] [-timeout d] show <id> | clear <id> | health")

	// ErrEntryNotFound indicates show found no entry for the account.
	ErrEntryNotFound = errors.New("no cached entry")

	// ErrUnhealthy indicates the health report is unhealthy.
	ErrUnhealthy = errors.New("unhealthy")
)

// Options holds parsed command-line arguments.
type Options struct {
	Command   string
	AccountID string
	JSON      bool
	Timeout   time.Duration
}

// ParseArgs parses flags and the subcommand from args.
func ParseArgs(fs *flag.FlagSet, args []string) (Options, error) {
	var opts Options
	fs.BoolVar(&opts.JSON, "json", false, "print account details as JSON")
	fs.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "overall timeout")
	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return Options{}, ErrUsage
	}
	opts.Command = rest[0]
	switch opts.Command {
	case "show", "clear":
		if len(rest) != 2 || rest[1] == "" {
			return Options{}, fmt.Errorf("%w: %s needs an account id", ErrUsage, opts.Command)
		}
		opts.AccountID = rest[1]
	case "health":
		if len(rest) != 1 {
			return Options{}, fmt.Errorf("%w: health takes no arguments", ErrUsage)
		}
	default:
		return Options{}, fmt.Errorf("%w: unknown command %q", ErrUsage, opts.Command)
	}
	return opts, nil
}

// Run opens the runtime described by cfg and executes opts against it.
func Run(ctx context.Context, cfg config.Config, opts Options, out io.Writer) (err error) {
	if out == nil {
		out = io.Discard
	}
	rt, err := config.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, rt.Close(ctx))
	}()

	switch opts.Command {
	case "show":
		return show(ctx, rt, opts, out)
	case "clear":
		if err := rt.Cache.ClearEntry(ctx, opts.AccountID); err != nil {
			return err
		}
		_, err := fmt.Fprintf(out, "cleared %s\n", opts.AccountID)
		return err
	case "health":
		return report(ctx, rt.Health, out)
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, opts.Command)
	}
}

func show(ctx context.Context, rt *config.Runtime, opts Options, out io.Writer) error {
	snap, ok := rt.Cache.LoadEntry(ctx, opts.AccountID, account.Keys())
	if !ok {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, opts.AccountID)
	}
	snap = snap.Builder().Remove(account.Password).Build()

	if opts.JSON {
		data, err := record.Encode(snap, record.NewJSONCodec())
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return err
		}
		buf.WriteByte('\n')
		_, err = out.Write(buf.Bytes())
		return err
	}

	values := make(map[string]any, snap.Len())
	snap.Accept(record.VisitorFunc(func(k record.AnyKey, v any) {
		values[k.ID()] = v
	}))
	for _, k := range account.Keys().Keys() {
		v, ok := values[k.ID()]
		if !ok {
			continue
		}
		if _, err := fmt.Fprintf(out, "%s\t%v\n", k.ID(), v); err != nil {
			return err
		}
	}
	return nil
}

func report(ctx context.Context, agg *health.Aggregator, out io.Writer) error {
	r := agg.Report(ctx)
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	if _, err := out.Write(append(data, '\n')); err != nil {
		return err
	}
	if r.Status == health.StatusUnhealthy {
		return ErrUnhealthy
	}
	return nil
}
