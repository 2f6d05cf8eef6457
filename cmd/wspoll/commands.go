// ABOUTME: Subcommand implementations for the wspoll CLI
// ABOUTME: Each command runs a cooperative loop that polls instead of blocking on the network

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/2389/wspoll/internal/client"
	"github.com/2389/wspoll/internal/codec"
	"github.com/2389/wspoll/internal/config"
	"github.com/2389/wspoll/internal/echo"
	"github.com/2389/wspoll/internal/event"
	"github.com/2389/wspoll/internal/fetch"
	"github.com/2389/wspoll/internal/promise"
)

// closeCommand typed on stdin starts a graceful close in connect mode.
const closeCommand = "/close"

// headerFlags collects repeated -H "Name: value" flags.
type headerFlags []string

func (h *headerFlags) String() string {
	return strings.Join(*h, ", ")
}

func (h *headerFlags) Set(v string) error {
	if !strings.Contains(v, ":") {
		return fmt.Errorf("header %q must look like 'Name: value'", v)
	}
	*h = append(*h, v)
	return nil
}

// pairs splits each flag into a trimmed name and value.
func (h headerFlags) pairs() [][2]string {
	out := make([][2]string, 0, len(h))
	for _, raw := range h {
		name, value, _ := strings.Cut(raw, ":")
		out = append(out, [2]string{strings.TrimSpace(name), strings.TrimSpace(value)})
	}
	return out
}

// parseTarget parses flags for commands that take one URL argument.
func parseTarget(name string, args []string) (string, headerFlags, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	var headers headerFlags
	fs.Var(&headers, "H", "request header 'Name: value' (repeatable)")

	// Allow the URL before or after the flags
	var target string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		target, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return "", nil, err
	}
	if target == "" && fs.NArg() > 0 {
		target = fs.Arg(0)
	}
	if target == "" {
		return "", nil, fmt.Errorf("usage: wspoll %s URL [-H 'Name: value']...", name)
	}
	return target, headers, nil
}

func runConnect(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	target, headers, err := parseTarget("connect", args)
	if err != nil {
		return err
	}

	var pairs []client.Header
	for _, kv := range headers.pairs() {
		pairs = append(pairs, client.Header{Name: kv[0], Value: kv[1]})
	}

	c := client.New(cfg.Session, logger)
	if err := c.Connect(target, pairs); err != nil {
		return fmt.Errorf("connecting: %w", err)
	}

	lines := readLines(os.Stdin)
	var closeDeadline time.Time

	startClose := func() {
		if closeDeadline.IsZero() {
			closeDeadline = time.Now().Add(cfg.Session.CloseTimeout + time.Second)
			_ = c.Close()
		}
	}

	for {
		for {
			it, ok := c.PollItem()
			if !ok {
				break
			}
			printItem(it)
			if it.Kind == event.Close {
				return nil
			}
		}

		if !closeDeadline.IsZero() && time.Now().After(closeDeadline) {
			return errors.New("timed out waiting for close")
		}

		select {
		case <-ctx.Done():
			startClose()
		case line, ok := <-lines:
			switch {
			case !ok:
				lines = nil
			case line == closeCommand:
				startClose()
			default:
				err := c.Send(line)
				switch {
				case errors.Is(err, client.ErrNotConnected):
					color.Yellow("not connected, dropped: %s", line)
				case err != nil:
					logger.Warn("send failed", "error", err)
				}
			}
		default:
		}

		time.Sleep(cfg.Session.PollInterval)
	}
}

// readLines forwards stdin lines on a channel closed at EOF.
func readLines(r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			ch <- scanner.Text()
		}
	}()
	return ch
}

func printItem(it event.Item) {
	switch it.Kind {
	case event.Open:
		color.Green("%s", it.Encode())
	case event.Close:
		color.Cyan("%s", it.Encode())
	case event.Error:
		color.Red("%s", it.Encode())
	default:
		fmt.Println(it.Text)
	}
}

func runFetch(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	target, headers, err := parseTarget("fetch", args)
	if err != nil {
		return err
	}

	var pairs []fetch.Header
	for _, kv := range headers.pairs() {
		pairs = append(pairs, fetch.Header{Name: kv[0], Value: kv[1]})
	}

	d := fetch.New(cfg.Fetch, logger)
	p, err := d.Fetch(target, pairs)
	if err != nil {
		return err
	}

	for {
		resp, err := p.Poll()
		switch {
		case errors.Is(err, promise.ErrPending):
		case err != nil:
			return err
		default:
			printResponse(resp)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.Session.PollInterval):
		}
	}
}

func printResponse(resp fetch.Response) {
	status := color.New(color.FgGreen)
	if resp.Status >= 400 {
		status = color.New(color.FgRed)
	}
	status.Printf("%d\n", resp.Status)

	keys := make([]string, 0, len(resp.Headers))
	for k := range resp.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s %s\n", color.HiBlackString(k+":"), resp.Headers[k])
	}
	fmt.Println()
	fmt.Println(resp.Body)
}

func runEcho(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Echo:    ws://%s%s\n\n", cfg.Echo.Addr, cfg.Echo.Path)

	return echo.NewServer(cfg.Echo.Addr, cfg.Echo.Path, logger).Run(ctx)
}

// runJSON parses a document from r and writes it back compacted.
func runJSON(r io.Reader, w io.Writer) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	v, err := codec.Parse(string(data))
	if err != nil {
		return err
	}
	out, err := codec.Stringify(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}
