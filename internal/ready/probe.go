// Package ready waits for stack endpoints to accept connections. It
// replaces the fixed post-launch sleep with actual port probing.
package ready

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultTimeout bounds the whole readiness wait.
	DefaultTimeout = 30 * time.Second
	// DefaultInterval is the pause between probe attempts per target.
	DefaultInterval = 1 * time.Second
)

// DialFunc attempts one connection to addr. A nil return means ready.
type DialFunc func(ctx context.Context, addr string) error

func tcpDial(ctx context.Context, addr string) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	return conn.Close()
}

// Options configures Wait. Zero values select defaults.
type Options struct {
	Timeout  time.Duration
	Interval time.Duration
	// Dial overrides the TCP dialer (for testing).
	Dial DialFunc
}

// Wait blocks until every addr accepts a connection, the timeout lapses,
// or ctx is canceled. Targets are probed in parallel; the error names every
// port that never opened.
func Wait(ctx context.Context, addrs []string, opts Options) error {
	if len(addrs) == 0 {
		return nil
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	dial := opts.Dial
	if dial == nil {
		dial = tcpDial
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	failed := make([]string, len(addrs))
	g, ctx := errgroup.WithContext(ctx)
	for i, addr := range addrs {
		g.Go(func() error {
			err := waitOne(ctx, dial, addr, interval)
			if err != nil {
				failed[i] = addr
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		var down []string
		for _, addr := range failed {
			if addr != "" {
				down = append(down, addr)
			}
		}
		return fmt.Errorf("not ready after %s: %s: %w", timeout, strings.Join(down, ", "), err)
	}
	return nil
}

// waitOne probes a single addr until it connects or ctx expires.
func waitOne(ctx context.Context, dial DialFunc, addr string, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		attempt, cancel := context.WithTimeout(ctx, interval)
		lastErr = dial(attempt, addr)
		cancel()
		if lastErr == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			if lastErr != nil {
				return lastErr
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
