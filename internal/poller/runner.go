// internal/poller/runner.go
package poller

import (
	"context"
	"time"
)

// Waiter blocks until the next poll cycle is due or ctx is done.
type Waiter interface {
	Wait(ctx context.Context) error
	Stop()
}

// sleepWaiter sleeps a fixed duration after each cycle.
// Used while waiting for the first reading.
type sleepWaiter struct {
	d time.Duration
}

func (w sleepWaiter) Wait(ctx context.Context) error {
	t := time.NewTimer(w.d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (w sleepWaiter) Stop() {}

// tickerWaiter fires on a fixed cadence independent of cycle duration.
// A cycle that overruns the interval drops ticks, it never overlaps.
type tickerWaiter struct {
	t *time.Ticker
}

func newTickerWaiter(d time.Duration) *tickerWaiter {
	return &tickerWaiter{t: time.NewTicker(d)}
}

func (w *tickerWaiter) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-w.t.C:
		return nil
	}
}

func (w *tickerWaiter) Stop() { w.t.Stop() }

func (p *Poller) defaultWaiter(primed bool) Waiter {
	if primed {
		return newTickerWaiter(p.cfg.Interval)
	}
	return sleepWaiter{d: p.cfg.StartupWait}
}

// Run polls until ctx is done. One goroutine. No overlap.
// The Primed flag selects the wait strategy between cycles.
// Returns nil on cancellation, or the fatal error from PollOnce.
func (p *Poller) Run(ctx context.Context) error {
	primed := p.state.Primed
	wait := p.newWaiter(primed)
	defer func() { wait.Stop() }()

	for {
		if ctx.Err() != nil {
			return nil
		}

		if err := p.PollOnce(); err != nil {
			return err
		}

		if p.state.Primed != primed {
			primed = p.state.Primed
			wait.Stop()
			wait = p.newWaiter(primed)
		}

		if err := wait.Wait(ctx); err != nil {
			return nil
		}
	}
}
