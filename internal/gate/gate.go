// Package gate blocks container startup until every dependency target is
// reachable, or fails on the first target whose timeout budget runs out.
package gate

import (
	"context"
	"fmt"
	"time"

	"github.com/entrygate/entrygate/internal/probe"
	"go.uber.org/zap"
)

const (
	// DefaultInterval is the fixed poll interval between attempts.
	DefaultInterval = 1 * time.Second
	// DefaultAttemptTimeout bounds one connection attempt so a hung attempt
	// cannot eat the whole per-target budget.
	DefaultAttemptTimeout = 5 * time.Second
)

// Outcome is the terminal result of a gate run: every target became
// reachable, or one target exhausted its budget.
type Outcome struct {
	// Ready reports whether all targets were reachable within budget.
	Ready bool
	// TimedOut is the first target, in check order, whose budget expired.
	// Zero when Ready.
	TimedOut probe.Target
}

// Err returns nil for a Ready outcome and a *TimeoutError otherwise.
func (o Outcome) Err() error {
	if o.Ready {
		return nil
	}
	return &TimeoutError{Target: o.TimedOut}
}

// TimeoutError reports the target that never became reachable.
type TimeoutError struct {
	Target probe.Target
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("target %s not reachable within timeout", e.Target)
}

// Gate polls dependency targets until they are reachable. The zero value
// probes with TCP connects at the default interval and logs nothing.
type Gate struct {
	// Probe checks a single target. Defaults to probe.TCP.
	Probe probe.Probe
	// Interval is the fixed delay between attempts for one target. There is
	// no backoff and no jitter. Defaults to DefaultInterval.
	Interval time.Duration
	// AttemptTimeout bounds a single attempt, clamped to the remaining
	// per-target budget. Defaults to DefaultAttemptTimeout.
	AttemptTimeout time.Duration
	// Log receives one line per target when waiting starts plus the outcome.
	// Defaults to a nop logger.
	Log *zap.SugaredLogger
}

// Await checks targets strictly in order, one at a time. Each target gets
// its own full timeout window, measured from the moment its checking begins:
// the first attempt is immediate, further attempts follow at the poll
// interval until the target is reachable or its window closes. The first
// expired target aborts the whole gate; later targets are never checked.
//
// An empty target list is vacuously Ready, with no probing and no sleeping.
// The returned error is non-nil only when ctx is canceled mid-wait.
func (g *Gate) Await(ctx context.Context, targets []probe.Target, timeout time.Duration) (Outcome, error) {
	p := g.Probe
	if p == nil {
		p = probe.TCP{}
	}
	interval := g.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	attemptTimeout := g.AttemptTimeout
	if attemptTimeout <= 0 {
		attemptTimeout = DefaultAttemptTimeout
	}
	log := g.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	for _, target := range targets {
		log.Infof("waiting for %s (timeout %s)", target, timeout)
		start := time.Now()
		deadline := start.Add(timeout)
		if err := g.awaitOne(ctx, p, target, deadline, interval, attemptTimeout); err != nil {
			if ctx.Err() != nil {
				return Outcome{}, ctx.Err()
			}
			log.Warnf("gave up on %s after %s", target, time.Since(start).Round(time.Millisecond))
			return Outcome{TimedOut: target}, nil
		}
		log.Infof("%s is ready after %s", target, time.Since(start).Round(time.Millisecond))
	}
	return Outcome{Ready: true}, nil
}

// awaitOne polls a single target until it is reachable or deadline passes.
func (g *Gate) awaitOne(ctx context.Context, p probe.Probe, target probe.Target, deadline time.Time, interval, attemptTimeout time.Duration) error {
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fmt.Errorf("budget exhausted for %s", target)
		}
		if attemptTimeout < remaining {
			remaining = attemptTimeout
		}
		attemptCtx, cancel := context.WithTimeout(ctx, remaining)
		err := p.Check(attemptCtx, target)
		cancel()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Sleep the fixed interval, clamped so the loop wakes exactly at the
		// deadline instead of overshooting the budget.
		sleep := interval
		if rest := time.Until(deadline); rest < sleep {
			sleep = rest
		}
		if sleep > 0 {
			select {
			case <-time.After(sleep):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
