package feed

import (
	"context"
	"time"

	"delivery-marketplace/internal/adapter/logger"
)

// Probe is one stateless poll. It reports done=true when the awaited
// condition has been observed; the poller then stops. No state is carried
// between polls other than that signal.
type Probe func(ctx context.Context) (done bool, err error)

// Poller re-runs a probe on a fixed interval until the condition holds or
// the context is cancelled. It is how dashboard and rider clients observe
// order and notification state without a push connection: each tick is an
// independent re-fetch.
type Poller struct {
	interval time.Duration
	logger   logger.Logger
}

func NewPoller(interval time.Duration, logger logger.Logger) *Poller {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Poller{interval: interval, logger: logger}
}

// Run probes immediately, then on every tick. It returns nil once the
// probe reports done, and ctx.Err() when cancelled, so an abandoned
// session never leaves a loop running. Probe errors are logged and the
// loop keeps going; a flaky read should not kill the watch.
func (p *Poller) Run(ctx context.Context, name string, probe Probe) error {
	if done := p.probeOnce(ctx, name, probe); done {
		return nil
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if done := p.probeOnce(ctx, name, probe); done {
				return nil
			}
		}
	}
}

func (p *Poller) probeOnce(ctx context.Context, name string, probe Probe) bool {
	done, err := probe(ctx)
	if err != nil {
		p.logger.Error("poll_failed", "Poll attempt failed", name, map[string]interface{}{
			"poll": name,
		}, err)
		return false
	}
	if done {
		p.logger.Debug("poll_condition_met", "Awaited condition observed, stopping", name, map[string]interface{}{
			"poll": name,
		})
	}
	return done
}
