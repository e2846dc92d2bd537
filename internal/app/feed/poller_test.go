package feed

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type nopLogger struct{}

func (nopLogger) Info(action, message, requestID string, details map[string]interface{})  {}
func (nopLogger) Debug(action, message, requestID string, details map[string]interface{}) {}
func (nopLogger) Warn(action, message, requestID string, details map[string]interface{})  {}
func (nopLogger) Error(action, message, requestID string, details map[string]interface{}, err error) {
}

func TestRunStopsWhenConditionHolds(t *testing.T) {
	poller := NewPoller(5*time.Millisecond, nopLogger{})

	var polls int32
	probe := func(ctx context.Context) (bool, error) {
		return atomic.AddInt32(&polls, 1) >= 3, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := poller.Run(ctx, "order-status", probe); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := atomic.LoadInt32(&polls); got != 3 {
		t.Errorf("probe ran %d times, want 3", got)
	}
}

func TestRunProbesImmediately(t *testing.T) {
	// A long interval with an immediately-true probe must still return
	// right away.
	poller := NewPoller(time.Hour, nopLogger{})

	start := time.Now()
	err := poller.Run(context.Background(), "order-status", func(ctx context.Context) (bool, error) {
		return true, nil
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Run took %v, want immediate return", elapsed)
	}
}

func TestRunReturnsContextError(t *testing.T) {
	poller := NewPoller(time.Hour, nopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := poller.Run(ctx, "order-status", func(ctx context.Context) (bool, error) {
		return false, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v, want context.Canceled", err)
	}
}

func TestRunKeepsGoingThroughProbeErrors(t *testing.T) {
	poller := NewPoller(5*time.Millisecond, nopLogger{})

	var polls int32
	probe := func(ctx context.Context) (bool, error) {
		n := atomic.AddInt32(&polls, 1)
		if n < 3 {
			return false, errors.New("read timeout")
		}
		return true, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := poller.Run(ctx, "rider-inbox", probe); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := atomic.LoadInt32(&polls); got != 3 {
		t.Errorf("probe ran %d times, want 3", got)
	}
}

func TestNewPollerDefaultsInterval(t *testing.T) {
	poller := NewPoller(0, nopLogger{})
	if poller.interval != 10*time.Second {
		t.Errorf("interval = %v, want 10s default", poller.interval)
	}
}
