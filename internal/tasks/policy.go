package tasks

import (
	"context"
	"time"
)

// BackoffPolicy controls how the executor reacts to rate-limit signals.
//
// The defaults match the remote system's quota reset granularity: one fixed
// 60 second wait, then a single retry of the same mutation. The executor
// does not retry past MaxAttempts so a second failure after backoff is not
// masked; the run aborts with a resume-later advisory instead.
type BackoffPolicy struct {
	// MaxAttempts is the total number of tries per mutation (first attempt
	// plus retries after quota waits).
	MaxAttempts int

	// QuotaWait is the fixed wait applied after a rate-limit signal.
	QuotaWait time.Duration

	// Jitter, when set, maps QuotaWait to the actual wait duration.
	Jitter func(time.Duration) time.Duration

	// Sleep, when set, replaces the context-aware sleep. Tests inject this
	// to observe waits without slowing down.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultBackoffPolicy returns the policy matching the documented behavior.
func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{
		MaxAttempts: 2,
		QuotaWait:   60 * time.Second,
	}
}

func (p BackoffPolicy) normalized() BackoffPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 2
	}
	if p.QuotaWait <= 0 {
		p.QuotaWait = 60 * time.Second
	}
	if p.Sleep == nil {
		p.Sleep = sleepContext
	}
	return p
}

// wait blocks for the policy's backoff duration or until the context ends.
func (p BackoffPolicy) wait(ctx context.Context) error {
	d := p.QuotaWait
	if p.Jitter != nil {
		d = p.Jitter(d)
	}
	return p.Sleep(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
