package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/yttransfer/internal/shared"
	"github.com/desertthunder/yttransfer/internal/youtube"
	"golang.org/x/time/rate"
)

// Executor performs single mutations against the target account with fixed
// inter-call pacing and quota backoff.
//
// Pacing is a blunt instrument rather than adaptive throttling: the remote
// quota model is opaque to the client, so a conservative static delay between
// successful mutations is all the engine can do ahead of time.
type Executor struct {
	limiter   *rate.Limiter
	policy    BackoffPolicy
	logger    *log.Logger
	onBackoff func(attempt int, wait time.Duration)
}

// NewExecutor creates an executor pacing mutations at requestsPerSecond
// (default 2, i.e. one call every 500ms) with the given backoff policy.
func NewExecutor(requestsPerSecond float64, policy BackoffPolicy, logger *log.Logger) *Executor {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2.0
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Executor{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		policy:  policy.normalized(),
		logger:  logger,
	}
}

// OnBackoff registers a hook invoked before each backoff wait. The engine
// uses it to surface waits as progress updates.
func (x *Executor) OnBackoff(fn func(attempt int, wait time.Duration)) {
	x.onBackoff = fn
}

// Do issues one mutation, classifying remote errors.
//
// A rate-limit signal triggers the policy's fixed backoff wait and one retry
// of the same mutation; if the retry is rate limited again the error wraps
// [shared.ErrQuotaExhausted] so the orchestrator aborts the run with a
// resume-later advisory. Any other remote error returns as-is for per-item
// recording and does not abort the caller's loop.
func (x *Executor) Do(ctx context.Context, mutate func(ctx context.Context) error) error {
	for attempt := 1; ; attempt++ {
		if err := x.limiter.Wait(ctx); err != nil {
			return err
		}

		err := mutate(ctx)
		if err == nil {
			return nil
		}

		if !youtube.IsRateLimited(err) {
			return err
		}

		if attempt >= x.policy.MaxAttempts {
			return fmt.Errorf("%w: %v", shared.ErrQuotaExhausted, err)
		}

		x.logger.Warn("rate limited, backing off", "attempt", attempt, "wait", x.policy.QuotaWait)
		if x.onBackoff != nil {
			x.onBackoff(attempt, x.policy.QuotaWait)
		}
		if err := x.policy.wait(ctx); err != nil {
			return err
		}
	}
}
