package middleware

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/draftspec/draftspec/report"
)

// BackoffStrategy selects the retry delay curve between attempts, the
// middleware-side counterpart of config.BackoffStrategy (kept as a
// distinct string type here so middleware has no dependency on config).
type BackoffStrategy string

const (
	BackoffNone        BackoffStrategy = "none"
	BackoffLinear      BackoffStrategy = "linear"
	BackoffExponential BackoffStrategy = "exponential"
)

// RetryOptions configures the Retry middleware's attempt loop.
type RetryOptions struct {
	MaxRetries int
	Backoff    BackoffStrategy
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Jitter     bool
}

// Retry re-runs a failing spec up to opts.MaxRetries additional times,
// attaching report.RetryInfo to the final result. The attempt loop and
// backoff math are lifted directly from sflowg's
// executeStepWithRetries/computeDelay, narrowed to "only a Failed status
// is retryable" per this engine's single-outcome model (no non-retryable
// codes, no `when` expression — specs don't carry one).
func Retry(maxRetries int) Middleware {
	return RetryWithOptions(RetryOptions{MaxRetries: maxRetries, Backoff: BackoffNone})
}

// RetryWithOptions is Retry with full control over backoff shape.
func RetryWithOptions(opts RetryOptions) Middleware {
	return func(next Handler) Handler {
		return func(c *SpecExecutionContext) report.SpecResult {
			maxAttempts := opts.MaxRetries + 1
			if maxAttempts < 1 {
				maxAttempts = 1
			}

			var result report.SpecResult
			for attempt := 0; attempt < maxAttempts; attempt++ {
				if attempt > 0 {
					delay := computeDelay(opts, attempt)
					select {
					case <-time.After(delay):
					case <-c.Context().Done():
						result.Status = report.StatusFailed
						result.Error = &report.CapturedError{
							Kind:    "cancelled",
							Message: c.Context().Err().Error(),
						}
						return withRetryInfo(result, attempt, opts.MaxRetries)
					}
				}

				result = next(c)
				if result.Status != report.StatusFailed {
					return withRetryInfo(result, attempt+1, opts.MaxRetries)
				}
				logger(c).Debug("spec failed, considering retry",
					"spec", c.Spec.Description, "attempt", attempt+1, "maxAttempts", maxAttempts)
			}
			return withRetryInfo(result, maxAttempts, opts.MaxRetries)
		}
	}
}

func withRetryInfo(result report.SpecResult, attempts, maxRetries int) report.SpecResult {
	if maxRetries > 0 {
		result.Retry = &report.RetryInfo{Attempts: attempts, MaxRetries: maxRetries}
	}
	return result
}

// computeDelay mirrors sflowg's three-case backoff switch.
func computeDelay(opts RetryOptions, attempt int) time.Duration {
	base := opts.BaseDelay
	if base <= 0 {
		base = 100 * time.Millisecond
	}

	var delay time.Duration
	switch opts.Backoff {
	case BackoffLinear:
		delay = time.Duration(attempt) * base
	case BackoffExponential:
		delay = time.Duration(math.Pow(2, float64(attempt-1))) * base
	default:
		delay = base
	}

	if opts.MaxDelay > 0 && delay > opts.MaxDelay {
		delay = opts.MaxDelay
	}
	if opts.Jitter && delay > 0 {
		delay += time.Duration(rand.Int64N(int64(delay)/10 + 1))
	}
	return delay
}
