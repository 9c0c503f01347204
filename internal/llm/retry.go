package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// skipRetry lists purposes that already degrade gracefully or must report
// the first failure as is.
var skipRetry = map[string]bool{
	PurposeRewrite: true,
	PurposeCheck:   true,
}

// RetryProvider retries transient failures with exponential backoff and
// ±20% jitter. It never sleeps past the caller's deadline.
type RetryProvider struct {
	inner Provider
	cfg   RetryConfig
}

// WithRetry wraps p. A config with MaxAttempts <= 1 returns p unchanged.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	if cfg.MaxAttempts <= 1 {
		return p
	}
	return &RetryProvider{inner: p, cfg: cfg}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := r.cfg.MaxAttempts
	if skipRetry[PurposeFrom(ctx)] {
		attempts = 1
	}

	malformedSeen := false
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		var resp *Response
		resp, err = r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		retry, malformed := retryable(err)
		if !retry || (malformed && malformedSeen) || attempt == attempts-1 {
			return nil, err
		}
		malformedSeen = malformedSeen || malformed

		wait := r.backoff(attempt, err)
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < wait {
			return nil, err
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, err
}

// retryable reports whether err may succeed on another attempt. Malformed
// output is retried at most once per call.
func retryable(err error) (retry, malformed bool) {
	var (
		timeout *ErrTimeout
		maxTok  *ErrMaxTokensExceeded
		invalid *ErrInvalidResponse
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false, false
	case IsFatal(err), errors.As(err, &timeout), errors.As(err, &maxTok):
		return false, false
	case errors.As(err, &invalid):
		return true, true
	}
	return true, false
}

func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	wait := math.Min(
		float64(r.cfg.InitialWait)*math.Pow(r.cfg.Multiplier, float64(attempt)),
		float64(r.cfg.MaxWait),
	)
	wait *= 1 + 0.2*(2*rand.Float64()-1)
	return time.Duration(math.Max(wait, 0))
}
