package llm

import (
	"context"
	"errors"
	"time"
)

// Observer receives one callback per completed request.
// internal/metrics implements it with Prometheus collectors.
type Observer interface {
	ObserveLLMRequest(purpose, model string, elapsed time.Duration, usage Usage, errKind string)
}

type observedProvider struct {
	inner Provider
	obs   Observer
}

// WithObserver reports every request made through p to obs.
func WithObserver(p Provider, obs Observer) Provider {
	if obs == nil {
		return p
	}
	return &observedProvider{inner: p, obs: obs}
}

func (o *observedProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := o.inner.Generate(ctx, req)

	var usage Usage
	model := o.inner.ModelID()
	if resp != nil {
		usage = resp.Usage
	}
	o.obs.ObserveLLMRequest(PurposeFrom(ctx), model, time.Since(start), usage, ErrorKind(err))
	return resp, err
}

func (o *observedProvider) ModelID() string {
	return o.inner.ModelID()
}

// ErrorKind maps an error to a short stable label for logs and metrics.
// A nil error is "ok".
func ErrorKind(err error) string {
	var (
		quota   *ErrQuotaExceeded
		auth    *ErrAuth
		timeout *ErrTimeout
		rl      *ErrRateLimit
		inv     *ErrInvalidResponse
		maxTok  *ErrMaxTokensExceeded
		unavail *ErrProviderUnavailable
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &quota):
		return "quota"
	case errors.As(err, &auth):
		return "auth"
	case errors.As(err, &timeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &rl):
		return "rate_limit"
	case errors.As(err, &inv):
		return "malformed"
	case errors.As(err, &maxTok):
		return "max_tokens"
	case errors.As(err, &unavail):
		return "unavailable"
	}
	return "other"
}
