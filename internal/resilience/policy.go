// Package resilience wraps query execution with retry, per-attempt
// timeout, and circuit-breaker policies. Policies are explicit,
// constructor-injected state objects; nothing here is process-global.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sony/gobreaker"
)

// Options configures a Policy.
type Options struct {
	// MaxRetries caps retry attempts after the first try. Zero disables retry.
	MaxRetries uint64

	// InitialInterval seeds the exponential backoff between attempts.
	InitialInterval time.Duration

	// AttemptTimeout bounds each individual attempt. Zero disables the bound.
	AttemptTimeout time.Duration

	// BreakerThreshold is the number of consecutive failures that opens
	// the breaker. Zero disables the breaker.
	BreakerThreshold uint32

	// BreakerCooldown is how long the breaker stays open before probing.
	BreakerCooldown time.Duration
}

// DefaultOptions returns the settings used when a config does not override
// them: 3 retries, 100ms initial backoff, 5s attempt timeout, breaker
// opening after 5 consecutive failures with a 30s cooldown.
func DefaultOptions() Options {
	return Options{
		MaxRetries:       3,
		InitialInterval:  100 * time.Millisecond,
		AttemptTimeout:   5 * time.Second,
		BreakerThreshold: 5,
		BreakerCooldown:  30 * time.Second,
	}
}

// Policy composes breaker(retry(timeout(op))) around an operation.
type Policy struct {
	opts    Options
	breaker *gobreaker.CircuitBreaker
}

// NewPolicy creates a policy from options.
func NewPolicy(opts Options) *Policy {
	p := &Policy{opts: opts}
	if opts.BreakerThreshold > 0 {
		p.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "query",
			Timeout: opts.BreakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= opts.BreakerThreshold
			},
		})
	}
	return p
}

// ErrCircuitOpen reports that the breaker rejected the call without
// attempting the operation.
var ErrCircuitOpen = errors.New("resilience: circuit open")

// Execute runs op under the policy. The context bounds the whole call;
// AttemptTimeout additionally bounds each attempt.
func (p *Policy) Execute(ctx context.Context, op func(context.Context) error) error {
	run := func() error {
		return p.retry(ctx, op)
	}

	if p.breaker == nil {
		return run()
	}

	_, err := p.breaker.Execute(func() (any, error) {
		return nil, run()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	return err
}

func (p *Policy) retry(ctx context.Context, op func(context.Context) error) error {
	attempt := func() error {
		attemptCtx := ctx
		if p.opts.AttemptTimeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, p.opts.AttemptTimeout)
			defer cancel()
		}
		return op(attemptCtx)
	}

	if p.opts.MaxRetries == 0 {
		return attempt()
	}

	b := backoff.NewExponentialBackOff()
	if p.opts.InitialInterval > 0 {
		b.InitialInterval = p.opts.InitialInterval
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, p.opts.MaxRetries), ctx)
	return backoff.Retry(attempt, policy)
}
