package stream

import (
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryPolicy yields the delay before each reconnect attempt.
// Reset is called whenever a connection opens successfully.
type RetryPolicy interface {
	Next() time.Duration
	Reset()
}

// backoffPolicy adapts a backoff.BackOff to RetryPolicy.
type backoffPolicy struct {
	b backoff.BackOff
}

func (p *backoffPolicy) Next() time.Duration { return p.b.NextBackOff() }
func (p *backoffPolicy) Reset()              { p.b.Reset() }

// FixedPolicy waits the same interval before every attempt.
func FixedPolicy(interval time.Duration) RetryPolicy {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &backoffPolicy{b: backoff.NewConstantBackOff(interval)}
}

// ExponentialPolicy starts at initial, doubles per attempt and caps at max.
// No jitter is applied so the schedule is deterministic.
func ExponentialPolicy(initial, max time.Duration) RetryPolicy {
	if initial <= 0 {
		initial = time.Second
	}
	if max < initial {
		max = initial
	}
	b := &backoff.ExponentialBackOff{
		InitialInterval:     initial,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         max,
	}
	b.Reset()
	return &backoffPolicy{b: b}
}
