package mqtt

import "time"

// ReconnectPolicy tracks backoff state for the reconnect loop.
//
// The delay starts at the configured initial value, doubles after every
// failed attempt and is capped at the maximum. A success resets both the
// delay and the failure counter.
//
// Thread Safety:
//   - Not safe for concurrent use. It is owned by the reconnect goroutine.
type ReconnectPolicy struct {
	initial     time.Duration
	max         time.Duration
	maxAttempts int

	delay    time.Duration
	failures int
}

// NewReconnectPolicy creates a policy. maxAttempts of 0 means unlimited.
func NewReconnectPolicy(initial, maxDelay time.Duration, maxAttempts int) *ReconnectPolicy {
	return &ReconnectPolicy{
		initial:     initial,
		max:         maxDelay,
		maxAttempts: maxAttempts,
		delay:       initial,
	}
}

// Delay returns the wait before the next connect attempt.
func (p *ReconnectPolicy) Delay() time.Duration {
	return p.delay
}

// Failures returns the number of consecutive failed attempts.
func (p *ReconnectPolicy) Failures() int {
	return p.failures
}

// Failure records a failed attempt and doubles the delay up to the cap.
func (p *ReconnectPolicy) Failure() {
	p.failures++
	p.delay *= 2
	if p.delay > p.max {
		p.delay = p.max
	}
}

// Reset records a successful connect.
func (p *ReconnectPolicy) Reset() {
	p.failures = 0
	p.delay = p.initial
}

// Exhausted reports whether the attempt cap has been reached.
func (p *ReconnectPolicy) Exhausted() bool {
	return p.maxAttempts > 0 && p.failures >= p.maxAttempts
}
