package wallet

import (
	"context"
	"errors"
	"time"

	dErrors "truetrace/pkg/domain-errors"
)

// Default relay endpoints and retry behaviour.
const (
	DefaultMaxRetriesPerEndpoint = 3
	DefaultRetryDelay            = 2 * time.Second
)

// DefaultRelayEndpoints lists the public relays in fallback order.
var DefaultRelayEndpoints = []string{
	"wss://relay.walletconnect.com",
	"wss://relay.walletconnect.org",
}

// RelayPolicy bounds the connect loop.
type RelayPolicy struct {
	Endpoints             []string
	MaxRetriesPerEndpoint int
	RetryDelay            time.Duration
}

// DefaultRelayPolicy returns the public relays with three attempts each and a
// two second delay.
func DefaultRelayPolicy() RelayPolicy {
	return RelayPolicy{
		Endpoints:             append([]string(nil), DefaultRelayEndpoints...),
		MaxRetriesPerEndpoint: DefaultMaxRetriesPerEndpoint,
		RetryDelay:            DefaultRetryDelay,
	}
}

// Validate rejects policies that could never attempt a connection.
func (p RelayPolicy) Validate() error {
	if len(p.Endpoints) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one relay endpoint is required")
	}
	for _, e := range p.Endpoints {
		if e == "" {
			return dErrors.New(dErrors.CodeValidation, "relay endpoint cannot be empty")
		}
	}
	if p.MaxRetriesPerEndpoint < 1 {
		return dErrors.New(dErrors.CodeValidation, "max retries per endpoint must be at least 1")
	}
	if p.RetryDelay < 0 {
		return dErrors.New(dErrors.CodeValidation, "retry delay cannot be negative")
	}
	return nil
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// SleepContext is the default SleepFunc.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// transition is the edge taken after one attempt.
type transition int

const (
	transitionSuccess transition = iota
	transitionRetry
	transitionNextEndpoint
	transitionExhausted
)

func (t transition) String() string {
	switch t {
	case transitionSuccess:
		return "success"
	case transitionRetry:
		return "retry"
	case transitionNextEndpoint:
		return "next_endpoint"
	default:
		return "exhausted"
	}
}

// relayMachine tracks TryingEndpoint(index, attempt). attempt is 1-based.
type relayMachine struct {
	policy  RelayPolicy
	index   int
	attempt int
	lastErr error
}

func newRelayMachine(policy RelayPolicy) *relayMachine {
	return &relayMachine{policy: policy, attempt: 1}
}

func (m *relayMachine) endpoint() string {
	return m.policy.Endpoints[m.index]
}

// advance applies the outcome of the current attempt and moves the machine.
func (m *relayMachine) advance(err error) transition {
	if err == nil {
		return transitionSuccess
	}
	m.lastErr = err
	if m.attempt < m.policy.MaxRetriesPerEndpoint {
		m.attempt++
		return transitionRetry
	}
	if m.index+1 < len(m.policy.Endpoints) {
		m.index++
		m.attempt = 1
		return transitionNextEndpoint
	}
	return transitionExhausted
}

// attemptFunc performs one connect attempt against endpoint.
type attemptFunc func(ctx context.Context, endpoint string, attempt int) (ConnectResult, error)

// relayStep is reported to the observer after each attempt.
type relayStep struct {
	Endpoint string
	Attempt  int
	Err      error
	Next     transition
}

// runRelay drives the machine until an attempt succeeds or every endpoint has
// used its attempts. The delay is only slept between attempts on the same
// endpoint.
func runRelay(ctx context.Context, policy RelayPolicy, sleep SleepFunc, try attemptFunc, observe func(relayStep)) (ConnectResult, string, error) {
	if err := policy.Validate(); err != nil {
		return ConnectResult{}, "", err
	}
	if sleep == nil {
		sleep = SleepContext
	}

	m := newRelayMachine(policy)
	for {
		if err := ctx.Err(); err != nil {
			return ConnectResult{}, "", cancelled(err, m.lastErr)
		}

		endpoint, attempt := m.endpoint(), m.attempt
		res, err := try(ctx, endpoint, attempt)
		next := m.advance(err)
		if observe != nil {
			observe(relayStep{Endpoint: endpoint, Attempt: attempt, Err: err, Next: next})
		}

		switch next {
		case transitionSuccess:
			return res, endpoint, nil
		case transitionRetry:
			if serr := sleep(ctx, policy.RetryDelay); serr != nil {
				return ConnectResult{}, "", cancelled(serr, m.lastErr)
			}
		case transitionNextEndpoint:
			// moving to the next endpoint is immediate
		case transitionExhausted:
			return ConnectResult{}, "", dErrors.Wrap(m.lastErr, dErrors.CodeAllRelaysExhausted, "all relay endpoints failed")
		}
	}
}

func cancelled(ctxErr, lastErr error) error {
	if lastErr != nil {
		ctxErr = errors.Join(ctxErr, lastErr)
	}
	return dErrors.Wrap(ctxErr, dErrors.CodeTimeout, "relay connection cancelled")
}
