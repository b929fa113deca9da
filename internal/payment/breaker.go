package payment

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

type BreakerSettings struct {
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{ConsecutiveFailures: 5, OpenTimeout: 30 * time.Second}
}

// Breaker is a circuit breaker shared by every Method it wraps, so that a
// method rebuilt per checkout keeps the state of the provider behind it.
type Breaker struct {
	cb *gobreaker.CircuitBreaker[Confirmation]
}

// NewBreaker builds a breaker named after the provider. Declines are a normal
// provider answer and do not count against it; only infrastructure errors do.
func NewBreaker(name string, s BreakerSettings, logger *zerolog.Logger) *Breaker {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = DefaultBreakerSettings().ConsecutiveFailures
	}
	cb := gobreaker.NewCircuitBreaker[Confirmation](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || IsFailure(err) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("method", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("payment breaker state change")
		},
	})
	return &Breaker{cb: cb}
}

func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Wrap guards next with b. While open, Confirm fails fast with a Failure.
func (b *Breaker) Wrap(next Method) Method {
	return &breakerMethod{next: next, cb: b.cb}
}

// WithBreaker guards next with a breaker of its own.
func WithBreaker(next Method, s BreakerSettings, logger *zerolog.Logger) Method {
	return NewBreaker(next.Name(), s, logger).Wrap(next)
}

type breakerMethod struct {
	next Method
	cb   *gobreaker.CircuitBreaker[Confirmation]
}

func (b *breakerMethod) Name() string     { return b.next.Name() }
func (b *breakerMethod) Currency() string { return b.next.Currency() }

func (b *breakerMethod) Confirm(ctx context.Context, req Request) (Confirmation, error) {
	conf, err := b.cb.Execute(func() (Confirmation, error) {
		return b.next.Confirm(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Confirmation{}, fail("payment provider temporarily unavailable")
	}
	return conf, err
}
