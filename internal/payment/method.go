// Package payment holds the interchangeable payment variants used by
// checkout. Both variants are simulated: no money moves.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TechX-demo/easy-pay-cart/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	MethodCard   = "card"
	MethodAlipay = "alipay"
)

// Method confirms a payment for an amount. A declined payment is returned as
// an error that wraps *Failure.
type Method interface {
	Name() string
	Currency() string
	Confirm(ctx context.Context, req Request) (Confirmation, error)
}

type Request struct {
	Amount   decimal.Decimal
	Currency string
	// OrderID is echoed into provider references where the provider wants one.
	OrderID string
	Billing Billing
}

type Billing struct {
	Shipping domain.ShippingDetails
	// Card is only set for the card variant.
	Card *domain.CardDetails
}

type Confirmation struct {
	Reference   string
	Provider    string
	RedirectURL string
}

// Failure is a payment the provider refused. Reason is shown to the shopper.
type Failure struct {
	Reason string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("payment failed: %s", f.Reason)
}

func fail(format string, args ...any) error {
	return &Failure{Reason: fmt.Sprintf(format, args...)}
}

// Reason extracts the shopper-facing reason from err. Errors that are not a
// Failure yield a generic message.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var f *Failure
	if errors.As(err, &f) {
		return f.Reason
	}
	return "payment could not be completed"
}

// IsFailure reports whether err is a provider decline rather than an
// infrastructure problem.
func IsFailure(err error) bool {
	var f *Failure
	return errors.As(err, &f)
}

// wait simulates provider latency and stops early when ctx is done.
func wait(ctx context.Context, d time.Duration) error {
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

type options struct {
	delay time.Duration
	now   func() time.Time
}

// Option configures a simulated method.
type Option func(*options)

// WithDelay sets the simulated provider latency.
func WithDelay(d time.Duration) Option {
	return func(o *options) { o.delay = d }
}

// WithClock overrides time.Now, used for card expiry checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
