package checkout

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyCart is returned when checkout is entered or submitted without
	// anything in the cart. Callers send the shopper back to the cart.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNotEditable is returned for edits while a payment is in flight.
	ErrNotEditable = errors.New("checkout is being submitted")
	// ErrCompleted is returned for any change after a successful payment.
	ErrCompleted = errors.New("checkout already completed")
	// ErrPaymentFailed wraps the provider error of a failed submission.
	ErrPaymentFailed = errors.New("payment failed")
	// ErrNoMethods is returned by Begin when no payment methods are given.
	ErrNoMethods = errors.New("no payment methods")
)

// ValidationError lists the form fields that block submission.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}
