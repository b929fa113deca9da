package session

import (
	"sync"
	"time"

	"github.com/TechX-demo/easy-pay-cart/internal/notify"
	"github.com/TechX-demo/easy-pay-cart/internal/service/cart"
	"github.com/TechX-demo/easy-pay-cart/internal/service/checkout"
)

// Session is one shopper: a cart, the messages waiting to be shown and at
// most one live checkout.
type Session struct {
	ID            string
	Cart          *cart.Store
	Notifications *notify.Queue
	Notifier      notify.Notifier

	mu        sync.Mutex
	expiresAt time.Time

	checkoutMu sync.Mutex
	checkout   *checkout.Flow
}

// Checkout returns the current flow, or nil.
func (s *Session) Checkout() *checkout.Flow {
	s.checkoutMu.Lock()
	defer s.checkoutMu.Unlock()
	return s.checkout
}

// EnterCheckout replaces the current flow with the result of enter. Calls
// for one session are serialised so only one flow is ever live.
func (s *Session) EnterCheckout(enter func(current *checkout.Flow) (*checkout.Flow, error)) (*checkout.Flow, error) {
	s.checkoutMu.Lock()
	defer s.checkoutMu.Unlock()
	next, err := enter(s.checkout)
	if err != nil {
		return nil, err
	}
	s.checkout = next
	return next, nil
}

func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

func (s *Session) touch(until time.Time) {
	s.mu.Lock()
	s.expiresAt = until
	s.mu.Unlock()
}

func (s *Session) expired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.After(s.expiresAt)
}

func (s *Session) close() {
	s.checkoutMu.Lock()
	f := s.checkout
	s.checkout = nil
	s.checkoutMu.Unlock()
	if f != nil {
		f.Close()
	}
}
