package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/TechX-demo/easy-pay-cart/internal/domain"
	"github.com/TechX-demo/easy-pay-cart/internal/notify"
	"github.com/TechX-demo/easy-pay-cart/internal/payment"
	"github.com/TechX-demo/easy-pay-cart/internal/service/cart"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Cart is the part of the cart store a checkout depends on.
type Cart interface {
	Totals() cart.Totals
	IsEmpty() bool
	Snapshot(currency string, at time.Time) domain.CartSnapshot
	Subscribe(fn func(cart.Totals)) func()
	Clear()
}

// Form is everything the shopper enters on the checkout page.
type Form struct {
	Shipping      domain.ShippingDetails `json:"shipping"`
	PaymentMethod string                 `json:"paymentMethod"`
	Card          domain.CardDetails     `json:"card"`
	AcceptTerms   bool                   `json:"acceptTerms"`
}

// missing returns the names of required fields left blank, in form order.
func (f Form) missing() []string {
	var out []string
	required := []struct {
		name, value string
	}{
		{"fullName", f.Shipping.FullName},
		{"email", f.Shipping.Email},
		{"address", f.Shipping.Address},
		{"city", f.Shipping.City},
		{"zipCode", f.Shipping.ZipCode},
		{"country", f.Shipping.Country},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			out = append(out, r.name)
		}
	}
	if !f.AcceptTerms {
		out = append(out, "acceptTerms")
	}
	return out
}

// View is a consistent read of a flow. Card data is reduced to the holder
// and the last four digits.
type View struct {
	ID             string                 `json:"id"`
	Status         domain.CheckoutStatus  `json:"status"`
	Shipping       domain.ShippingDetails `json:"shipping"`
	PaymentMethod  string                 `json:"paymentMethod"`
	CardHolder     string                 `json:"cardHolder,omitempty"`
	CardLast4      string                 `json:"cardLast4,omitempty"`
	AcceptTerms    bool                   `json:"acceptTerms"`
	LastError      string                 `json:"lastError,omitempty"`
	RedirectToCart bool                   `json:"redirectToCart"`
	Total          decimal.Decimal        `json:"total"`
	ItemCount      int                    `json:"itemCount"`
	Snapshot       *domain.CartSnapshot   `json:"snapshot,omitempty"`
	Receipt        *domain.Receipt        `json:"receipt,omitempty"`
}

// Flow is one checkout attempt over a session's cart.
type Flow struct {
	mu          sync.Mutex
	id          string
	cart        Cart
	methods     *payment.Methods
	notifier    notify.Notifier
	logger      *zerolog.Logger
	now         func() time.Time
	status      domain.CheckoutStatus
	form        Form
	lastError   string
	abandoned   bool
	snapshot    *domain.CartSnapshot
	receipt     *domain.Receipt
	unsubscribe func()
}

type Option func(*Flow)

func WithNotifier(n notify.Notifier) Option {
	return func(f *Flow) {
		if n != nil {
			f.notifier = n
		}
	}
}

func WithLogger(logger *zerolog.Logger) Option {
	return func(f *Flow) {
		if logger != nil {
			f.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(f *Flow) { f.now = now }
}

// Begin starts a checkout over c. It fails with ErrEmptyCart when the cart
// has nothing in it.
func Begin(c Cart, methods *payment.Methods, opts ...Option) (*Flow, error) {
	if methods == nil {
		return nil, ErrNoMethods
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}
	nop := zerolog.Nop()
	f := &Flow{
		id:       uuid.NewString(),
		cart:     c,
		methods:  methods,
		notifier: notify.Discard,
		logger:   &nop,
		now:      time.Now,
		status:   domain.CheckoutStatusEditing,
		form:     Form{PaymentMethod: methods.Default},
	}
	for _, opt := range opts {
		opt(f)
	}
	f.unsubscribe = c.Subscribe(f.onCartChange)
	// the cart may have been emptied between the check and the subscription
	if c.IsEmpty() {
		f.unsubscribe()
		return nil, ErrEmptyCart
	}
	return f, nil
}

func (f *Flow) ID() string {
	return f.id
}

func (f *Flow) Status() domain.CheckoutStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Abandoned reports whether the cart was emptied while the form was open.
func (f *Flow) Abandoned() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.abandoned
}

func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewLocked()
}

// Update replaces the form. Only allowed while editing.
func (f *Flow) Update(form Form) (View, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case f.status == domain.CheckoutStatusSucceeded:
		return f.viewLocked(), ErrCompleted
	case f.status == domain.CheckoutStatusSubmitting:
		return f.viewLocked(), ErrNotEditable
	case f.abandoned:
		return f.viewLocked(), ErrEmptyCart
	}
	if form.PaymentMethod == "" {
		form.PaymentMethod = f.form.PaymentMethod
	}
	f.form = form
	return f.viewLocked(), nil
}

// Submit validates the form, captures the cart and confirms the payment.
// A second Submit while a payment is in flight returns the current view
// without calling the provider again.
func (f *Flow) Submit(ctx context.Context) (View, error) {
	f.mu.Lock()
	switch {
	case f.status == domain.CheckoutStatusSubmitting:
		v := f.viewLocked()
		f.mu.Unlock()
		return v, nil
	case f.status == domain.CheckoutStatusSucceeded:
		v := f.viewLocked()
		f.mu.Unlock()
		return v, ErrCompleted
	case f.abandoned || f.cart.IsEmpty():
		f.abandoned = true
		v := f.viewLocked()
		f.mu.Unlock()
		return v, ErrEmptyCart
	}
	if missing := f.form.missing(); len(missing) > 0 {
		v := f.viewLocked()
		f.mu.Unlock()
		return v, &ValidationError{Fields: missing}
	}
	method, err := f.methods.Get(f.form.PaymentMethod)
	if err != nil {
		v := f.viewLocked()
		f.mu.Unlock()
		return v, &ValidationError{Fields: []string{"paymentMethod"}}
	}

	snap := f.cart.Snapshot(method.Currency(), f.now().UTC())
	// the cart is not locked by f.mu and may have been cleared since the
	// emptiness check
	if snap.ItemCount == 0 {
		f.abandoned = true
		v := f.viewLocked()
		f.mu.Unlock()
		return v, ErrEmptyCart
	}
	f.snapshot = &snap
	f.status = domain.CheckoutStatusSubmitting
	f.lastError = ""
	req := payment.Request{
		Amount:   snap.Total,
		Currency: snap.Currency,
		OrderID:  f.id,
		Billing:  payment.Billing{Shipping: f.form.Shipping},
	}
	if method.Name() == payment.MethodCard {
		card := f.form.Card
		req.Billing.Card = &card
	}
	f.mu.Unlock()

	f.logger.Info().
		Str("checkout_id", f.id).
		Str("method", method.Name()).
		Str("amount", snap.Total.StringFixed(2)).
		Str("currency", snap.Currency).
		Msg("checkout: confirming payment")

	conf, err := method.Confirm(ctx, req)
	if err != nil {
		return f.fail(method.Name(), err)
	}
	return f.succeed(conf, snap)
}

func (f *Flow) fail(method string, err error) (View, error) {
	msg := "Payment failed: " + payment.Reason(err)

	f.mu.Lock()
	f.status = domain.CheckoutStatusEditing
	f.lastError = msg
	f.snapshot = nil
	if f.cart.IsEmpty() {
		f.abandoned = true
	}
	v := f.viewLocked()
	f.mu.Unlock()

	f.logger.Warn().Err(err).Str("checkout_id", f.id).Str("method", method).Msg("checkout: payment failed")
	f.notifier.Notify(notify.Notification{
		Kind:    notify.KindPaymentFailed,
		Level:   notify.LevelError,
		Message: msg,
		At:      f.now().UTC(),
	})
	return v, fmt.Errorf("%w: %w", ErrPaymentFailed, err)
}

func (f *Flow) succeed(conf payment.Confirmation, snap domain.CartSnapshot) (View, error) {
	f.mu.Lock()
	f.status = domain.CheckoutStatusSucceeded
	f.receipt = &domain.Receipt{
		Reference:   conf.Reference,
		Provider:    conf.Provider,
		RedirectURL: conf.RedirectURL,
		Snapshot:    snap,
		CompletedAt: f.now().UTC(),
	}
	unsubscribe := f.unsubscribe
	f.unsubscribe = nil
	v := f.viewLocked()
	f.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	f.cart.Clear()

	f.logger.Info().Str("checkout_id", f.id).Str("reference", conf.Reference).Msg("checkout: payment succeeded")
	f.notifier.Notify(notify.Notification{
		Kind:    notify.KindPaymentSucceeded,
		Level:   notify.LevelSuccess,
		Message: "Payment successful! Your order has been placed.",
		At:      f.now().UTC(),
	})
	return v, nil
}

// Close detaches the flow from the cart.
func (f *Flow) Close() {
	f.mu.Lock()
	unsubscribe := f.unsubscribe
	f.unsubscribe = nil
	f.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

func (f *Flow) onCartChange(t cart.Totals) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status == domain.CheckoutStatusEditing && t.ItemCount == 0 {
		f.abandoned = true
	}
}

func (f *Flow) viewLocked() View {
	v := View{
		ID:             f.id,
		Status:         f.status,
		Shipping:       f.form.Shipping,
		PaymentMethod:  f.form.PaymentMethod,
		CardHolder:     f.form.Card.Holder,
		CardLast4:      last4(f.form.Card.Number),
		AcceptTerms:    f.form.AcceptTerms,
		LastError:      f.lastError,
		RedirectToCart: f.abandoned && f.status == domain.CheckoutStatusEditing,
	}
	switch {
	case f.receipt != nil:
		receipt := *f.receipt
		v.Receipt = &receipt
		v.Total = receipt.Snapshot.Total
		v.ItemCount = receipt.Snapshot.ItemCount
	case f.snapshot != nil:
		snap := *f.snapshot
		v.Snapshot = &snap
		v.Total = snap.Total
		v.ItemCount = snap.ItemCount
	default:
		t := f.cart.Totals()
		v.Total = t.Total
		v.ItemCount = t.ItemCount
	}
	return v
}

func last4(number string) string {
	digits := make([]byte, 0, len(number))
	for i := 0; i < len(number); i++ {
		if number[i] >= '0' && number[i] <= '9' {
			digits = append(digits, number[i])
		}
	}
	if len(digits) < 4 {
		return ""
	}
	return string(digits[len(digits)-4:])
}
