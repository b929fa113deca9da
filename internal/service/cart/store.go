package cart

import (
	"fmt"
	"sync"
	"time"

	"github.com/TechX-demo/easy-pay-cart/internal/domain"
	"github.com/TechX-demo/easy-pay-cart/internal/notify"
	"github.com/shopspring/decimal"
)

// Lookup resolves a product by ID against the current catalog.
type Lookup interface {
	Lookup(id string) (domain.Product, bool)
}

// Totals are the values derived from the line set.
type Totals struct {
	Total     decimal.Decimal
	ItemCount int
	Lines     int
}

// Store is the authoritative in-memory cart of one session. Lines keep only
// the product ID and quantity; name and price come from the catalog on every
// read so the cart follows catalog changes.
type Store struct {
	mu        sync.RWMutex
	catalog   Lookup
	notifier  notify.Notifier
	lines     []line
	index     map[string]int
	listeners map[int]func(Totals)
	nextID    int
}

type line struct {
	productID string
	quantity  int
	// fallback is the product as passed to AddItem, used only when the
	// catalog no longer knows the ID.
	fallback domain.Product
}

func New(catalog Lookup, notifier notify.Notifier) *Store {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Store{
		catalog:   catalog,
		notifier:  notifier,
		index:     make(map[string]int),
		listeners: make(map[int]func(Totals)),
	}
}

// AddItem increments the line for product.ID or appends a new line with
// quantity 1. There is no upper bound.
func (s *Store) AddItem(product domain.Product) {
	s.mu.Lock()
	kind := notify.KindAdded
	msg := fmt.Sprintf("Added %s to your cart", product.Name)
	if i, ok := s.index[product.ID]; ok {
		s.lines[i].quantity++
		s.lines[i].fallback = product
		kind = notify.KindIncreased
		msg = fmt.Sprintf("Added another %s to your cart", product.Name)
	} else {
		s.index[product.ID] = len(s.lines)
		s.lines = append(s.lines, line{productID: product.ID, quantity: 1, fallback: product})
	}
	totals, listeners := s.commitLocked()
	s.mu.Unlock()

	s.emit(kind, notify.LevelSuccess, msg)
	publish(listeners, totals)
}

// RemoveItem deletes the line for productID. Unknown IDs are ignored.
func (s *Store) RemoveItem(productID string) {
	s.mu.Lock()
	i, ok := s.index[productID]
	if !ok {
		s.mu.Unlock()
		return
	}
	name := s.resolveLocked(s.lines[i]).Name
	s.deleteLocked(i)
	totals, listeners := s.commitLocked()
	s.mu.Unlock()

	s.emit(notify.KindRemoved, notify.LevelInfo, fmt.Sprintf("Removed %s from your cart", name))
	publish(listeners, totals)
}

// UpdateQuantity sets an absolute quantity. A quantity of zero or less
// removes the line; unknown IDs are ignored.
func (s *Store) UpdateQuantity(productID string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(productID)
		return
	}
	s.mu.Lock()
	i, ok := s.index[productID]
	if !ok || s.lines[i].quantity == quantity {
		s.mu.Unlock()
		return
	}
	s.lines[i].quantity = quantity
	totals, listeners := s.commitLocked()
	s.mu.Unlock()

	publish(listeners, totals)
}

// Increment raises an existing line by one. Unknown IDs are ignored.
func (s *Store) Increment(productID string) {
	s.mu.Lock()
	i, ok := s.index[productID]
	if !ok {
		s.mu.Unlock()
		return
	}
	s.lines[i].quantity++
	totals, listeners := s.commitLocked()
	s.mu.Unlock()

	publish(listeners, totals)
}

// Decrement lowers a line by one but never below 1. Dropping a line is only
// possible through RemoveItem or UpdateQuantity.
func (s *Store) Decrement(productID string) {
	s.mu.Lock()
	i, ok := s.index[productID]
	if !ok || s.lines[i].quantity <= 1 {
		s.mu.Unlock()
		return
	}
	s.lines[i].quantity--
	totals, listeners := s.commitLocked()
	s.mu.Unlock()

	publish(listeners, totals)
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	s.lines = nil
	s.index = make(map[string]int)
	totals, listeners := s.commitLocked()
	s.mu.Unlock()

	s.emit(notify.KindCleared, notify.LevelInfo, "Your cart has been cleared")
	publish(listeners, totals)
}

func (s *Store) Total() decimal.Decimal {
	return s.Totals().Total
}

func (s *Store) ItemCount() int {
	return s.Totals().ItemCount
}

func (s *Store) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines) == 0
}

// Quantity returns the quantity held for productID, or 0.
func (s *Store) Quantity(productID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := s.index[productID]; ok {
		return s.lines[i].quantity
	}
	return 0
}

func (s *Store) Totals() Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalsLocked()
}

// Lines returns resolved lines in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CartLine, 0, len(s.lines))
	for _, l := range s.lines {
		p := s.resolveLocked(l)
		out = append(out, domain.CartLine{
			ProductID: l.productID,
			Name:      p.Name,
			Image:     p.Image,
			UnitPrice: p.Price,
			Quantity:  l.quantity,
			Subtotal:  p.Price.Mul(decimal.NewFromInt(int64(l.quantity))),
		})
	}
	return out
}

// Snapshot copies the current lines and totals. Later mutations do not
// affect the returned value.
func (s *Store) Snapshot(currency string, at time.Time) domain.CartSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := domain.CartSnapshot{
		Items:      make([]domain.CartSnapshotItem, 0, len(s.lines)),
		Total:      decimal.Zero,
		Currency:   currency,
		CapturedAt: at,
	}
	for _, l := range s.lines {
		p := s.resolveLocked(l)
		subtotal := p.Price.Mul(decimal.NewFromInt(int64(l.quantity)))
		snap.Items = append(snap.Items, domain.CartSnapshotItem{
			ProductID:   l.productID,
			ProductName: p.Name,
			Quantity:    l.quantity,
			UnitPrice:   p.Price,
			Subtotal:    subtotal,
		})
		snap.Total = snap.Total.Add(subtotal)
		snap.ItemCount += l.quantity
	}
	return snap
}

// Subscribe registers fn to receive the totals after every mutation. fn runs
// outside the store lock. The returned func removes the subscription.
func (s *Store) Subscribe(fn func(Totals)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) deleteLocked(i int) {
	delete(s.index, s.lines[i].productID)
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	for j := i; j < len(s.lines); j++ {
		s.index[s.lines[j].productID] = j
	}
}

// commitLocked is the recompute step run at the end of every mutation.
func (s *Store) commitLocked() (Totals, []func(Totals)) {
	totals := s.totalsLocked()
	listeners := make([]func(Totals), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	return totals, listeners
}

func (s *Store) totalsLocked() Totals {
	t := Totals{Total: decimal.Zero, Lines: len(s.lines)}
	for _, l := range s.lines {
		p := s.resolveLocked(l)
		t.Total = t.Total.Add(p.Price.Mul(decimal.NewFromInt(int64(l.quantity))))
		t.ItemCount += l.quantity
	}
	return t
}

func (s *Store) resolveLocked(l line) domain.Product {
	if s.catalog != nil {
		if p, ok := s.catalog.Lookup(l.productID); ok {
			return p
		}
	}
	return l.fallback
}

func (s *Store) emit(kind notify.Kind, level notify.Level, msg string) {
	s.notifier.Notify(notify.Notification{
		Kind:    kind,
		Level:   level,
		Message: msg,
		At:      time.Now().UTC(),
	})
}

func publish(listeners []func(Totals), totals Totals) {
	for _, fn := range listeners {
		fn(totals)
	}
}
