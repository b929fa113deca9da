// Package notify carries user-visible messages (the storefront's toasts) from
// the cart and checkout core to whatever surface displays them.
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Kind string

const (
	KindAdded            Kind = "cart.added"
	KindIncreased        Kind = "cart.increased"
	KindRemoved          Kind = "cart.removed"
	KindCleared          Kind = "cart.cleared"
	KindPaymentSucceeded Kind = "checkout.succeeded"
	KindPaymentFailed    Kind = "checkout.failed"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Notification struct {
	Kind    Kind      `json:"kind"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type Notifier interface {
	Notify(n Notification)
}

// Func adapts a plain function to Notifier.
type Func func(Notification)

func (f Func) Notify(n Notification) { f(n) }

// Discard drops every notification.
var Discard Notifier = Func(func(Notification) {})

// Multi fans a notification out to every non-nil notifier in order.
func Multi(ns ...Notifier) Notifier {
	out := make([]Notifier, 0, len(ns))
	for _, n := range ns {
		if n != nil {
			out = append(out, n)
		}
	}
	return Func(func(n Notification) {
		for _, target := range out {
			target.Notify(n)
		}
	})
}

// Log writes notifications to a zerolog logger at debug level.
func Log(logger zerolog.Logger) Notifier {
	return Func(func(n Notification) {
		logger.Debug().
			Str("kind", string(n.Kind)).
			Str("level", string(n.Level)).
			Msg(n.Message)
	})
}

// Queue buffers notifications until they are drained. When full, the oldest
// entry is dropped.
type Queue struct {
	mu    sync.Mutex
	items []Notification
	max   int
}

func NewQueue(max int) *Queue {
	if max <= 0 {
		max = 50
	}
	return &Queue{max: max}
}

func (q *Queue) Notify(n Notification) {
	if n.At.IsZero() {
		n.At = time.Now().UTC()
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == q.max {
		q.items = q.items[1:]
	}
	q.items = append(q.items, n)
}

// Drain returns buffered notifications oldest first and empties the queue.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	if out == nil {
		return []Notification{}
	}
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
