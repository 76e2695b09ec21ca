// Package events is the process-local publish/subscribe channel that lets
// modules react to each other's outcomes without importing one another.
package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"ngo_erp_backend/platform/logger"

	"github.com/google/uuid"
)

// Event is anything published on the bus. Subscribers are keyed by EventName.
type Event interface {
	EventName() string
	EventID() string
	OccurredAt() time.Time
}

// Meta carries the identity and time of an event. Domain events embed it.
type Meta struct {
	ID string    `json:"eventId"`
	At time.Time `json:"occurredAt"`
}

// NewMeta stamps a fresh event id and the current UTC time.
func NewMeta() Meta {
	return Meta{ID: uuid.NewString(), At: time.Now().UTC()}
}

func (m Meta) EventID() string       { return m.ID }
func (m Meta) OccurredAt() time.Time { return m.At }

type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc lets a plain function subscribe to the bus.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus is what modules depend on. Publish is fire-and-forget, PublishSync
// reports handler errors, and Wait drains in-flight asynchronous handlers
// during shutdown.
type Bus interface {
	Subscribe(eventName string, handler Handler)
	Publish(ctx context.Context, event Event)
	PublishSync(ctx context.Context, event Event) error
	Wait()
}

// InMemoryBus is a process-local Bus. Async handlers run in their own
// goroutines; Wait blocks until they have all returned.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	wg       sync.WaitGroup
	log      *logger.Logger
}

// NewInMemoryBus creates an empty in-memory bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[string][]Handler),
		log:      log,
	}
}

func (b *InMemoryBus) Subscribe(eventName string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

// Publish dispatches the event to every handler asynchronously.
// Handler errors are logged. The request context is not propagated so that
// handlers outlive the request that produced the event.
func (b *InMemoryBus) Publish(ctx context.Context, event Event) {
	handlers := b.handlersFor(event.EventName())
	if len(handlers) == 0 {
		return
	}

	detached := context.WithoutCancel(ctx)
	for _, h := range handlers {
		b.wg.Add(1)
		go func(h Handler) {
			defer b.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					b.logFailure(detached, event, "event handler panicked", "panic", r)
				}
			}()
			if err := h.Handle(detached, event); err != nil {
				b.logFailure(detached, event, "event handler failed", "error", err)
			}
		}(h)
	}
}

// PublishSync dispatches the event and returns the joined handler errors.
func (b *InMemoryBus) PublishSync(ctx context.Context, event Event) error {
	var errs []error
	for _, h := range b.handlersFor(event.EventName()) {
		if err := h.Handle(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *InMemoryBus) Wait() {
	b.wg.Wait()
}

func (b *InMemoryBus) handlersFor(name string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	handlers := make([]Handler, len(b.handlers[name]))
	copy(handlers, b.handlers[name])
	return handlers
}

func (b *InMemoryBus) logFailure(ctx context.Context, event Event, msg string, args ...any) {
	if b.log == nil {
		return
	}
	args = append(args,
		"event", event.EventName(),
		"event_id", event.EventID(),
		"occurred_at", event.OccurredAt(),
	)
	b.log.WithContext(ctx).Error(msg, args...)
}

var _ Bus = (*InMemoryBus)(nil)
