package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"pkt.systems/pslog"
)

// Sentinel errors for the event bus.
var (
	// ErrInvalidTopic is returned when a topic is empty or malformed.
	ErrInvalidTopic = errors.New("invalid topic")

	// ErrNilHandler is returned when a nil handler is provided.
	ErrNilHandler = errors.New("handler cannot be nil")
)

// HandlerFunc handles a delivered event.
type HandlerFunc func(ctx context.Context, ev Event)

// Stats reports bus counters.
type Stats struct {
	Published uint64
	Delivered uint64
	Panics    uint64
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithLogger sets the logger used to report handler panics.
func WithLogger(logger pslog.Logger) BusOption {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

type subscription struct {
	id      uint64
	pattern Topic
	fn      HandlerFunc
}

// Bus is a synchronous topic bus. It is safe for concurrent use; handlers
// run on the publishing goroutine without the bus lock held.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
	logger pslog.Logger

	published atomic.Uint64
	delivered atomic.Uint64
	panics    atomic.Uint64
}

// NewBus creates an empty bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = pslog.Ctx(context.Background())
	}
	return b
}

// Subscribe registers fn for topics matching pattern. The returned function
// removes the subscription and is safe to call more than once.
func (b *Bus) Subscribe(pattern Topic, fn HandlerFunc) (func(), error) {
	if !pattern.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTopic, pattern)
	}
	if fn == nil {
		return nil, ErrNilHandler
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, pattern: pattern, fn: fn})
	b.mu.Unlock()

	return func() { b.unsubscribe(id) }, nil
}

func (b *Bus) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers ev to every matching subscriber in subscription order.
func (b *Bus) Publish(ctx context.Context, ev Event) error {
	if b == nil {
		return nil
	}
	if !ev.Topic.IsValid() || ev.Topic.IsWildcard() {
		return fmt.Errorf("%w: %q", ErrInvalidTopic, ev.Topic)
	}
	b.published.Add(1)

	b.mu.RLock()
	matched := make([]subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if ev.Topic.Matches(s.pattern) {
			matched = append(matched, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range matched {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.deliver(ctx, s, ev)
	}
	return nil
}

func (b *Bus) deliver(ctx context.Context, s subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
			b.logger.Error("event handler panicked", "topic", ev.Topic.String(), "pattern", s.pattern.String(), "panic", fmt.Sprint(r))
		}
	}()
	s.fn(ctx, ev)
	b.delivered.Add(1)
}

// SubscriberCount returns the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Stats returns the bus counters.
func (b *Bus) Stats() Stats {
	return Stats{
		Published: b.published.Load(),
		Delivered: b.delivered.Load(),
		Panics:    b.panics.Load(),
	}
}
