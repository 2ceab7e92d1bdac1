package eventbus

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"dotmini-mcx/core/event"
)

// DefaultBufferSize is used when New is given a non-positive size.
const DefaultBufferSize = 1024

// subscription represents a single event subscription.
type subscription struct {
	id      string
	handler EventHandler
	jobID   string // Empty string means subscribe to all events
}

// channelEventBus is a channel-based implementation of EventBus.
type channelEventBus struct {
	eventChan     chan event.Event
	subscriptions map[string]*subscription
	mu            sync.RWMutex
	closeMu       sync.RWMutex
	closed        atomic.Bool
	wg            sync.WaitGroup
	nextID        atomic.Uint64
	dropped       atomic.Uint64
	logger        *slog.Logger
}

// Option configures the bus.
type Option func(*channelEventBus)

// WithLogger sets the logger used for dropped events and handler panics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *channelEventBus) {
		b.logger = logger
	}
}

// New creates a new EventBus with the specified buffer size.
func New(bufferSize int, opts ...Option) EventBus {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}

	bus := &channelEventBus{
		eventChan:     make(chan event.Event, bufferSize),
		subscriptions: make(map[string]*subscription),
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(bus)
	}

	bus.wg.Add(1)
	go bus.dispatch()

	return bus
}

// Publish publishes an event to all subscribers.
func (b *channelEventBus) Publish(e event.Event) {
	b.closeMu.RLock()
	defer b.closeMu.RUnlock()

	if b.closed.Load() {
		return
	}

	// Non-blocking send with select to avoid blocking if buffer is full
	select {
	case b.eventChan <- e:
	default:
		n := b.dropped.Add(1)
		b.logger.Warn("Event dropped, bus buffer full", "event", e.EventName(), "dropped", n)
	}
}

// Subscribe subscribes to all events.
func (b *channelEventBus) Subscribe(handler EventHandler) string {
	return b.subscribe("", handler)
}

// SubscribeJob subscribes to events from a specific job.
func (b *channelEventBus) SubscribeJob(jobID string, handler EventHandler) string {
	return b.subscribe(jobID, handler)
}

func (b *channelEventBus) subscribe(jobID string, handler EventHandler) string {
	id := b.generateID()

	b.mu.Lock()
	b.subscriptions[id] = &subscription{
		id:      id,
		handler: handler,
		jobID:   jobID,
	}
	b.mu.Unlock()

	return id
}

// Unsubscribe removes a subscription by its ID.
func (b *channelEventBus) Unsubscribe(subscriptionID string) {
	b.mu.Lock()
	delete(b.subscriptions, subscriptionID)
	b.mu.Unlock()
}

// Close shuts down the event bus.
func (b *channelEventBus) Close() {
	b.closeMu.Lock()
	if b.closed.Swap(true) {
		b.closeMu.Unlock()
		return // Already closed
	}
	close(b.eventChan)
	b.closeMu.Unlock()

	b.wg.Wait()
}

// dispatch is the main event dispatch loop.
func (b *channelEventBus) dispatch() {
	defer b.wg.Done()

	for e := range b.eventChan {
		b.deliverEvent(e)
	}
}

// deliverEvent delivers an event to all matching subscribers.
func (b *channelEventBus) deliverEvent(e event.Event) {
	b.mu.RLock()
	// Copy subscriptions to avoid holding lock during handler execution
	subs := make([]*subscription, 0, len(b.subscriptions))
	for _, sub := range b.subscriptions {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	var eventJobID string
	if je, ok := e.(event.JobEvent); ok {
		eventJobID = je.JobID()
	}

	for _, sub := range subs {
		if sub.jobID != "" && sub.jobID != eventJobID {
			continue
		}
		b.invoke(sub, e)
	}
}

func (b *channelEventBus) invoke(sub *subscription, e event.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panicked",
				"event", e.EventName(),
				"subscription", sub.id,
				"panic", fmt.Sprint(r))
		}
	}()
	sub.handler(e)
}

func (b *channelEventBus) generateID() string {
	return fmt.Sprintf("sub-%d", b.nextID.Add(1))
}
