package utilities

import "sync"

type EventHandler func(interface{})

// EventBus fans published events out to subscribers. Handlers run on their
// own goroutines; Wait blocks until every in-flight handler has returned.
// Once closed, the bus drops every publish.
type EventBus struct {
	handlers map[string][]EventHandler
	mu       sync.RWMutex
	inflight sync.WaitGroup
	closed   bool
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[string][]EventHandler),
	}
}

func (eb *EventBus) Subscribe(event string, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.handlers[event] = append(eb.handlers[event], handler)
}

// Publish is a no-op on a nil bus.
func (eb *EventBus) Publish(event string, data interface{}) {
	if eb == nil {
		return
	}
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	if eb.closed {
		Debug("Event %s dropped, bus is closed", event)
		return
	}
	for _, handler := range eb.handlers[event] {
		eb.inflight.Add(1)
		go func(h EventHandler) {
			defer eb.inflight.Done()
			defer func() {
				if r := recover(); r != nil {
					Error("Event handler for %s panicked: %v", event, r)
				}
			}()
			h(data)
		}(handler)
	}
}

// Wait blocks until all handlers started so far have finished.
func (eb *EventBus) Wait() {
	if eb == nil {
		return
	}
	eb.inflight.Wait()
}

// Close stops new publishes and waits for running handlers.
func (eb *EventBus) Close() {
	if eb == nil {
		return
	}
	eb.mu.Lock()
	eb.closed = true
	eb.mu.Unlock()
	eb.inflight.Wait()
}
