package engine

import (
	"log"
	"sync"
	"time"
)

type EventType int

type SubscriberID int

type Event struct {
	Type      EventType
	Timestamp time.Time
	Payload   any
}

type handler struct {
	id    SubscriberID
	fn    func(Event)
	types map[EventType]bool // nil matches every type
}

func (h handler) wants(t EventType) bool {
	return h.types == nil || h.types[t]
}

// EventBus delivers events synchronously, in subscription order, on the
// emitting goroutine. A panicking handler is logged and skipped.
type EventBus struct {
	mu       sync.RWMutex
	handlers []handler
	lastID   SubscriberID
}

func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers fn for every event type.
func (eb *EventBus) Subscribe(fn func(Event)) SubscriberID {
	return eb.register(fn, nil)
}

// SubscribeTypes registers fn for the listed event types only.
func (eb *EventBus) SubscribeTypes(fn func(Event), types ...EventType) SubscriberID {
	set := make(map[EventType]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return eb.register(fn, set)
}

func (eb *EventBus) register(fn func(Event), types map[EventType]bool) SubscriberID {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.lastID++
	eb.handlers = append(eb.handlers, handler{id: eb.lastID, fn: fn, types: types})
	return eb.lastID
}

func (eb *EventBus) Unsubscribe(id SubscriberID) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	for i, h := range eb.handlers {
		if h.id == id {
			eb.handlers = append(eb.handlers[:i:i], eb.handlers[i+1:]...)
			return
		}
	}
}

// Emit delivers evt to every matching handler. A zero timestamp is set to now.
func (eb *EventBus) Emit(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	eb.mu.RLock()
	hs := append([]handler(nil), eb.handlers...)
	eb.mu.RUnlock()

	for _, h := range hs {
		if h.wants(evt.Type) {
			deliver(h, evt)
		}
	}
}

func deliver(h handler, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("engine: event %d handler %d panic: %v", evt.Type, h.id, r)
		}
	}()
	h.fn(evt)
}
