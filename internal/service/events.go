package service

import (
	"sync"
	"time"
)

// EventType defines the type of event
type EventType string

const (
	EventFrame           EventType = "frame"
	EventNavigate        EventType = "navigate"
	EventSessionClosed   EventType = "session_closed"
	EventCatalogReloaded EventType = "catalog_reloaded"
)

// Event represents something a viewer should learn about.
// Events with an empty Session concern every viewer.
type Event struct {
	Type    EventType   `json:"type"`
	Session string      `json:"session,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

// NavigatePayload carries the route a click resolved to
type NavigatePayload struct {
	Node  string `json:"node"`
	Route string `json:"route"`
}

// CatalogPayload identifies the catalog new sessions are built from
type CatalogPayload struct {
	Source      string `json:"source"`
	Fingerprint string `json:"fingerprint"`
	Nodes       int    `json:"nodes"`
	Edges       int    `json:"edges"`
}

// EventBus allows publishing and subscribing to events
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = append(eb.subscribers, ch)
}

// Unsubscribe removes ch. The channel is not closed.
func (eb *EventBus) Unsubscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	for i, sub := range eb.subscribers {
		if sub == ch {
			eb.subscribers = append(eb.subscribers[:i], eb.subscribers[i+1:]...)
			return
		}
	}
}

// controlWait bounds how long Publish waits on a full subscriber for an
// event that is not a frame
const controlWait = time.Second

// Droppable reports whether a subscriber may miss the event.
// Only frames are droppable; the next frame replaces a lost one.
func (e Event) Droppable() bool {
	return e.Type == EventFrame
}

// Publish sends an event to all subscribers. Frames never block: a
// subscriber whose buffer is full misses them. Other events wait up to
// controlWait for room.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, ch := range eb.subscribers {
		if event.Droppable() {
			select {
			case ch <- event:
			default:
			}
			continue
		}

		timer := time.NewTimer(controlWait)
		select {
		case ch <- event:
		case <-timer.C:
		}
		timer.Stop()
	}
}
