package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sliink/meter/internal/model"
)

// Event represents a system event with metadata
type Event struct {
	ID        string
	Type      model.EventType
	SourceID  string
	Data      any
	Timestamp time.Time
}

// NewEvent creates a new event
func NewEvent(eventType model.EventType, sourceID string, data any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SourceID:  sourceID,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// EventCallback is a function that is called when an event occurs
type EventCallback func(Event)

// EventBus handles event publication and subscription
type EventBus struct {
	subscribers map[model.EventType]map[string]EventCallback
	mutex       sync.RWMutex
	BaseComponent
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers:   make(map[model.EventType]map[string]EventCallback),
		BaseComponent: NewBaseComponent("event_bus", "Event Bus"),
	}
}

// Stop halts event bus operation and drops every subscriber
func (b *EventBus) Stop() bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.subscribers = make(map[model.EventType]map[string]EventCallback)

	b.SetStatus(model.StatusStopped)
	return true
}

// Subscribe registers a callback for a specific event type
func (b *EventBus) Subscribe(eventType model.EventType, listenerID string, callback EventCallback) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.subscribers[eventType] == nil {
		b.subscribers[eventType] = make(map[string]EventCallback)
	}

	b.subscribers[eventType][listenerID] = callback
}

// Unsubscribe removes a subscriber from a specific event type
func (b *EventBus) Unsubscribe(eventType model.EventType, listenerID string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.subscribers[eventType] != nil {
		delete(b.subscribers[eventType], listenerID)
	}
}

// Publish delivers an event synchronously to all subscribers of its type
func (b *EventBus) Publish(event Event) {
	if b.GetStatus() != model.StatusRunning {
		return
	}

	b.mutex.RLock()
	callbacks := make([]EventCallback, 0, len(b.subscribers[event.Type]))
	for _, callback := range b.subscribers[event.Type] {
		callbacks = append(callbacks, callback)
	}
	b.mutex.RUnlock()

	for _, callback := range callbacks {
		callback(event)
	}
}
