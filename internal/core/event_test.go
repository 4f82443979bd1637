package core

import (
	"testing"
	"time"

	"github.com/sliink/meter/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestNewEvent(t *testing.T) {
	sourceID := "test_source"
	eventType := model.EventMetricRegistered
	data := "test_data"

	event := NewEvent(eventType, sourceID, data)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, eventType, event.Type)
	assert.Equal(t, sourceID, event.SourceID)
	assert.Equal(t, data, event.Data)
	assert.True(t, time.Since(event.Timestamp) < time.Second)

	other := NewEvent(eventType, sourceID, data)
	assert.NotEqual(t, event.ID, other.ID)
}

func TestNewEventBus(t *testing.T) {
	eventBus := NewEventBus()

	assert.NotNil(t, eventBus)
	assert.NotNil(t, eventBus.subscribers)
	assert.Equal(t, "event_bus", eventBus.ID())
	assert.Equal(t, "Event Bus", eventBus.Name())
}

func TestEventBusSubscribeAndPublish(t *testing.T) {
	eventBus := NewEventBus()
	eventBus.Initialize()
	eventBus.Start()

	eventType := model.EventElementRegistered
	var received []Event

	t.Run("Subscribe adds callback to correct eventType", func(t *testing.T) {
		eventBus.Subscribe(eventType, "test_listener", func(event Event) {
			received = append(received, event)
		})

		assert.Len(t, eventBus.subscribers[eventType], 1)
	})

	t.Run("Publish delivers synchronously", func(t *testing.T) {
		eventBus.Publish(NewEvent(eventType, "source", "data"))

		if assert.Len(t, received, 1) {
			assert.Equal(t, eventType, received[0].Type)
			assert.Equal(t, "source", received[0].SourceID)
			assert.Equal(t, "data", received[0].Data)
		}
	})

	t.Run("Other event types are not delivered", func(t *testing.T) {
		eventBus.Publish(NewEvent(model.EventError, "source", "data"))
		assert.Len(t, received, 1)
	})

	t.Run("Unsubscribe removes callback", func(t *testing.T) {
		eventBus.Unsubscribe(eventType, "test_listener")
		assert.Empty(t, eventBus.subscribers[eventType])
	})

	t.Run("Publish when stopped does nothing", func(t *testing.T) {
		eventBus.Stop()

		var called bool
		eventBus.subscribers[eventType] = map[string]EventCallback{
			"test": func(event Event) { called = true },
		}

		eventBus.Publish(NewEvent(eventType, "source", "data"))
		assert.False(t, called)
	})
}

func TestMultipleSubscribers(t *testing.T) {
	eventBus := NewEventBus()
	eventBus.Initialize()
	eventBus.Start()

	eventType := model.EventPhaseChange
	var called1, called2 bool

	eventBus.Subscribe(eventType, "listener1", func(e Event) { called1 = true })
	eventBus.Subscribe(eventType, "listener2", func(e Event) { called2 = true })

	eventBus.Publish(NewEvent(eventType, "agent", model.PhaseOperational))

	assert.True(t, called1)
	assert.True(t, called2)
}
