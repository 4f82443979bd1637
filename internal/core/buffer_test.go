package core

import (
	"testing"
	"time"

	"github.com/sliink/meter/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestBuffer builds a buffer holding size points
func createTestBuffer(size int) *model.MeasurementBuffer {
	buf := model.NewMeasurementBuffer(model.NewSourceName("test", "source"))
	for i := 0; i < size; i++ {
		buf.AddPoint(model.NewPoint(model.MetricID(0), time.Now(), uint64(i)))
	}
	return buf
}

func TestNewBufferManager(t *testing.T) {
	t.Run("Creates with valid max queue size", func(t *testing.T) {
		manager := NewBufferManager(500)
		assert.Equal(t, 500, manager.maxQueueSize)
		assert.NotNil(t, manager.queues)
		assert.NotNil(t, manager.status)
	})

	t.Run("Creates with default queue size when invalid", func(t *testing.T) {
		assert.Equal(t, 1000, NewBufferManager(0).maxQueueSize)
		assert.Equal(t, 1000, NewBufferManager(-10).maxQueueSize)
	})
}

func TestBufferManagerLifecycle(t *testing.T) {
	manager := NewBufferManager(10)
	manager.Initialize()
	manager.Start()

	t.Run("Stop clears queues and sets correct status", func(t *testing.T) {
		require.True(t, manager.Buffer("out", createTestBuffer(5)))
		assert.NotEmpty(t, manager.queues)

		assert.True(t, manager.Stop())
		assert.Empty(t, manager.queues)
		assert.Empty(t, manager.status)
		assert.Equal(t, model.StatusStopped, manager.GetStatus())
	})

	t.Run("Buffer refuses when not running", func(t *testing.T) {
		assert.False(t, manager.Buffer("out", createTestBuffer(1)))
		assert.Nil(t, manager.Flush("out", 0))
	})
}

func TestBufferManagerBufferAndFlush(t *testing.T) {
	manager := NewBufferManager(3)
	manager.Initialize()
	manager.Start()
	outputID := "test_output"

	t.Run("Buffer ignores nil and empty buffers", func(t *testing.T) {
		assert.True(t, manager.Buffer(outputID, nil))
		assert.True(t, manager.Buffer(outputID, createTestBuffer(0)))
		assert.Empty(t, manager.queues)
	})

	t.Run("Buffer queues until full", func(t *testing.T) {
		assert.True(t, manager.Buffer(outputID, createTestBuffer(1)))
		assert.True(t, manager.Buffer(outputID, createTestBuffer(2)))
		assert.True(t, manager.Buffer(outputID, createTestBuffer(3)))
		assert.False(t, manager.Buffer(outputID, createTestBuffer(4)))

		status := manager.GetBufferStatus()[outputID]
		assert.Equal(t, 3, status.QueueSize)
		assert.Equal(t, 6, status.TotalItems)
		assert.True(t, status.IsFull)
	})

	t.Run("Flush returns oldest buffers first", func(t *testing.T) {
		flushed := manager.Flush(outputID, 2)
		require.Len(t, flushed, 2)
		assert.Equal(t, 1, flushed[0].Size())
		assert.Equal(t, 2, flushed[1].Size())

		status := manager.GetBufferStatus()[outputID]
		assert.Equal(t, 1, status.QueueSize)
		assert.Equal(t, 3, status.TotalItems)
		assert.False(t, status.IsFull)
	})

	t.Run("Flush with non-positive max drains the queue", func(t *testing.T) {
		flushed := manager.Flush(outputID, 0)
		require.Len(t, flushed, 1)
		assert.Nil(t, manager.Flush(outputID, 0))
	})

	t.Run("Flush of unknown output returns nil", func(t *testing.T) {
		assert.Nil(t, manager.Flush("unknown", 10))
	})
}
