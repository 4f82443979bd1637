package core

import (
	"sync"
	"time"

	"github.com/sliink/meter/internal/model"
)

// BufferManager queues measurement buffers per output between two flushes
type BufferManager struct {
	queues       map[string][]*model.MeasurementBuffer
	maxQueueSize int
	status       map[string]model.BufferStatus
	mutex        sync.RWMutex
	BaseComponent
}

// NewBufferManager creates a buffer manager holding at most maxQueueSize
// buffers per output
func NewBufferManager(maxQueueSize int) *BufferManager {
	if maxQueueSize <= 0 {
		maxQueueSize = 1000
	}

	return &BufferManager{
		queues:        make(map[string][]*model.MeasurementBuffer),
		maxQueueSize:  maxQueueSize,
		status:        make(map[string]model.BufferStatus),
		BaseComponent: NewBaseComponent("buffer_manager", "Buffer Manager"),
	}
}

// Stop drops every queued buffer
func (b *BufferManager) Stop() bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.queues = make(map[string][]*model.MeasurementBuffer)
	b.status = make(map[string]model.BufferStatus)

	b.SetStatus(model.StatusStopped)
	return true
}

// Buffer queues a measurement buffer for an output. It returns false when
// the queue is full or the manager is not running.
func (b *BufferManager) Buffer(outputID string, buf *model.MeasurementBuffer) bool {
	if buf == nil || buf.Size() == 0 {
		return true
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.GetStatus() != model.StatusRunning {
		return false
	}

	st, exists := b.status[outputID]
	if !exists {
		st = model.BufferStatus{BufferID: outputID}
	}
	st.LastUpdate = time.Now()

	queue := b.queues[outputID]
	if len(queue) >= b.maxQueueSize {
		st.IsFull = true
		b.status[outputID] = st
		return false
	}

	queue = append(queue, buf)
	b.queues[outputID] = queue

	st.QueueSize = len(queue)
	st.TotalItems += buf.Size()
	st.IsFull = len(queue) >= b.maxQueueSize
	b.status[outputID] = st
	return true
}

// Flush removes and returns up to limit queued buffers for an output, oldest
// first. A non-positive limit drains the whole queue.
func (b *BufferManager) Flush(outputID string, limit int) []*model.MeasurementBuffer {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.GetStatus() != model.StatusRunning {
		return nil
	}

	queue := b.queues[outputID]
	n := len(queue)
	if limit > 0 && limit < n {
		n = limit
	}
	if n == 0 {
		return nil
	}

	result := make([]*model.MeasurementBuffer, n)
	copy(result, queue[:n])
	b.queues[outputID] = queue[n:]

	items := 0
	for _, buf := range result {
		items += buf.Size()
	}

	st := b.status[outputID]
	st.QueueSize = len(b.queues[outputID])
	st.TotalItems -= items
	st.IsFull = false
	st.LastUpdate = time.Now()
	b.status[outputID] = st

	return result
}

// GetBufferStatus returns a copy of the status of every queue
func (b *BufferManager) GetBufferStatus() map[string]model.BufferStatus {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	result := make(map[string]model.BufferStatus, len(b.status))
	for k, v := range b.status {
		result[k] = v
	}
	return result
}
