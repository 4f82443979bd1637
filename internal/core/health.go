package core

import (
	"fmt"
	"sync"
	"time"

	"github.com/sliink/meter/internal/model"
)

// StatusHolder is anything with a lifecycle status, components and plugins alike
type StatusHolder interface {
	GetStatus() model.ComponentStatus
}

// HealthMonitor tracks the status of the agent's components and plugins
type HealthMonitor struct {
	components map[string]StatusHolder
	details    map[string]any
	mutex      sync.RWMutex
	BaseComponent
}

// NewHealthMonitor creates a new health monitor
func NewHealthMonitor() *HealthMonitor {
	return &HealthMonitor{
		components:    make(map[string]StatusHolder),
		details:       make(map[string]any),
		BaseComponent: NewBaseComponent("health_monitor", "Health Monitor"),
	}
}

// RegisterComponent adds a component to be monitored under id
func (h *HealthMonitor) RegisterComponent(id string, component StatusHolder) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.components[id] = component
}

// SetDetail records an extra value reported with the health status
func (h *HealthMonitor) SetDetail(key string, value any) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.details[key] = value
}

// GetHealthStatus aggregates the status of every monitored component
func (h *HealthMonitor) GetHealthStatus() model.HealthStatus {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	now := time.Now()
	components := make(map[string]model.HealthStatus, len(h.components))
	counts := make(map[model.ComponentStatus]int)
	for id, c := range h.components {
		status := c.GetStatus()
		counts[status]++
		components[id] = model.HealthStatus{
			Status:    status,
			Timestamp: now,
			Message:   fmt.Sprintf("%s status: %s", id, status),
		}
	}

	details := make(map[string]any, len(h.details))
	for k, v := range h.details {
		details[k] = v
	}

	total := len(components)
	result := model.HealthStatus{
		Status:     model.StatusRunning,
		Timestamp:  now,
		Components: components,
		Details:    details,
	}

	switch {
	case counts[model.StatusError] > 0:
		result.Status = model.StatusError
		result.Message = fmt.Sprintf("%d components in ERROR state", counts[model.StatusError])
	case total > 0 && counts[model.StatusStopped] == total:
		result.Status = model.StatusStopped
		result.Message = "agent is stopped"
	case counts[model.StatusRunning] == 0:
		result.Status = model.StatusInitialized
		result.Message = "agent is initializing"
	case counts[model.StatusRunning] < total:
		result.Message = fmt.Sprintf("agent is partially running: %d of %d components running", counts[model.StatusRunning], total)
	default:
		result.Message = "agent is healthy: all components running"
	}
	return result
}
