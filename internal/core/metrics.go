package core

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sliink/meter/internal/model"
)

// ErrMetricExists is returned when a metric name is registered twice
var ErrMetricExists = errors.New("metric already registered")

// MetricRegistry stores the definitions of every metric known to the agent
type MetricRegistry struct {
	metrics []model.MetricDef
	byName  map[string]model.MetricID
	mutex   sync.RWMutex
	BaseComponent
}

// NewMetricRegistry creates an empty metric registry
func NewMetricRegistry() *MetricRegistry {
	return &MetricRegistry{
		metrics:       make([]model.MetricDef, 0),
		byName:        make(map[string]model.MetricID),
		BaseComponent: NewBaseComponent("metric_registry", "Metric Registry"),
	}
}

// Register adds a metric definition and returns its id
func (r *MetricRegistry) Register(def model.MetricDef) (model.MetricID, error) {
	if def.Name == "" {
		return 0, fmt.Errorf("metric name cannot be empty")
	}
	if !def.ValueType.Valid() {
		return 0, fmt.Errorf("metric %s: unsupported value type %q", def.Name, def.ValueType)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.byName[def.Name]; exists {
		return 0, fmt.Errorf("%w: %s", ErrMetricExists, def.Name)
	}

	id := model.MetricID(len(r.metrics))
	r.metrics = append(r.metrics, def)
	r.byName[def.Name] = id
	return id, nil
}

// ByName returns the metric registered under name
func (r *MetricRegistry) ByName(name string) (model.MetricID, model.MetricDef, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	id, exists := r.byName[name]
	if !exists {
		return 0, model.MetricDef{}, false
	}
	return id, r.metrics[id], true
}

// ByID returns the metric registered with the given id
func (r *MetricRegistry) ByID(id model.MetricID) (model.MetricDef, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if int(id) >= len(r.metrics) {
		return model.MetricDef{}, false
	}
	return r.metrics[id], true
}

// All returns every registered metric, indexed by id
func (r *MetricRegistry) All() []model.MetricDef {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]model.MetricDef, len(r.metrics))
	copy(result, r.metrics)
	return result
}

// Len returns the number of registered metrics
func (r *MetricRegistry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.metrics)
}
