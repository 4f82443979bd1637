// Package plugintest provides a model.CoreAPI for plugin tests.
package plugintest

import (
	"fmt"
	"sync"

	"github.com/sliink/meter/internal/core"
	"github.com/sliink/meter/internal/model"
)

// Core records what a plugin registers when it starts. Metrics go to a real
// core.MetricRegistry.
type Core struct {
	Metrics    *core.MetricRegistry
	Sources    map[string]model.Source
	Transforms map[string]model.Transform
	Outputs    map[string]model.Output
	Events     []core.Event
	mutex      sync.Mutex
}

// NewCore creates an empty recording core
func NewCore() *Core {
	return &Core{
		Metrics:    core.NewMetricRegistry(),
		Sources:    make(map[string]model.Source),
		Transforms: make(map[string]model.Transform),
		Outputs:    make(map[string]model.Output),
	}
}

func (c *Core) CreateMetric(def model.MetricDef) (model.MetricID, error) {
	return c.Metrics.Register(def)
}

func (c *Core) AddSource(name string, source model.Source) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if _, exists := c.Sources[name]; exists {
		return fmt.Errorf("%w: source %s", core.ErrElementExists, name)
	}
	c.Sources[name] = source
	return nil
}

func (c *Core) AddTransform(name string, transform model.Transform) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if _, exists := c.Transforms[name]; exists {
		return fmt.Errorf("%w: transform %s", core.ErrElementExists, name)
	}
	c.Transforms[name] = transform
	return nil
}

func (c *Core) AddOutput(name string, output model.Output) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if _, exists := c.Outputs[name]; exists {
		return fmt.Errorf("%w: output %s", core.ErrElementExists, name)
	}
	c.Outputs[name] = output
	return nil
}

func (c *Core) PublishEvent(eventType model.EventType, sourceID string, data any) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.Events = append(c.Events, core.NewEvent(eventType, sourceID, data))
}

// Metric returns the id of a registered metric, or fails with an error
func (c *Core) Metric(name string) (model.MetricID, error) {
	id, _, ok := c.Metrics.ByName(name)
	if !ok {
		return 0, fmt.Errorf("metric %s is not registered", name)
	}
	return id, nil
}
