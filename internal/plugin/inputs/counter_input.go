package inputs

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sliink/meter/internal/model"
	"github.com/sliink/meter/internal/plugin"
)

// CounterInput counts the polls of its source. It is mostly useful to
// check that an agent is wired correctly.
type CounterInput struct {
	plugin.BasePlugin
	metric    string
	source    string
	unit      model.PrefixedUnit
	increment uint64
}

// NewCounterInput creates a new counter input plugin
func NewCounterInput() *CounterInput {
	return &CounterInput{
		BasePlugin: plugin.NewBasePlugin("counter", "1.0.0"),
	}
}

// Init reads the metric and source names, the unit and the increment
func (c *CounterInput) Init(config map[string]any) error {
	if err := c.BasePlugin.Init(config); err != nil {
		return err
	}

	c.metric = c.ConfigString("metric", "coffee_counter")
	c.source = c.ConfigString("source", "coffee")

	unit, err := c.ConfigUnit("unit", model.Unity)
	if err != nil {
		return err
	}
	c.unit = unit

	increment, err := c.ConfigFloat("increment", 1)
	if err != nil {
		return err
	}
	if increment < 1 || increment != float64(uint64(increment)) {
		return fmt.Errorf("increment must be a positive integer, got %v", increment)
	}
	c.increment = uint64(increment)
	return nil
}

// Start registers the counter metric and its source
func (c *CounterInput) Start(core model.CoreAPI) error {
	if err := c.BasePlugin.Start(core); err != nil {
		return err
	}

	id, err := core.CreateMetric(model.NewMetricDef[uint64](c.metric, c.unit, "number of polls"))
	if err != nil {
		return err
	}
	return core.AddSource(c.source, &counterSource{metric: id, increment: c.increment})
}

type counterSource struct {
	metric    model.MetricID
	increment uint64
	count     atomic.Uint64
}

func (s *counterSource) Poll(buf *model.MeasurementBuffer, ts time.Time) error {
	buf.AddPoint(model.NewPoint(s.metric, ts, s.count.Add(s.increment)))
	return nil
}
