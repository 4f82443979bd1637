package expect

import (
	"fmt"

	"github.com/sliink/meter/internal/model"
)

// Metric is an expected metric definition
type Metric struct {
	Name      string
	ValueType model.MeasurementType
	Unit      model.PrefixedUnit
}

func (m Metric) String() string {
	return fmt.Sprintf("%s (%s, %s)", m.Name, m.ValueType, m.Unit)
}

// StartupExpectations accumulates the state an agent must reach during its
// bootstrap. It is filled with the Expect methods, then handed to a builder
// with Setup, after which it can no longer be modified.
type StartupExpectations struct {
	metrics    []Metric
	plugins    []string
	sources    []model.SourceName
	transforms []model.TransformName
	outputs    []model.OutputName
	sealed     bool
}

// New returns an empty set of expectations
func New() *StartupExpectations {
	return &StartupExpectations{}
}

func (s *StartupExpectations) mutable() {
	if s.sealed {
		panic("expect: startup expectations have already been handed to a builder")
	}
}

// ExpectMetric requires a metric with the given name, value type and unit
func (s *StartupExpectations) ExpectMetric(name string, valueType model.MeasurementType, unit model.UnitLike) *StartupExpectations {
	return s.ExpectMetricUntyped(Metric{
		Name:      name,
		ValueType: valueType,
		Unit:      unit.PrefixedUnit(),
	})
}

// ExpectMetricOf requires a metric whose value type is derived from T
func ExpectMetricOf[T model.MeasurementValue](s *StartupExpectations, name string, unit model.UnitLike) *StartupExpectations {
	return s.ExpectMetric(name, model.TypeOf[T](), unit)
}

// ExpectMetricUntyped requires a metric described by m
func (s *StartupExpectations) ExpectMetricUntyped(m Metric) *StartupExpectations {
	s.mutable()
	s.metrics = append(s.metrics, m)
	return s
}

// ExpectPlugin requires a plugin with the given name to be initialized
func (s *StartupExpectations) ExpectPlugin(name string) *StartupExpectations {
	s.mutable()
	s.plugins = append(s.plugins, name)
	return s
}

// ExpectSource requires a source named source, owned by plugin
func (s *StartupExpectations) ExpectSource(plugin, source string) *StartupExpectations {
	s.mutable()
	s.sources = append(s.sources, model.NewSourceName(plugin, source))
	return s
}

// ExpectTransform requires a transform named transform, owned by plugin
func (s *StartupExpectations) ExpectTransform(plugin, transform string) *StartupExpectations {
	s.mutable()
	s.transforms = append(s.transforms, model.NewTransformName(plugin, transform))
	return s
}

// ExpectOutput requires an output named output, owned by plugin
func (s *StartupExpectations) ExpectOutput(plugin, output string) *StartupExpectations {
	s.mutable()
	s.outputs = append(s.outputs, model.NewOutputName(plugin, output))
	return s
}
