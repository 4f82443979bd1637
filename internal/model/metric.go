package model

import "fmt"

// MetricID is the identifier assigned by the metric registry
type MetricID uint64

// MetricDef is the definition of a metric
type MetricDef struct {
	Name        string
	Description string
	Unit        PrefixedUnit
	ValueType   MeasurementType
}

func (d MetricDef) String() string {
	return fmt.Sprintf("{name: %s, unit: %s, type: %s}", d.Name, d.Unit, d.ValueType)
}

// NewMetricDef creates a metric definition whose value type is derived from T
func NewMetricDef[T MeasurementValue](name string, unit UnitLike, description string) MetricDef {
	return MetricDef{
		Name:        name,
		Description: description,
		Unit:        unit.PrefixedUnit(),
		ValueType:   TypeOf[T](),
	}
}
