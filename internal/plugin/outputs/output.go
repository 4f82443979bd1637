package outputs

import (
	"fmt"

	"github.com/sliink/meter/internal/model"
)

// describe resolves the definition of the metric of a point. Unknown
// metrics are named after their id.
func describe(point model.MeasurementPoint, metrics model.MetricLookup) model.MetricDef {
	if def, ok := metrics.ByID(point.Metric); ok {
		return def
	}
	return model.MetricDef{
		Name:      fmt.Sprintf("metric_%d", point.Metric),
		ValueType: point.ValueType(),
	}
}
