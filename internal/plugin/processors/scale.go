package processors

import (
	"fmt"
	"math"

	"github.com/sliink/meter/internal/model"
	"github.com/sliink/meter/internal/plugin"
)

// Scale multiplies the values of selected metrics by a constant factor
type Scale struct {
	plugin.BasePlugin
	transform string
	metrics   []string
	factor    float64
}

// NewScale creates a new scale processor plugin
func NewScale() *Scale {
	return &Scale{
		BasePlugin: plugin.NewBasePlugin("scale", "1.0.0"),
		factor:     1,
	}
}

// Init reads the factor and the metrics to scale. Without metrics, every
// point is scaled.
func (s *Scale) Init(config map[string]any) error {
	if err := s.BasePlugin.Init(config); err != nil {
		return err
	}

	factor, err := s.ConfigFloat("factor", 1)
	if err != nil {
		return err
	}
	if factor <= 0 || math.IsInf(factor, 0) || math.IsNaN(factor) {
		return fmt.Errorf("factor must be a positive number, got %v", factor)
	}
	s.factor = factor

	metrics, err := s.ConfigStrings("metrics")
	if err != nil {
		return err
	}
	s.metrics = metrics
	s.transform = s.ConfigString("name", "scale")
	return nil
}

// Start registers the transform
func (s *Scale) Start(core model.CoreAPI) error {
	if err := s.BasePlugin.Start(core); err != nil {
		return err
	}
	return core.AddTransform(s.transform, &scaleTransform{metrics: s.metrics, factor: s.factor})
}

type scaleTransform struct {
	metrics []string
	factor  float64
}

// Apply scales the points in place. Integer values are rounded.
func (t *scaleTransform) Apply(buf *model.MeasurementBuffer, metrics model.MetricLookup) error {
	selected := make(map[model.MetricID]struct{}, len(t.metrics))
	for _, name := range t.metrics {
		if id, _, ok := metrics.ByName(name); ok {
			selected[id] = struct{}{}
		}
	}

	for i := range buf.Points {
		p := &buf.Points[i]
		if len(t.metrics) > 0 {
			if _, ok := selected[p.Metric]; !ok {
				continue
			}
		}
		switch v := p.Value.(type) {
		case uint64:
			scaled := math.Round(float64(v) * t.factor)
			if scaled >= math.MaxUint64 {
				return fmt.Errorf("scaled value of metric %d overflows: %v", p.Metric, scaled)
			}
			p.Value = uint64(scaled)
		case float64:
			p.Value = v * t.factor
		}
	}
	return nil
}
