package outputs

import (
	"regexp"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sliink/meter/internal/model"
	"github.com/sliink/meter/internal/plugin"
)

var invalidMetricChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// PrometheusOutput keeps the last value of every metric in gauges, to be
// scraped from the agent's HTTP API
type PrometheusOutput struct {
	plugin.BasePlugin
	output    string
	namespace string
	registry  *prometheus.Registry
	gauges    map[model.MetricID]*prometheus.GaugeVec
	mutex     sync.Mutex
}

// NewPrometheusOutput creates a new prometheus output plugin
func NewPrometheusOutput() *PrometheusOutput {
	return &PrometheusOutput{
		BasePlugin: plugin.NewBasePlugin("prometheus", "1.0.0"),
		registry:   prometheus.NewRegistry(),
		gauges:     make(map[model.MetricID]*prometheus.GaugeVec),
	}
}

// Init reads the metric namespace
func (p *PrometheusOutput) Init(config map[string]any) error {
	if err := p.BasePlugin.Init(config); err != nil {
		return err
	}
	p.namespace = p.ConfigString("namespace", "meter")
	p.output = p.ConfigString("name", "exporter")
	return nil
}

// Start registers the output
func (p *PrometheusOutput) Start(core model.CoreAPI) error {
	if err := p.BasePlugin.Start(core); err != nil {
		return err
	}
	return core.AddOutput(p.output, p)
}

// Registry returns the registry holding the gauges
func (p *PrometheusOutput) Registry() *prometheus.Registry {
	return p.registry
}

// Write sets the gauge of every point
func (p *PrometheusOutput) Write(buf *model.MeasurementBuffer, metrics model.MetricLookup) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	for _, point := range buf.Points {
		gauge, err := p.gauge(point, metrics)
		if err != nil {
			return err
		}
		gauge.WithLabelValues(point.Resource, buf.Source.String()).Set(point.Float())
	}
	return nil
}

func (p *PrometheusOutput) gauge(point model.MeasurementPoint, metrics model.MetricLookup) (*prometheus.GaugeVec, error) {
	if g, ok := p.gauges[point.Metric]; ok {
		return g, nil
	}

	def := describe(point, metrics)
	help := def.Description
	if help == "" {
		help = def.Name
	}
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   p.namespace,
		Name:        PrometheusName(def.Name),
		Help:        help,
		ConstLabels: prometheus.Labels{"unit": def.Unit.String()},
	}, []string{"resource", "source"})
	if err := p.registry.Register(g); err != nil {
		return nil, err
	}
	p.gauges[point.Metric] = g
	return g, nil
}

// PrometheusName turns a metric name into a valid prometheus metric name
func PrometheusName(name string) string {
	name = invalidMetricChars.ReplaceAllString(name, "_")
	if name != "" && name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}
