// Package standard registers the plugins shipped with meter.
package standard

import (
	"github.com/sliink/meter/internal/model"
	"github.com/sliink/meter/internal/plugin"
	"github.com/sliink/meter/internal/plugin/inputs"
	"github.com/sliink/meter/internal/plugin/outputs"
	"github.com/sliink/meter/internal/plugin/processors"
)

// RegisterPlugins registers every standard plugin with the factory
func RegisterPlugins(factory *plugin.PluginFactory) {
	factory.Register("counter", func() model.Plugin { return inputs.NewCounterInput() })
	factory.Register("file", func() model.Plugin { return inputs.NewFileInput() })
	factory.Register("scale", func() model.Plugin { return processors.NewScale() })
	factory.Register("stdout", func() model.Plugin { return outputs.NewStdoutOutput() })
	factory.Register("prometheus", func() model.Plugin { return outputs.NewPrometheusOutput() })
	factory.Register("bolt", func() model.Plugin { return outputs.NewBoltOutput() })
	factory.Register("influx", func() model.Plugin { return outputs.NewInfluxOutput() })
}

// NewFactory returns a factory knowing every standard plugin
func NewFactory() *plugin.PluginFactory {
	factory := plugin.NewPluginFactory()
	RegisterPlugins(factory)
	return factory
}
