package model

import "time"

// CoreAPI is the interface a plugin uses to register its metrics and
// pipeline elements while it starts
type CoreAPI interface {
	// CreateMetric registers a new metric
	CreateMetric(def MetricDef) (MetricID, error)

	// AddSource registers a source owned by the calling plugin
	AddSource(name string, source Source) error

	// AddTransform registers a transform owned by the calling plugin
	AddTransform(name string, transform Transform) error

	// AddOutput registers an output owned by the calling plugin
	AddOutput(name string, output Output) error

	// PublishEvent publishes an event to the event bus
	PublishEvent(eventType EventType, sourceID string, data any)
}

// MetricLookup is a read-only view of the metric registry
type MetricLookup interface {
	// ByName returns the metric registered under name
	ByName(name string) (MetricID, MetricDef, bool)

	// ByID returns the metric registered with the given id
	ByID(id MetricID) (MetricDef, bool)
}

// Plugin is the base interface for all plugins
type Plugin interface {
	// Name returns the plugin's unique name
	Name() string

	// Version returns the plugin version
	Version() string

	// Init prepares the plugin with its configuration section
	Init(config map[string]any) error

	// Start registers the plugin's metrics and pipeline elements
	Start(core CoreAPI) error

	// Stop halts plugin operation
	Stop() error

	// GetStatus returns the current plugin status
	GetStatus() ComponentStatus

	// SetStatus updates the plugin status
	SetStatus(status ComponentStatus)
}

// Source produces measurements when polled
type Source interface {
	Poll(buf *MeasurementBuffer, ts time.Time) error
}

// Transform modifies a buffer of measurements in place
type Transform interface {
	Apply(buf *MeasurementBuffer, metrics MetricLookup) error
}

// Output exports measurements
type Output interface {
	Write(buf *MeasurementBuffer, metrics MetricLookup) error
}
