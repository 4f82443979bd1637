package model

import "time"

// ComponentStatus represents the current status of a component
type ComponentStatus string

const (
	// StatusUninitialized indicates the component has not been initialized
	StatusUninitialized ComponentStatus = "UNINITIALIZED"
	// StatusInitialized indicates the component has been initialized but not started
	StatusInitialized ComponentStatus = "INITIALIZED"
	// StatusRunning indicates the component is currently running
	StatusRunning ComponentStatus = "RUNNING"
	// StatusStopped indicates the component has been stopped
	StatusStopped ComponentStatus = "STOPPED"
	// StatusError indicates the component is in an error state
	StatusError ComponentStatus = "ERROR"
)

// ElementKind represents the kind of a pipeline element
type ElementKind string

const (
	// SourceKind represents elements that produce measurements
	SourceKind ElementKind = "SOURCE"
	// TransformKind represents elements that modify measurements
	TransformKind ElementKind = "TRANSFORM"
	// OutputKind represents elements that export measurements
	OutputKind ElementKind = "OUTPUT"
)

// Phase represents a step of the agent bootstrap sequence
type Phase string

const (
	// PhaseCreated is the phase of a builder that has not bootstrapped yet
	PhaseCreated Phase = "CREATED"
	// PhasePluginsInitialized follows the initialization of every plugin
	PhasePluginsInitialized Phase = "PLUGINS_INITIALIZED"
	// PhasePluginsStarted follows the start of every plugin
	PhasePluginsStarted Phase = "PLUGINS_STARTED"
	// PhaseOperational means the measurement pipeline is running
	PhaseOperational Phase = "OPERATIONAL"
	// PhaseShutdown means the agent has stopped
	PhaseShutdown Phase = "SHUTDOWN"
)

// EventType represents the type of system event
type EventType string

const (
	// EventComponentStatusChange indicates a component status has changed
	EventComponentStatusChange EventType = "COMPONENT_STATUS_CHANGE"
	// EventPhaseChange indicates the agent moved to another bootstrap phase
	EventPhaseChange EventType = "PHASE_CHANGE"
	// EventPluginInitialized indicates a plugin finished its initialization
	EventPluginInitialized EventType = "PLUGIN_INITIALIZED"
	// EventPluginStarted indicates a plugin finished its start
	EventPluginStarted EventType = "PLUGIN_STARTED"
	// EventMetricRegistered indicates a metric was added to the registry
	EventMetricRegistered EventType = "METRIC_REGISTERED"
	// EventElementRegistered indicates a source, transform or output was added
	EventElementRegistered EventType = "ELEMENT_REGISTERED"
	// EventDataSent indicates measurements have been written by an output
	EventDataSent EventType = "DATA_SENT"
	// EventError indicates an error has occurred
	EventError EventType = "ERROR"
)

// HealthStatus represents the health status of the system or a component
type HealthStatus struct {
	Status     ComponentStatus         `json:"status"`
	Timestamp  time.Time               `json:"timestamp"`
	Message    string                  `json:"message,omitempty"`
	Details    map[string]any          `json:"details,omitempty"`
	Components map[string]HealthStatus `json:"components,omitempty"`
}

// BufferStatus represents the status of a buffer
type BufferStatus struct {
	BufferID   string    `json:"buffer_id"`
	QueueSize  int       `json:"queue_size"`
	TotalItems int       `json:"total_items"`
	IsFull     bool      `json:"is_full"`
	LastUpdate time.Time `json:"last_update"`
}
