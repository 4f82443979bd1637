package core

import (
	"sync"
	"time"

	"github.com/sliink/meter/internal/model"
)

// mockPlugin implements model.Plugin for testing
type mockPlugin struct {
	name       string
	status     model.ComponentStatus
	initErr    error
	startErr   error
	stopErr    error
	initConfig map[string]any
	startFunc  func(core model.CoreAPI) error
	stopCalls  int
}

func newMockPlugin(name string) *mockPlugin {
	return &mockPlugin{name: name, status: model.StatusUninitialized}
}

func (m *mockPlugin) Name() string    { return m.name }
func (m *mockPlugin) Version() string { return "0.0.1" }

func (m *mockPlugin) Init(config map[string]any) error {
	m.initConfig = config
	return m.initErr
}

func (m *mockPlugin) Start(core model.CoreAPI) error {
	if m.startErr != nil {
		return m.startErr
	}
	if m.startFunc != nil {
		return m.startFunc(core)
	}
	return nil
}

func (m *mockPlugin) Stop() error {
	m.stopCalls++
	return m.stopErr
}

func (m *mockPlugin) GetStatus() model.ComponentStatus        { return m.status }
func (m *mockPlugin) SetStatus(status model.ComponentStatus) { m.status = status }

// mockSource emits one point of a fixed value per poll
type mockSource struct {
	metric model.MetricID
	value  uint64
	err    error
	mu     sync.Mutex
	polls  int
}

func (s *mockSource) Poll(buf *model.MeasurementBuffer, ts time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls++
	if s.err != nil {
		return s.err
	}
	buf.AddPoint(model.NewPoint(s.metric, ts, s.value))
	return nil
}

func (s *mockSource) Polls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polls
}

// mockTransform runs fn on every buffer
type mockTransform struct {
	fn func(buf *model.MeasurementBuffer) error
}

func (t *mockTransform) Apply(buf *model.MeasurementBuffer, metrics model.MetricLookup) error {
	if t.fn == nil {
		return nil
	}
	return t.fn(buf)
}

// mockOutput records every buffer it receives
type mockOutput struct {
	mu      sync.Mutex
	buffers []*model.MeasurementBuffer
	err     error
}

func (o *mockOutput) Write(buf *model.MeasurementBuffer, metrics model.MetricLookup) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.buffers = append(o.buffers, buf)
	return nil
}

func (o *mockOutput) Received() []*model.MeasurementBuffer {
	o.mu.Lock()
	defer o.mu.Unlock()
	result := make([]*model.MeasurementBuffer, len(o.buffers))
	copy(result, o.buffers)
	return result
}
