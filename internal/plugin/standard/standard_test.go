package standard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/sliink/meter/internal/core"
	"github.com/sliink/meter/internal/expect"
	"github.com/sliink/meter/internal/model"
	"github.com/sliink/meter/internal/plugin/outputs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFactory(t *testing.T) {
	assert.Equal(t, []string{"bolt", "counter", "file", "influx", "prometheus", "scale", "stdout"}, NewFactory().Names())
}

const agentConfig = `
pipeline:
  poll_interval: 5ms
  flush_interval: 5ms
plugins:
  counter:
    config:
      increment: 10
  scale:
    config:
      factor: 0.5
      metrics: [coffee_counter]
  bolt:
    config:
      path: %s
  influx:
    enabled: false
`

func TestStandardAgent(t *testing.T) {
	config := core.NewConfigManager()
	require.NoError(t, config.LoadBytes([]byte(fmt.Sprintf(agentConfig, filepath.Join(t.TempDir(), "meter.db")))))

	plugins, err := NewFactory().CreatePlugins(config)
	require.NoError(t, err)

	startup := expect.New().
		ExpectPlugin("counter").
		ExpectPlugin("bolt").
		ExpectMetric("coffee_counter", model.U64, model.Unity).
		ExpectSource("counter", "coffee").
		ExpectTransform("scale", "scale").
		ExpectOutput("bolt", "store")

	agent, err := core.NewBuilder(plugins...).
		WithConfig(config).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		WithExpectations(t, startup).
		BuildAndStart(context.Background())
	require.NoError(t, err)

	p, ok := agent.Plugins().GetPlugin("bolt")
	require.True(t, ok)
	store := p.(*outputs.BoltOutput)

	assert.Eventually(t, func() bool {
		points, err := store.ReadPoints(1)
		return err == nil && len(points) == 1
	}, 2*time.Second, 10*time.Millisecond)

	agent.Shutdown()
	require.NoError(t, agent.WaitForShutdown(2*time.Second))

	reopened := outputs.NewBoltOutput()
	require.NoError(t, reopened.Init(config.PluginConfig("bolt")))
	require.NoError(t, reopened.Start(nopCore{}))
	defer reopened.Stop()

	points, err := reopened.ReadPoints(0)
	require.NoError(t, err)
	require.NotEmpty(t, points)
	assert.Equal(t, "coffee_counter", points[0].Metric)
	assert.Equal(t, "counter/coffee", points[0].Source)
	assert.Equal(t, 5.0, points[0].Value)
}

type nopCore struct{}

func (nopCore) CreateMetric(model.MetricDef) (model.MetricID, error) { return 0, nil }
func (nopCore) AddSource(string, model.Source) error                 { return nil }
func (nopCore) AddTransform(string, model.Transform) error           { return nil }
func (nopCore) AddOutput(string, model.Output) error                 { return nil }
func (nopCore) PublishEvent(model.EventType, string, any)            {}
