package processors

import (
	"testing"
	"time"

	"github.com/sliink/meter/internal/model"
	"github.com/sliink/meter/internal/plugin/plugintest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScale(t *testing.T) {
	t.Run("Creates Scale with correct properties", func(t *testing.T) {
		scale := NewScale()

		assert.Equal(t, "scale", scale.Name())
		assert.Equal(t, model.StatusUninitialized, scale.GetStatus())
		assert.Equal(t, 1.0, scale.factor)
	})
}

func TestScaleInit(t *testing.T) {
	t.Run("Init applies configuration", func(t *testing.T) {
		scale := NewScale()
		require.NoError(t, scale.Init(map[string]any{
			"factor":  0.001,
			"metrics": []any{"energy"},
			"name":    "to_mJ",
		}))

		assert.Equal(t, 0.001, scale.factor)
		assert.Equal(t, []string{"energy"}, scale.metrics)
		assert.Equal(t, "to_mJ", scale.transform)
	})

	t.Run("Init rejects non-positive factors", func(t *testing.T) {
		assert.Error(t, NewScale().Init(map[string]any{"factor": 0}))
		assert.Error(t, NewScale().Init(map[string]any{"factor": -2}))
		assert.Error(t, NewScale().Init(map[string]any{"factor": "big"}))
	})
}

func TestScaleApply(t *testing.T) {
	core := plugintest.NewCore()
	energy, err := core.CreateMetric(model.NewMetricDef[uint64]("energy", model.Joule.WithPrefix(model.Micro), ""))
	require.NoError(t, err)
	power, err := core.CreateMetric(model.NewMetricDef[float64]("power", model.Watt, ""))
	require.NoError(t, err)

	newBuffer := func() *model.MeasurementBuffer {
		buf := model.NewMeasurementBuffer(model.NewSourceName("rapl", "pkg"))
		now := time.Now()
		buf.AddPoint(model.NewPoint(energy, now, uint64(1500)))
		buf.AddPoint(model.NewPoint(power, now, 2.5))
		return buf
	}

	t.Run("Selected metrics are scaled", func(t *testing.T) {
		scale := NewScale()
		require.NoError(t, scale.Init(map[string]any{"factor": 0.001, "metrics": []any{"energy"}}))
		require.NoError(t, scale.Start(core))

		buf := newBuffer()
		require.NoError(t, core.Transforms["scale"].Apply(buf, core.Metrics))

		assert.Equal(t, uint64(2), buf.Points[0].Value)
		assert.Equal(t, 2.5, buf.Points[1].Value)
	})

	t.Run("Every metric is scaled by default", func(t *testing.T) {
		scale := NewScale()
		require.NoError(t, scale.Init(map[string]any{"factor": 2, "name": "double"}))
		require.NoError(t, scale.Start(core))

		buf := newBuffer()
		require.NoError(t, core.Transforms["double"].Apply(buf, core.Metrics))

		assert.Equal(t, uint64(3000), buf.Points[0].Value)
		assert.Equal(t, 5.0, buf.Points[1].Value)
	})

	t.Run("Unknown metrics select nothing", func(t *testing.T) {
		scale := NewScale()
		require.NoError(t, scale.Init(map[string]any{"factor": 2, "metrics": "missing", "name": "none"}))
		require.NoError(t, scale.Start(core))

		buf := newBuffer()
		require.NoError(t, core.Transforms["none"].Apply(buf, core.Metrics))

		assert.Equal(t, uint64(1500), buf.Points[0].Value)
	})
	t.Run("Overflowing integers are rejected", func(t *testing.T) {
		scale := NewScale()
		require.NoError(t, scale.Init(map[string]any{"factor": 2, "metrics": []any{"energy"}, "name": "overflow"}))
		require.NoError(t, scale.Start(core))

		buf := model.NewMeasurementBuffer(model.NewSourceName("rapl", "pkg"))
		buf.AddPoint(model.NewPoint(energy, time.Now(), uint64(1)<<63))

		assert.ErrorContains(t, core.Transforms["overflow"].Apply(buf, core.Metrics), "overflows")
	})
}
