package expect

import (
	"testing"
	"time"

	"github.com/sliink/meter/internal/core"
	"github.com/sliink/meter/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRegistry returns its definitions as stored, even when inconsistent
type fakeRegistry map[string]model.MetricDef

func (r fakeRegistry) ByName(name string) (model.MetricID, model.MetricDef, bool) {
	def, ok := r[name]
	return 0, def, ok
}

// namedPlugin only answers Name
type namedPlugin struct {
	model.Plugin
	name string
}

func (p namedPlugin) Name() string { return p.name }

func plugins(names ...string) []model.Plugin {
	result := make([]model.Plugin, len(names))
	for i, n := range names {
		result[i] = namedPlugin{name: n}
	}
	return result
}

func TestCheckMetrics(t *testing.T) {
	registry := fakeRegistry{
		"coffee_counter": model.NewMetricDef[uint64]("coffee_counter", model.Unity, ""),
		"power":          model.NewMetricDef[float64]("power", model.Watt.WithPrefix(model.Milli), ""),
		"renamed":        model.NewMetricDef[uint64]("original", model.Unity, ""),
	}

	testCases := []struct {
		name     string
		expected []Metric
		err      string
	}{
		{
			name: "Exact matches pass",
			expected: []Metric{
				{Name: "coffee_counter", ValueType: model.U64, Unit: model.Unity.PrefixedUnit()},
				{Name: "power", ValueType: model.F64, Unit: model.Watt.WithPrefix(model.Milli)},
			},
		},
		{
			name: "No expectations pass",
		},
		{
			name:     "Missing metric",
			expected: []Metric{{Name: "tea_counter", ValueType: model.U64, Unit: model.Unity.PrefixedUnit()}},
			err:      `missing metric "tea_counter"`,
		},
		{
			name:     "Different unit",
			expected: []Metric{{Name: "coffee_counter", ValueType: model.U64, Unit: model.Joule.PrefixedUnit()}},
			err:      `metric "coffee_counter" should have unit J, not 1`,
		},
		{
			name:     "Different prefix",
			expected: []Metric{{Name: "power", ValueType: model.F64, Unit: model.Watt.PrefixedUnit()}},
			err:      `metric "power" should have unit W, not mW`,
		},
		{
			name:     "Different type",
			expected: []Metric{{Name: "coffee_counter", ValueType: model.F64, Unit: model.Unity.PrefixedUnit()}},
			err:      `metric "coffee_counter" should have type f64, not u64`,
		},
		{
			name:     "Inconsistent registry",
			expected: []Metric{{Name: "renamed", ValueType: model.U64, Unit: model.Unity.PrefixedUnit()}},
			err:      `metric registry is inconsistent: lookup of "renamed" returned the definition of "original"`,
		},
		{
			name: "The first failure wins",
			expected: []Metric{
				{Name: "coffee_counter", ValueType: model.F64, Unit: model.Joule.PrefixedUnit()},
				{Name: "tea_counter"},
			},
			err: `metric "coffee_counter" should have unit J, not 1`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckMetrics(registry, tc.expected)
			if tc.err == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tc.err)
		})
	}

	t.Run("Mismatch details are exposed", func(t *testing.T) {
		err := CheckMetrics(registry, []Metric{{Name: "power", ValueType: model.U64, Unit: model.Watt.WithPrefix(model.Milli)}})

		var mismatch *MismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, KindMetric, mismatch.Kind)
		assert.Equal(t, "power", mismatch.Subject)
		assert.Equal(t, "type", mismatch.Field)
		assert.Equal(t, "u64", mismatch.Expected)
		assert.Equal(t, "f64", mismatch.Actual)
	})

	t.Run("Duplicate expectations give the same outcome", func(t *testing.T) {
		m := Metric{Name: "coffee_counter", ValueType: model.U64, Unit: model.Unity.PrefixedUnit()}
		assert.NoError(t, CheckMetrics(registry, []Metric{m, m}))

		missing := Metric{Name: "tea_counter"}
		assert.Error(t, CheckMetrics(registry, []Metric{missing, missing}))
	})
}

func TestCheckPlugins(t *testing.T) {
	testCases := []struct {
		name        string
		initialized []model.Plugin
		expected    []string
		err         string
	}{
		{
			name:        "Declared plugins are found",
			initialized: plugins("counter", "stdout"),
			expected:    []string{"stdout", "counter"},
		},
		{
			name:        "Extra plugins are allowed",
			initialized: plugins("counter", "stdout", "influx"),
			expected:    []string{"counter"},
		},
		{
			name:        "No expectations pass",
			initialized: plugins("counter"),
		},
		{
			name:        "Duplicates are redundant",
			initialized: plugins("counter"),
			expected:    []string{"counter", "counter"},
		},
		{
			name:        "Missing plugin",
			initialized: plugins("counter", "stdout"),
			expected:    []string{"counter", "rapl"},
			err:         `plugin "rapl" not found, initialized plugins are [counter, stdout]`,
		},
		{
			name:     "Nothing initialized",
			expected: []string{"counter"},
			err:      `plugin "counter" not found, initialized plugins are []`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckPlugins(tc.initialized, tc.expected)
			if tc.err == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tc.err)
		})
	}
}

type nopElement struct{}

func (nopElement) Poll(*model.MeasurementBuffer, time.Time) error           { return nil }
func (nopElement) Apply(*model.MeasurementBuffer, model.MetricLookup) error { return nil }
func (nopElement) Write(*model.MeasurementBuffer, model.MetricLookup) error { return nil }

// snapshot registers the given elements on a fresh pipeline and inspects it
func snapshot(t *testing.T, sources []model.SourceName, transforms []model.TransformName, outputs []model.OutputName) core.PipelineSnapshot {
	p := core.NewPipeline(core.NewMetricRegistry(), core.PipelineOptions{}, nil)
	for _, s := range sources {
		require.NoError(t, p.AddSource(s, nopElement{}))
	}
	for _, tr := range transforms {
		require.NoError(t, p.AddTransform(tr, nopElement{}))
	}
	for _, o := range outputs {
		require.NoError(t, p.AddOutput(o, nopElement{}))
	}
	return p.Inspect()
}

func TestCheckElements(t *testing.T) {
	src := model.NewSourceName
	tr := model.NewTransformName
	out := model.NewOutputName

	actual := snapshot(t,
		[]model.SourceName{src("rapl", "pkg"), src("counter", "coffee"), TesterSource()},
		[]model.TransformName{tr("scale", "energy")},
		[]model.OutputName{out("stdout", "text"), out("bolt", "db")},
	)

	t.Run("Same sets in another order pass", func(t *testing.T) {
		err := CheckElements(actual,
			[]model.SourceName{src("counter", "coffee"), src("rapl", "pkg")},
			[]model.TransformName{tr("scale", "energy")},
			[]model.OutputName{out("bolt", "db"), out("stdout", "text")},
		)
		assert.NoError(t, err)
	})

	t.Run("Repeated expectations pass", func(t *testing.T) {
		err := CheckElements(actual,
			[]model.SourceName{src("counter", "coffee"), src("rapl", "pkg"), src("counter", "coffee")},
			[]model.TransformName{tr("scale", "energy"), tr("scale", "energy")},
			[]model.OutputName{out("bolt", "db"), out("stdout", "text")},
		)
		assert.NoError(t, err)
	})

	t.Run("Undeclared elements fail", func(t *testing.T) {
		err := CheckElements(actual,
			[]model.SourceName{src("rapl", "pkg")},
			[]model.TransformName{tr("scale", "energy")},
			[]model.OutputName{out("bolt", "db"), out("stdout", "text")},
		)

		var mismatch *MismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, KindSource, mismatch.Kind)
		assert.Equal(t, "[rapl/pkg]", mismatch.Expected)
		assert.Equal(t, "[counter/coffee, rapl/pkg]", mismatch.Actual)
		assert.Empty(t, mismatch.Missing)
		assert.Equal(t, []string{"counter/coffee"}, mismatch.Unexpected)
		assert.EqualError(t, err, "sources do not match the expectations\n"+
			"  expected: [rapl/pkg]\n"+
			"  actual:   [counter/coffee, rapl/pkg]\n"+
			"  unexpected: counter/coffee")
	})

	t.Run("Missing elements fail", func(t *testing.T) {
		err := CheckElements(actual,
			[]model.SourceName{src("counter", "coffee"), src("rapl", "pkg")},
			[]model.TransformName{tr("scale", "energy"), tr("scale", "power")},
			[]model.OutputName{out("bolt", "db"), out("stdout", "text")},
		)

		var mismatch *MismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, KindTransform, mismatch.Kind)
		assert.Equal(t, []string{"scale/power"}, mismatch.Missing)
		assert.Empty(t, mismatch.Unexpected)
	})

	t.Run("Outputs are checked after sources and transforms", func(t *testing.T) {
		err := CheckElements(actual,
			[]model.SourceName{src("counter", "coffee"), src("rapl", "pkg")},
			[]model.TransformName{tr("scale", "energy")},
			[]model.OutputName{out("stdout", "text"), out("influx", "db")},
		)

		var mismatch *MismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, KindOutput, mismatch.Kind)
		assert.Equal(t, []string{"influx/db"}, mismatch.Missing)
		assert.Equal(t, []string{"bolt/db"}, mismatch.Unexpected)
	})

	t.Run("Only the tester source is ignored", func(t *testing.T) {
		other := snapshot(t, []model.SourceName{src(TesterPluginName, "other")}, nil, nil)
		err := CheckElements(other, nil, nil, nil)

		var mismatch *MismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, []string{"_tester/other"}, mismatch.Unexpected)

		tester := snapshot(t, []model.SourceName{TesterSource()}, nil, nil)
		assert.NoError(t, CheckElements(tester, nil, nil, nil))
	})

	t.Run("Declaring the tester source fails", func(t *testing.T) {
		tester := snapshot(t, []model.SourceName{TesterSource()}, nil, nil)
		err := CheckElements(tester, []model.SourceName{TesterSource()}, nil, nil)
		assert.Error(t, err)
	})
}
