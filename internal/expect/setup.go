package expect

import (
	"github.com/sliink/meter/internal/core"
	"github.com/sliink/meter/internal/model"
	"github.com/stretchr/testify/require"
)

// TestingT is the part of *testing.T used to report failures
type TestingT = core.FailureReporter

// Setup registers the checks on b and seals the expectations. A failed
// check reports the mismatch on t and calls t.FailNow; the bootstrap is
// aborted with the same error if FailNow returns.
func (s *StartupExpectations) Setup(t TestingT, b *core.Builder) *core.Builder {
	s.mutable()
	s.sealed = true

	metrics := s.metrics
	plugins := s.plugins
	sources, transforms, outputs := s.sources, s.transforms, s.outputs

	return b.
		AfterPluginsStart(func(state *core.StartupState) error {
			return verify(t, CheckMetrics(state.Metrics(), metrics))
		}).
		AfterPluginsInit(func(initialized []model.Plugin) error {
			return verify(t, CheckPlugins(initialized, plugins))
		}).
		BeforeOperationBegin(func(pipeline core.PipelineInspector) error {
			return verify(t, CheckElements(pipeline.Inspect(), sources, transforms, outputs))
		})
}

func verify(t TestingT, err error) error {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	require.NoError(t, err, "startup expectations are not met")
	return err
}
