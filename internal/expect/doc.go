// Package expect checks the state of an agent while it bootstraps.
//
// A test declares the metrics, plugins and pipeline elements it expects,
// then hands the declarations to a core.Builder. The checks run on the
// goroutine that calls Build, at the bootstrap checkpoints the builder
// exposes:
//
//   - after the plugins are initialized, every expected plugin must exist
//     (other plugins are allowed);
//   - after the plugins are started, every expected metric must be
//     registered with the expected unit and value type;
//   - before the pipeline starts, the sources, transforms and outputs must
//     be exactly the expected ones, whatever their registration order.
//
// The first mismatch fails the test immediately.
//
//	func TestCounterPlugin(t *testing.T) {
//		startup := expect.New().
//			ExpectPlugin("counter").
//			ExpectMetric("coffee_counter", model.U64, model.Unity).
//			ExpectSource("counter", "coffee")
//
//		agent, err := core.NewBuilder(inputs.NewCounterInput()).
//			WithExpectations(t, startup).
//			Build()
//		require.NoError(t, err)
//		_ = agent
//	}
package expect
