package expect

import "github.com/sliink/meter/internal/model"

// The runtime checks harness registers one source of its own, under these
// names. It is ignored when comparing the sources of an agent.
const (
	TesterPluginName = "_tester"
	TesterSourceName = "_runtime_checks"
)

// TesterSource returns the name of the runtime checks source
func TesterSource() model.SourceName {
	return model.NewSourceName(TesterPluginName, TesterSourceName)
}
