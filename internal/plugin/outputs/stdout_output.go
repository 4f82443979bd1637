package outputs

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sliink/meter/internal/model"
	"github.com/sliink/meter/internal/plugin"
)

// StdoutOutput writes measurements to standard output
type StdoutOutput struct {
	plugin.BasePlugin
	output   string
	colorize bool
	format   string
	writer   io.Writer
	mutex    sync.Mutex
}

// NewStdoutOutput creates a new stdout output plugin
func NewStdoutOutput() *StdoutOutput {
	return &StdoutOutput{
		BasePlugin: plugin.NewBasePlugin("stdout", "1.0.0"),
		format:     "text",
		writer:     os.Stdout,
	}
}

// Init reads the format ("text" or "json") and the colorize option
func (s *StdoutOutput) Init(config map[string]any) error {
	if err := s.BasePlugin.Init(config); err != nil {
		return err
	}

	s.format = s.ConfigString("format", "text")
	if s.format != "text" && s.format != "json" {
		return fmt.Errorf("unsupported format %q", s.format)
	}
	s.colorize = s.ConfigBool("colorize", false)
	s.output = s.ConfigString("name", "console")
	return nil
}

// Start registers the output
func (s *StdoutOutput) Start(core model.CoreAPI) error {
	if err := s.BasePlugin.Start(core); err != nil {
		return err
	}
	return core.AddOutput(s.output, s)
}

// Write prints every point of the buffer, one per line
func (s *StdoutOutput) Write(buf *model.MeasurementBuffer, metrics model.MetricLookup) error {
	if buf == nil || buf.Size() == 0 {
		return nil
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, point := range buf.Points {
		var err error
		if s.format == "json" {
			err = s.writeJSON(buf, point, metrics)
		} else {
			err = s.writeText(point, metrics)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *StdoutOutput) writeJSON(buf *model.MeasurementBuffer, point model.MeasurementPoint, metrics model.MetricLookup) error {
	def := describe(point, metrics)
	data := point.ToMap()
	data["metric"] = def.Name
	data["unit"] = def.Unit.String()
	data["source"] = buf.Source.String()

	line, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(s.writer, string(line))
	return err
}

func (s *StdoutOutput) writeText(point model.MeasurementPoint, metrics model.MetricLookup) error {
	def := describe(point, metrics)
	timestamp := point.Timestamp.Format(time.RFC3339)

	name := def.Name
	if s.colorize {
		name = "\033[36m" + name + "\033[0m"
	}

	_, err := fmt.Fprintf(s.writer, "[%s] %s = %v %s (%s)%s\n",
		timestamp, name, point.Value, def.Unit, point.Resource, formatAttributes(point.Attributes))
	return err
}

func formatAttributes(attributes map[string]string) string {
	if len(attributes) == 0 {
		return ""
	}
	keys := make([]string, 0, len(attributes))
	for k := range attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + attributes[k]
	}
	return " " + strings.Join(parts, " ")
}
