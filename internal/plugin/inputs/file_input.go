package inputs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sliink/meter/internal/model"
	"github.com/sliink/meter/internal/plugin"
)

// FileInput reads numeric values from files, such as the energy counters
// exposed under /sys/class/powercap
type FileInput struct {
	plugin.BasePlugin
	paths     []string
	metric    string
	source    string
	unit      model.PrefixedUnit
	valueType model.MeasurementType
}

// NewFileInput creates a new file input plugin
func NewFileInput() *FileInput {
	return &FileInput{
		BasePlugin: plugin.NewBasePlugin("file", "1.0.0"),
	}
}

// Init reads the paths, which may be glob patterns, and the metric
// definition
func (f *FileInput) Init(config map[string]any) error {
	if err := f.BasePlugin.Init(config); err != nil {
		return err
	}

	paths, err := f.ConfigStrings("paths")
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("no paths configured")
	}
	for _, p := range paths {
		if _, err := filepath.Match(p, ""); err != nil {
			return fmt.Errorf("invalid path pattern %q: %w", p, err)
		}
	}
	f.paths = paths

	f.metric = f.ConfigString("metric", "file_value")
	f.source = f.ConfigString("source", "files")

	unit, err := f.ConfigUnit("unit", model.Unity)
	if err != nil {
		return err
	}
	f.unit = unit

	f.valueType = model.MeasurementType(f.ConfigString("type", string(model.F64)))
	if !f.valueType.Valid() {
		return fmt.Errorf("unsupported value type %q", f.valueType)
	}
	return nil
}

// Start registers the metric and the source reading the files
func (f *FileInput) Start(core model.CoreAPI) error {
	if err := f.BasePlugin.Start(core); err != nil {
		return err
	}

	id, err := core.CreateMetric(model.MetricDef{
		Name:        f.metric,
		Description: "value read from " + strings.Join(f.paths, ", "),
		Unit:        f.unit,
		ValueType:   f.valueType,
	})
	if err != nil {
		return err
	}
	return core.AddSource(f.source, &fileSource{metric: id, paths: f.paths, valueType: f.valueType})
}

type fileSource struct {
	metric    model.MetricID
	paths     []string
	valueType model.MeasurementType
}

// Poll reads every matching file. Files that cannot be read are skipped,
// unless none could be read at all.
func (s *fileSource) Poll(buf *model.MeasurementBuffer, ts time.Time) error {
	var errs []error
	for _, pattern := range s.paths {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, path := range matches {
			point, err := s.read(path, ts)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			buf.AddPoint(point)
		}
	}

	if buf.Size() == 0 && len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (s *fileSource) read(path string, ts time.Time) (model.MeasurementPoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.MeasurementPoint{}, err
	}
	text := strings.TrimSpace(string(data))

	var point model.MeasurementPoint
	if s.valueType == model.U64 {
		v, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return model.MeasurementPoint{}, fmt.Errorf("%s: %w", path, err)
		}
		point = model.NewPoint(s.metric, ts, v)
	} else {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return model.MeasurementPoint{}, fmt.Errorf("%s: %w", path, err)
		}
		point = model.NewPoint(s.metric, ts, v)
	}
	point.Resource = path
	point.Attributes["path"] = path
	return point, nil
}
