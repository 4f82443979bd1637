package expect

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sliink/meter/internal/core"
	"github.com/sliink/meter/internal/model"
)

// MismatchKind is the kind of expectation that was not met
type MismatchKind string

const (
	KindMetric         MismatchKind = "metric"
	KindMetricRegistry MismatchKind = "metric registry"
	KindPlugin         MismatchKind = "plugin"
	KindSource         MismatchKind = "source"
	KindTransform      MismatchKind = "transform"
	KindOutput         MismatchKind = "output"
)

// MismatchError describes the first expectation that does not hold.
//
// For metrics, Field is empty when the metric is missing and names the
// differing property ("unit" or "type") otherwise. For pipeline elements,
// Expected and Actual hold the two sorted sequences, and Missing and
// Unexpected their differences.
type MismatchError struct {
	Kind       MismatchKind
	Subject    string
	Field      string
	Expected   string
	Actual     string
	Missing    []string
	Unexpected []string
}

func (e *MismatchError) Error() string {
	switch e.Kind {
	case KindMetric:
		if e.Field == "" {
			return fmt.Sprintf("missing metric %q", e.Subject)
		}
		return fmt.Sprintf("metric %q should have %s %s, not %s", e.Subject, e.Field, e.Expected, e.Actual)
	case KindMetricRegistry:
		return fmt.Sprintf("metric registry is inconsistent: lookup of %q returned the definition of %q", e.Subject, e.Actual)
	case KindPlugin:
		return fmt.Sprintf("plugin %q not found, initialized plugins are %s", e.Subject, e.Actual)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%ss do not match the expectations\n  expected: %s\n  actual:   %s", e.Kind, e.Expected, e.Actual)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&sb, "\n  missing:    %s", strings.Join(e.Missing, ", "))
	}
	if len(e.Unexpected) > 0 {
		fmt.Fprintf(&sb, "\n  unexpected: %s", strings.Join(e.Unexpected, ", "))
	}
	return sb.String()
}

// MetricRegistry is the part of the metric registry the checks query
type MetricRegistry interface {
	ByName(name string) (model.MetricID, model.MetricDef, bool)
}

// CheckMetrics verifies that every expected metric is registered with the
// expected unit and value type. It stops at the first mismatch.
func CheckMetrics(registry MetricRegistry, expected []Metric) error {
	for _, m := range expected {
		_, def, ok := registry.ByName(m.Name)
		if !ok {
			return &MismatchError{Kind: KindMetric, Subject: m.Name}
		}
		if def.Name != m.Name {
			return &MismatchError{Kind: KindMetricRegistry, Subject: m.Name, Expected: m.Name, Actual: def.Name}
		}
		if def.Unit != m.Unit {
			return &MismatchError{
				Kind:     KindMetric,
				Subject:  m.Name,
				Field:    "unit",
				Expected: m.Unit.String(),
				Actual:   def.Unit.String(),
			}
		}
		if def.ValueType != m.ValueType {
			return &MismatchError{
				Kind:     KindMetric,
				Subject:  m.Name,
				Field:    "type",
				Expected: m.ValueType.String(),
				Actual:   def.ValueType.String(),
			}
		}
	}
	return nil
}

// CheckPlugins verifies that every expected plugin name is among the
// initialized plugins. Other plugins may be present.
func CheckPlugins(plugins []model.Plugin, expected []string) error {
	names := make([]string, len(plugins))
	for i, p := range plugins {
		names[i] = p.Name()
	}
	for _, name := range expected {
		if !slices.Contains(names, name) {
			return &MismatchError{
				Kind:     KindPlugin,
				Subject:  name,
				Expected: name,
				Actual:   "[" + strings.Join(names, ", ") + "]",
			}
		}
	}
	return nil
}

// CheckElements verifies that the pipeline holds exactly the expected
// sources, transforms and outputs, in any order. The runtime checks source
// is left out of the comparison.
func CheckElements(snapshot core.PipelineSnapshot, sources []model.SourceName, transforms []model.TransformName, outputs []model.OutputName) error {
	tester := TesterSource()
	actualSources := slices.DeleteFunc(snapshot.Sources(), func(s model.SourceName) bool {
		return s == tester
	})

	if err := compareElements(KindSource, sources, actualSources); err != nil {
		return err
	}
	if err := compareElements(KindTransform, transforms, snapshot.Transforms()); err != nil {
		return err
	}
	return compareElements(KindOutput, outputs, snapshot.Outputs())
}

// compareElements compares two collections of names as sets. Both sides
// are sorted on copies; repeated expectations count once.
func compareElements[T model.Named](kind MismatchKind, expected, actual []T) error {
	expected = slices.Clone(expected)
	actual = slices.Clone(actual)
	model.SortElements(expected)
	model.SortElements(actual)
	expected = slices.Compact(expected)

	if slices.Equal(expected, actual) {
		return nil
	}
	return &MismatchError{
		Kind:       kind,
		Expected:   formatElements(expected),
		Actual:     formatElements(actual),
		Missing:    difference(expected, actual),
		Unexpected: difference(actual, expected),
	}
}

// difference lists the names of a that are not in b
func difference[T model.Named](a, b []T) []string {
	var diff []string
	for _, n := range a {
		if !slices.Contains(b, n) {
			diff = append(diff, n.Element().String())
		}
	}
	return diff
}

func formatElements[T model.Named](names []T) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n.Element().String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
