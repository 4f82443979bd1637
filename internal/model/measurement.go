package model

import "time"

// MeasurementType is the kind of value a metric carries
type MeasurementType string

const (
	// U64 is an unsigned 64-bit integer value
	U64 MeasurementType = "u64"
	// F64 is a 64-bit floating point value
	F64 MeasurementType = "f64"
)

func (t MeasurementType) String() string {
	return string(t)
}

// Valid reports whether t is one of the supported measurement types
func (t MeasurementType) Valid() bool {
	return t == U64 || t == F64
}

// MeasurementValue constrains the Go types that map to a MeasurementType
type MeasurementValue interface {
	~uint64 | ~float64
}

// TypeOf returns the MeasurementType corresponding to T
func TypeOf[T MeasurementValue]() MeasurementType {
	// an integer type truncates one half to zero
	half := 0.5
	if T(half) == 0 {
		return U64
	}
	return F64
}

// MeasurementPoint is a single value of a metric
type MeasurementPoint struct {
	Metric     MetricID
	Timestamp  time.Time
	Value      any
	Resource   string
	Attributes map[string]string
}

// NewPoint creates a measurement point holding a typed value
func NewPoint[T MeasurementValue](metric MetricID, ts time.Time, value T) MeasurementPoint {
	var v any = float64(value)
	if TypeOf[T]() == U64 {
		v = uint64(value)
	}
	return MeasurementPoint{
		Metric:     metric,
		Timestamp:  ts,
		Value:      v,
		Attributes: make(map[string]string),
	}
}

// ValueType returns the MeasurementType of the stored value
func (p MeasurementPoint) ValueType() MeasurementType {
	switch p.Value.(type) {
	case uint64:
		return U64
	case float64:
		return F64
	}
	return ""
}

// Float returns the value converted to float64
func (p MeasurementPoint) Float() float64 {
	switch v := p.Value.(type) {
	case uint64:
		return float64(v)
	case float64:
		return v
	}
	return 0
}

// ToMap converts the point to a map representation
func (p MeasurementPoint) ToMap() map[string]any {
	return map[string]any{
		"metric":     p.Metric,
		"timestamp":  p.Timestamp,
		"value":      p.Value,
		"resource":   p.Resource,
		"attributes": p.Attributes,
	}
}
