package model

import (
	"time"
)

// MeasurementBuffer is a collection of measurement points produced by one
// poll of a source
type MeasurementBuffer struct {
	Source     SourceName
	Points     []MeasurementPoint
	Timestamp  time.Time
	Attributes map[string]any
}

// NewMeasurementBuffer creates an empty buffer for the given source
func NewMeasurementBuffer(source SourceName) *MeasurementBuffer {
	return &MeasurementBuffer{
		Source:     source,
		Points:     make([]MeasurementPoint, 0),
		Timestamp:  time.Now(),
		Attributes: make(map[string]any),
	}
}

// AddPoint adds a measurement point to the buffer
func (b *MeasurementBuffer) AddPoint(point MeasurementPoint) {
	if point.Resource == "" {
		point.Resource = b.Source.Plugin
	}
	b.Points = append(b.Points, point)
}

// Size returns the number of points in the buffer
func (b *MeasurementBuffer) Size() int {
	return len(b.Points)
}

// Clone returns a copy of the buffer that shares no slices with b
func (b *MeasurementBuffer) Clone() *MeasurementBuffer {
	c := &MeasurementBuffer{
		Source:     b.Source,
		Points:     make([]MeasurementPoint, len(b.Points)),
		Timestamp:  b.Timestamp,
		Attributes: make(map[string]any, len(b.Attributes)),
	}
	copy(c.Points, b.Points)
	for k, v := range b.Attributes {
		c.Attributes[k] = v
	}
	return c
}

// ToMap converts the buffer to a map representation
func (b *MeasurementBuffer) ToMap() map[string]any {
	points := make([]map[string]any, len(b.Points))
	for i, point := range b.Points {
		points[i] = point.ToMap()
	}

	return map[string]any{
		"source":     b.Source.String(),
		"timestamp":  b.Timestamp,
		"points":     points,
		"attributes": b.Attributes,
	}
}
