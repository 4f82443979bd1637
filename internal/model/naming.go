package model

import (
	"cmp"
	"slices"
)

// ElementName identifies a pipeline element by its owning plugin and its
// name within that plugin
type ElementName struct {
	Plugin string
	Name   string
}

// Compare orders names lexicographically on (plugin, name)
func (n ElementName) Compare(other ElementName) int {
	if c := cmp.Compare(n.Plugin, other.Plugin); c != 0 {
		return c
	}
	return cmp.Compare(n.Name, other.Name)
}

func (n ElementName) String() string {
	return n.Plugin + "/" + n.Name
}

// SourceName is the full name of a source
type SourceName struct{ ElementName }

// TransformName is the full name of a transform
type TransformName struct{ ElementName }

// OutputName is the full name of an output
type OutputName struct{ ElementName }

// NewSourceName creates the name of a source owned by plugin
func NewSourceName(plugin, source string) SourceName {
	return SourceName{ElementName{Plugin: plugin, Name: source}}
}

// NewTransformName creates the name of a transform owned by plugin
func NewTransformName(plugin, transform string) TransformName {
	return TransformName{ElementName{Plugin: plugin, Name: transform}}
}

// NewOutputName creates the name of an output owned by plugin
func NewOutputName(plugin, output string) OutputName {
	return OutputName{ElementName{Plugin: plugin, Name: output}}
}

// Named is implemented by every element name type
type Named interface {
	comparable
	Element() ElementName
}

// Element returns the underlying plugin/name pair
func (n ElementName) Element() ElementName {
	return n
}

// SortElements sorts names in place by (plugin, name), keeping the relative
// order of equal names
func SortElements[T Named](names []T) {
	slices.SortStableFunc(names, func(a, b T) int {
		return a.Element().Compare(b.Element())
	})
}
