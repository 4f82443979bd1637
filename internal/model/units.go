package model

import (
	"fmt"
	"math"
	"strings"
)

// Unit is a measurement unit without scale prefix
type Unit struct {
	// ID uniquely identifies the unit
	ID string
	// Display is the short symbol used when printing values
	Display string
}

// Standard units
var (
	Unity         = Unit{ID: "1", Display: "1"}
	Second        = Unit{ID: "s", Display: "s"}
	Watt          = Unit{ID: "W", Display: "W"}
	Joule         = Unit{ID: "J", Display: "J"}
	Volt          = Unit{ID: "V", Display: "V"}
	Ampere        = Unit{ID: "A", Display: "A"}
	Hertz         = Unit{ID: "Hz", Display: "Hz"}
	DegreeCelsius = Unit{ID: "Cel", Display: "°C"}
	Byte          = Unit{ID: "By", Display: "B"}
	WattHour      = Unit{ID: "W.h", Display: "Wh"}
)

var standardUnits = []Unit{Unity, Second, Watt, Joule, Volt, Ampere, Hertz, DegreeCelsius, Byte, WattHour}

// CustomUnit creates a unit that is not part of the standard set
func CustomUnit(id, display string) Unit {
	return Unit{ID: id, Display: display}
}

// PrefixedUnit implements UnitLike
func (u Unit) PrefixedUnit() PrefixedUnit {
	return PrefixedUnit{Base: u, Prefix: Plain}
}

// WithPrefix returns the unit scaled by the given prefix
func (u Unit) WithPrefix(p Prefix) PrefixedUnit {
	return PrefixedUnit{Base: u, Prefix: p}
}

func (u Unit) String() string {
	return u.Display
}

// Prefix is a decimal scale factor, stored as a power of ten
type Prefix int8

const (
	Nano  Prefix = -9
	Micro Prefix = -6
	Milli Prefix = -3
	Plain Prefix = 0
	Kilo  Prefix = 3
	Mega  Prefix = 6
	Giga  Prefix = 9
)

var prefixSymbols = map[Prefix]string{
	Nano:  "n",
	Micro: "u",
	Milli: "m",
	Plain: "",
	Kilo:  "k",
	Mega:  "M",
	Giga:  "G",
}

// Scale returns the multiplier represented by the prefix
func (p Prefix) Scale() float64 {
	return math.Pow10(int(p))
}

// Symbol returns the short symbol of the prefix
func (p Prefix) Symbol() string {
	if s, ok := prefixSymbols[p]; ok {
		return s
	}
	return fmt.Sprintf("e%d", int8(p))
}

// PrefixedUnit is a unit together with its scale. Two prefixed units are
// equal only if both the base unit and the prefix are equal.
type PrefixedUnit struct {
	Base   Unit
	Prefix Prefix
}

// PrefixedUnit implements UnitLike
func (u PrefixedUnit) PrefixedUnit() PrefixedUnit {
	return u
}

func (u PrefixedUnit) String() string {
	return u.Prefix.Symbol() + u.Base.Display
}

// UnitLike is anything that converts to a PrefixedUnit
type UnitLike interface {
	PrefixedUnit() PrefixedUnit
}

// ParseUnit parses a unit such as "uJ", "W" or "kHz".
// Unprefixed symbols are tried first, so "m" is never read as milli-nothing.
func ParseUnit(s string) (PrefixedUnit, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PrefixedUnit{}, fmt.Errorf("empty unit")
	}

	for _, u := range standardUnits {
		if s == u.ID || s == u.Display {
			return u.PrefixedUnit(), nil
		}
	}

	for p, sym := range prefixSymbols {
		if sym == "" || !strings.HasPrefix(s, sym) {
			continue
		}
		rest := s[len(sym):]
		for _, u := range standardUnits {
			if rest == u.ID || rest == u.Display {
				return u.WithPrefix(p), nil
			}
		}
	}

	return PrefixedUnit{}, fmt.Errorf("unknown unit: %q", s)
}
