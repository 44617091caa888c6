// Package units carries measured values together with their unit and
// converts them to metres, square metres and cubic metres.
//
// Values read from a building model are tagged with a Unit at the graph
// boundary. When the unit is known the conversion is exact. When it is not,
// the Normalizer can fall back to a magnitude heuristic: lengths above 100
// are read as millimetres and areas above 1000 as square millimetres. The
// heuristic misreads legitimately large metric values (a 150 m² hall becomes
// 0.00015 m²), so every rescale it performs is reported to the caller.
package units

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/log"
)

// Default magnitude thresholds for the heuristic.
const (
	DefaultLengthThreshold = 100.0
	DefaultAreaThreshold   = 1000.0
)

// Unit identifies the unit a raw value is expressed in.
type Unit int

const (
	Unknown Unit = iota
	Metre
	Centimetre
	Millimetre
	SquareMetre
	SquareCentimetre
	SquareMillimetre
	CubicMetre
)

var unitNames = map[Unit]string{
	Unknown:          "",
	Metre:            "METRE",
	Centimetre:       "CENTIMETRE",
	Millimetre:       "MILLIMETRE",
	SquareMetre:      "SQUARE_METRE",
	SquareCentimetre: "SQUARE_CENTIMETRE",
	SquareMillimetre: "SQUARE_MILLIMETRE",
	CubicMetre:       "CUBIC_METRE",
}

// Symbol returns the short display symbol for the normalized units.
func (u Unit) Symbol() string {
	switch u {
	case Metre:
		return "m"
	case SquareMetre:
		return "m²"
	case CubicMetre:
		return "m³"
	}
	return ""
}

func (u Unit) String() string { return unitNames[u] }

// ParseUnit maps an IFC unit name ("MILLIMETRE", "SQUARE_METRE", ...) to a
// Unit. The empty string parses to Unknown.
func ParseUnit(s string) (Unit, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	name = strings.ReplaceAll(name, "METER", "METRE")
	if name == "" {
		return Unknown, nil
	}
	for u, n := range unitNames {
		if n != "" && n == name {
			return u, nil
		}
	}
	return Unknown, fmt.Errorf("units: unsupported unit %q", s)
}

// Squared returns the area unit whose side is u. Non-length units map to
// Unknown.
func (u Unit) Squared() Unit {
	switch u {
	case Metre:
		return SquareMetre
	case Centimetre:
		return SquareCentimetre
	case Millimetre:
		return SquareMillimetre
	}
	return Unknown
}

// IsLength reports whether u is a known length unit.
func (u Unit) IsLength() bool {
	_, ok := u.lengthFactor()
	return ok
}

// IsArea reports whether u is a known area unit.
func (u Unit) IsArea() bool {
	_, ok := u.areaFactor()
	return ok
}

// lengthFactor and areaFactor give the multiplier to metres / square metres.
func (u Unit) lengthFactor() (float64, bool) {
	switch u {
	case Metre:
		return 1, true
	case Centimetre:
		return 0.01, true
	case Millimetre:
		return 0.001, true
	}
	return 0, false
}

func (u Unit) areaFactor() (float64, bool) {
	switch u {
	case SquareMetre:
		return 1, true
	case SquareCentimetre:
		return 1e-4, true
	case SquareMillimetre:
		return 1e-6, true
	}
	return 0, false
}

// Measure is a raw scalar tagged with the unit it was recorded in.
type Measure struct {
	Value float64
	Unit  Unit
}

// Of returns a Measure of v in u.
func Of(v float64, u Unit) Measure { return Measure{Value: v, Unit: u} }

// Add sums two measures. The result keeps m's unit; mixing two different
// known units is the caller's error and yields Unknown.
func (m Measure) Add(o Measure) Measure {
	u := m.Unit
	if o.Unit != m.Unit {
		u = Unknown
	}
	return Measure{Value: m.Value + o.Value, Unit: u}
}

// NormalizeLength applies the magnitude heuristic with the default
// threshold: values whose magnitude exceeds 100 are taken as millimetres.
func NormalizeLength(raw float64) float64 {
	if math.Abs(raw) > DefaultLengthThreshold {
		return raw / 1000
	}
	return raw
}

// NormalizeArea applies the magnitude heuristic with the default
// threshold: values whose magnitude exceeds 1000 are taken as mm².
func NormalizeArea(raw float64) float64 {
	if math.Abs(raw) > DefaultAreaThreshold {
		return raw / 1_000_000
	}
	return raw
}

// Policy selects what the Normalizer does with values of unknown unit.
type Policy string

const (
	// PolicyHeuristic applies the magnitude thresholds to unknown units.
	PolicyHeuristic Policy = "heuristic"
	// PolicyStrict takes unknown units as already metric.
	PolicyStrict Policy = "strict"
)

// Normalizer converts measures to metric. The zero value uses the
// heuristic policy with the default thresholds and logs nothing.
type Normalizer struct {
	Policy          Policy
	LengthThreshold float64
	AreaThreshold   float64
	Logger          *log.Logger
}

// Result is a normalized value. Heuristic is true when the magnitude rule
// rescaled the value.
type Result struct {
	Value     float64
	Heuristic bool
}

func (n *Normalizer) lengthThreshold() float64 {
	if n == nil || n.LengthThreshold <= 0 {
		return DefaultLengthThreshold
	}
	return n.LengthThreshold
}

func (n *Normalizer) areaThreshold() float64 {
	if n == nil || n.AreaThreshold <= 0 {
		return DefaultAreaThreshold
	}
	return n.AreaThreshold
}

func (n *Normalizer) strict() bool {
	return n != nil && n.Policy == PolicyStrict
}

func (n *Normalizer) mismatch(kind string, m Measure) {
	if n == nil || n.Logger == nil || m.Unit == Unknown {
		return
	}
	n.Logger.Warn("unit does not measure "+kind+", treated as unknown", "unit", m.Unit, "raw", m.Value)
}

func (n *Normalizer) warn(kind string, m Measure, out float64) {
	if n == nil || n.Logger == nil {
		return
	}
	n.Logger.Warn("unit inferred from magnitude", "kind", kind, "raw", m.Value, "normalized", out)
}

// Length converts m to metres.
func (n *Normalizer) Length(m Measure) Result {
	if f, ok := m.Unit.lengthFactor(); ok {
		return Result{Value: m.Value * f}
	}
	n.mismatch("length", m)
	if n.strict() {
		return Result{Value: m.Value}
	}
	if math.Abs(m.Value) > n.lengthThreshold() {
		out := m.Value / 1000
		n.warn("length", m, out)
		return Result{Value: out, Heuristic: true}
	}
	return Result{Value: m.Value}
}

// Area converts m to square metres.
func (n *Normalizer) Area(m Measure) Result {
	if f, ok := m.Unit.areaFactor(); ok {
		return Result{Value: m.Value * f}
	}
	n.mismatch("area", m)
	if n.strict() {
		return Result{Value: m.Value}
	}
	if math.Abs(m.Value) > n.areaThreshold() {
		out := m.Value / 1_000_000
		n.warn("area", m, out)
		return Result{Value: out, Heuristic: true}
	}
	return Result{Value: m.Value}
}

// Coordinate converts a placement coordinate. Coordinates are never
// rescaled by magnitude: only a known length unit is applied.
func (n *Normalizer) Coordinate(m Measure) float64 {
	if f, ok := m.Unit.lengthFactor(); ok {
		return m.Value * f
	}
	return m.Value
}
