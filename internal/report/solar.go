package report

import (
	"ifcmetrics/internal/ifc"
	"ifcmetrics/internal/metric"
	"ifcmetrics/internal/resolve"
)

// Solar defaults.
const (
	DefaultIrradiance = 500.0 // W/m²
	DefaultGValue     = 0.6
)

// SourceDefault marks a g-value taken from configuration.
const SourceDefault = "default"

// DefaultGValueQuery lists the property names carrying a glazing's total
// solar energy transmittance.
func DefaultGValueQuery() resolve.Query {
	return resolve.Query{
		Names: []string{"SolarHeatGainTransmittance", "SolarHeatGainCoefficient", "GValue"},
		Kinds: resolve.AnySet,
	}
}

// SolarReporter estimates the solar heat gain through each window as
// area × g-value × irradiance.
type SolarReporter struct {
	Calc       *metric.Calculator
	GValue     resolve.Query
	Default    float64
	Irradiance float64
}

func (SolarReporter) Kind() Kind { return KindSolar }

func (SolarReporter) Title() string { return "Solar gain" }

func (s SolarReporter) Build(g ifc.Graph) *Report {
	irradiance := s.Irradiance
	if irradiance <= 0 {
		irradiance = DefaultIrradiance
	}
	records := collect(g, ifc.Window, func(e ifc.Entity, r *Record) {
		width := lengthAttr(s.Calc, e, "OverallWidth", FieldWidth)
		height := lengthAttr(s.Calc, e, "OverallHeight", FieldHeight)
		area := Field{Name: FieldArea, Value: Unavailable(), Unit: UnitSquareMetre}
		gain := Field{Name: FieldSolarGain, Value: Unavailable(), Unit: UnitWatt}
		gv := s.gValue(e)

		w, wok := width.Value.Float()
		h, hok := height.Value.Float()
		if wok && hok {
			heuristic := width.Heuristic || height.Heuristic
			area.Value, area.Heuristic = Number(w*h), heuristic
			transmittance, _ := gv.Value.Float()
			gain.Value, gain.Heuristic = Number(w*h*transmittance*irradiance), heuristic
		}
		r.Fields = append(r.Fields, width, height, area, gv, gain)
	})
	rep := newReport(s, g, records)
	rep.Totals = []Total{
		{Field: FieldArea, Value: Sum(records, FieldArea), Unit: UnitSquareMetre},
		{Field: FieldSolarGain, Value: Sum(records, FieldSolarGain), Unit: UnitWatt},
	}
	return rep
}

// gValue resolves the window's g-value. Values outside [0, 1] are ignored
// in favour of the default.
func (s SolarReporter) gValue(e ifc.Entity) Field {
	def := s.Default
	if def <= 0 || def > 1 {
		def = DefaultGValue
	}
	f := Field{Name: FieldGValue, Value: Number(def), Source: SourceDefault}

	q := s.GValue
	if len(q.Names) == 0 {
		q = DefaultGValueQuery()
	}
	if s.Calc == nil {
		return f
	}
	m, ok := s.Calc.Resolver.Resolve(e, q)
	if !ok || m.Measure.Value < 0 || m.Measure.Value > 1 {
		return f
	}
	f.Value = Number(m.Measure.Value)
	f.Source = m.Source()
	return f
}
