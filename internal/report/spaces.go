package report

import (
	"ifcmetrics/internal/ifc"
	"ifcmetrics/internal/metric"
)

// AreaReporter lists the net floor area of every space, with the gross
// area and wall footprint it was derived from.
type AreaReporter struct {
	Calc *metric.Calculator
}

func (AreaReporter) Kind() Kind { return KindAreas }

func (AreaReporter) Title() string { return "Space areas" }

func (a AreaReporter) Build(g ifc.Graph) *Report {
	records := collect(g, ifc.Space, func(e ifc.Entity, r *Record) {
		m := a.Calc.Space(e)
		footprint := Unavailable()
		if m.Gross.OK {
			footprint = Number(m.Footprint.Value)
		}
		r.Fields = append(r.Fields,
			measured(FieldGrossArea, m.Gross, UnitSquareMetre, Unavailable()),
			Field{Name: FieldFootprint, Value: footprint, Unit: UnitSquareMetre, Heuristic: m.Footprint.Heuristic},
			measured(FieldNetArea, m.Net, UnitSquareMetre, Unavailable()),
		)
	})
	rep := newReport(a, g, records)
	rep.Totals = []Total{{Field: FieldNetArea, Value: Sum(records, FieldNetArea), Unit: UnitSquareMetre}}
	return rep
}

// VolumeReporter lists the volume of every space.
type VolumeReporter struct {
	Calc *metric.Calculator
}

func (VolumeReporter) Kind() Kind { return KindVolumes }

func (VolumeReporter) Title() string { return "Space volumes" }

func (v VolumeReporter) Build(g ifc.Graph) *Report {
	records := collect(g, ifc.Space, func(e ifc.Entity, r *Record) {
		m := v.Calc.Space(e)
		r.Fields = append(r.Fields,
			measured(FieldNetArea, m.Net, UnitSquareMetre, Unavailable()),
			measured(FieldHeight, m.Height, UnitMetre, Unavailable()),
			measured(FieldVolume, m.Volume, UnitCubicMetre, Unavailable()),
		)
	})
	rep := newReport(v, g, records)
	rep.Totals = []Total{{Field: FieldVolume, Value: Sum(records, FieldVolume), Unit: UnitCubicMetre}}
	return rep
}
