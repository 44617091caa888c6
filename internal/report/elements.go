package report

import (
	"ifcmetrics/internal/ifc"
	"ifcmetrics/internal/metric"
	"ifcmetrics/internal/units"
)

// -----------------------------------------------------------------------
// Walls
// -----------------------------------------------------------------------

// WallReporter lists walls with their class, description and placement.
type WallReporter struct {
	Normalizer *units.Normalizer
}

func (WallReporter) Kind() Kind { return KindWalls }

func (WallReporter) Title() string { return "Walls" }

func (w WallReporter) Build(g ifc.Graph) *Report {
	records := collect(g, ifc.Wall, func(e ifc.Entity, r *Record) {
		r.Fields = append(r.Fields, Field{Name: FieldType, Value: Text(string(e.Type()))})
		if d, ok := ifc.StringAttr(e, "Description"); ok {
			r.Fields = append(r.Fields, Field{Name: FieldDescription, Value: Text(d)})
		}
		p, ok := e.Placement()
		coords := [3]units.Measure{p.X, p.Y, p.Z}
		for i, name := range [3]string{FieldX, FieldY, FieldZ} {
			f := Field{Name: name, Value: NotApplicable(), Unit: UnitMetre}
			if ok {
				f.Value = Number(w.Normalizer.Coordinate(coords[i]))
			}
			r.Fields = append(r.Fields, f)
		}
	})
	return newReport(w, g, records)
}

// -----------------------------------------------------------------------
// Doors and windows
// -----------------------------------------------------------------------

// OpeningReporter lists doors or windows with their overall dimensions.
// Missing dimensions are reported as N/A.
type OpeningReporter struct {
	kind  Kind
	title string
	typ   ifc.EntityType
	calc  *metric.Calculator
}

// Doors returns the door listing.
func Doors(calc *metric.Calculator) *OpeningReporter {
	return &OpeningReporter{kind: KindDoors, title: "Doors", typ: ifc.Door, calc: calc}
}

// Windows returns the window listing.
func Windows(calc *metric.Calculator) *OpeningReporter {
	return &OpeningReporter{kind: KindWindows, title: "Windows", typ: ifc.Window, calc: calc}
}

func (o *OpeningReporter) Kind() Kind { return o.kind }

func (o *OpeningReporter) Title() string { return o.title }

func (o *OpeningReporter) Build(g ifc.Graph) *Report {
	records := collect(g, o.typ, func(e ifc.Entity, r *Record) {
		r.Fields = append(r.Fields,
			lengthAttr(o.calc, e, "OverallWidth", FieldWidth),
			lengthAttr(o.calc, e, "OverallHeight", FieldHeight),
		)
	})
	return newReport(o, g, records)
}

// lengthAttr reads a numeric length attribute in project units.
func lengthAttr(calc *metric.Calculator, e ifc.Entity, attr, field string) Field {
	v, ok := ifc.NumberAttr(e, attr)
	if !ok {
		return Field{Name: field, Value: NotApplicable(), Unit: UnitMetre}
	}
	res := calc.Length(units.Of(v, e.Units().Length))
	return measured(field, res, UnitMetre, NotApplicable())
}

// measured converts a metric result to a field, using missing when the
// result is unavailable.
func measured(name string, res metric.Result, unit string, missing Value) Field {
	f := Field{Name: name, Value: missing, Unit: unit}
	if res.OK {
		f.Value = Number(res.Value)
		f.Source = res.Source
		f.Heuristic = res.Heuristic
	}
	return f
}
