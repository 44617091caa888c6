// Package report turns an opened model into ordered per-entity records and
// aggregate totals: element listings for walls, doors and windows, and
// derived-quantity reports for spaces and glazing.
//
// Every report is built fresh from the graph on each call; nothing is
// cached between calls, and records are never modified after a report is
// returned.
package report

import (
	"fmt"
	"strings"

	"ifcmetrics/internal/ifc"
)

// Kind names a report.
type Kind string

const (
	KindWalls   Kind = "walls"
	KindDoors   Kind = "doors"
	KindWindows Kind = "windows"
	KindAreas   Kind = "areas"
	KindVolumes Kind = "volumes"
	KindSolar   Kind = "solar"
)

// Kinds returns every report kind in presentation order.
func Kinds() []Kind {
	return []Kind{KindWalls, KindDoors, KindWindows, KindAreas, KindVolumes, KindSolar}
}

// ParseKind maps a command-line name to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown report %q", s)
}

// Field names used in records.
const (
	FieldType        = "type"
	FieldDescription = "description"
	FieldX           = "x"
	FieldY           = "y"
	FieldZ           = "z"
	FieldWidth       = "width"
	FieldHeight      = "height"
	FieldGrossArea   = "gross_area"
	FieldFootprint   = "wall_footprint"
	FieldNetArea     = "net_area"
	FieldVolume      = "volume"
	FieldArea        = "area"
	FieldGValue      = "g_value"
	FieldSolarGain   = "solar_gain"
)

// Display unit symbols.
const (
	UnitMetre       = "m"
	UnitSquareMetre = "m²"
	UnitCubicMetre  = "m³"
	UnitWatt        = "W"
)

// Field is one named cell of a record.
type Field struct {
	Name      string `yaml:"name" json:"name"`
	Value     Value  `yaml:"value" json:"value"`
	Unit      string `yaml:"unit,omitempty" json:"unit,omitempty"`
	Source    string `yaml:"source,omitempty" json:"source,omitempty"`
	Heuristic bool   `yaml:"heuristic,omitempty" json:"heuristic,omitempty"`
}

// Record describes one entity.
type Record struct {
	ID       int     `yaml:"id" json:"id"`
	GlobalID string  `yaml:"global_id,omitempty" json:"global_id,omitempty"`
	GUID     string  `yaml:"guid,omitempty" json:"guid,omitempty"`
	Name     string  `yaml:"name" json:"name"`
	Fields   []Field `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// Field returns the named field.
func (r Record) Field(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Total is an aggregate over one field of a report's records.
type Total struct {
	Field string  `yaml:"field" json:"field"`
	Value float64 `yaml:"value" json:"value"`
	Unit  string  `yaml:"unit,omitempty" json:"unit,omitempty"`
}

// Report is the output of one query: records in model order plus totals.
type Report struct {
	Kind    Kind     `yaml:"kind" json:"kind"`
	Title   string   `yaml:"title" json:"title"`
	Schema  string   `yaml:"schema,omitempty" json:"schema,omitempty"`
	Count   int      `yaml:"count" json:"count"`
	Records []Record `yaml:"records" json:"records"`
	Totals  []Total  `yaml:"totals,omitempty" json:"totals,omitempty"`
}

// Sum adds up field across records, skipping any record whose value is
// not numeric. An empty or all-sentinel input sums to zero.
func Sum(records []Record, field string) float64 {
	var total float64
	for _, r := range records {
		f, ok := r.Field(field)
		if !ok {
			continue
		}
		if v, ok := f.Value.Float(); ok {
			total += v
		}
	}
	return total
}

// Reporter builds one kind of report from a graph.
type Reporter interface {
	// Kind returns the report's identifier.
	Kind() Kind

	// Title returns a human-readable heading.
	Title() string

	// Build runs the report against g. It never fails: per-entity problems
	// are encoded in the records.
	Build(g ifc.Graph) *Report
}

// newRecord fills the identifying part of a record.
func newRecord(e ifc.Entity) Record {
	r := Record{
		ID:       e.ID(),
		GlobalID: e.GlobalID(),
		Name:     ifc.Name(e),
	}
	if r.GlobalID != "" {
		if id, err := ifc.ExpandGUID(r.GlobalID); err == nil {
			r.GUID = id.String()
		}
	}
	return r
}

// collect builds one record per entity of type t, in model order.
func collect(g ifc.Graph, t ifc.EntityType, fill func(ifc.Entity, *Record)) []Record {
	entities := g.EntitiesOfType(t)
	records := make([]Record, 0, len(entities))
	seen := make(map[int]bool, len(entities))
	for _, e := range entities {
		if seen[e.ID()] {
			continue
		}
		seen[e.ID()] = true
		r := newRecord(e)
		fill(e, &r)
		records = append(records, r)
	}
	return records
}

func newReport(r Reporter, g ifc.Graph, records []Record) *Report {
	return &Report{
		Kind:    r.Kind(),
		Title:   r.Title(),
		Schema:  g.Schema(),
		Count:   len(records),
		Records: records,
	}
}
