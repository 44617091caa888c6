package graph

// document.go: YAML serialization of an already-parsed building model.
//
// The document is an interchange form of the model graph, not IFC/STEP.
// Entity order in the file is the iteration order the graph exposes.

// Document is the root of a model-graph file.
type Document struct {
	Schema   string      `yaml:"schema"`
	Units    UnitsDoc    `yaml:"units,omitempty"`
	Entities []EntityDoc `yaml:"entities"`
}

// UnitsDoc names the project units. Empty means unknown.
type UnitsDoc struct {
	Length string `yaml:"length,omitempty"`
	Area   string `yaml:"area,omitempty"`
}

// EntityDoc is one entity. DefinedBy and BoundedBy hold entity ids.
type EntityDoc struct {
	ID              int                 `yaml:"id"`
	GlobalID        string              `yaml:"global_id,omitempty"`
	Type            string              `yaml:"type"`
	Attributes      map[string]any      `yaml:"attributes,omitempty"`
	DefinedBy       []int               `yaml:"defined_by,omitempty"`
	BoundedBy       []int               `yaml:"bounded_by,omitempty"`
	Properties      []PropertyDoc       `yaml:"properties,omitempty"`
	Representations []RepresentationDoc `yaml:"representations,omitempty"`
	Placement       *PointDoc           `yaml:"placement,omitempty"`
}

// PropertyDoc is one property or quantity. A null or missing value means
// the member carries no value.
type PropertyDoc struct {
	Name  string `yaml:"name"`
	Value any    `yaml:"value,omitempty"`
	Unit  string `yaml:"unit,omitempty"`
}

// RepresentationDoc is one geometric representation.
type RepresentationDoc struct {
	Type  string    `yaml:"type"`
	Items []ItemDoc `yaml:"items,omitempty"`
}

// ItemDoc is one representation item.
type ItemDoc struct {
	Type    string      `yaml:"type"`
	Depth   float64     `yaml:"depth,omitempty"`
	Profile *ProfileDoc `yaml:"profile,omitempty"`
}

// ProfileDoc is an extrusion profile.
type ProfileDoc struct {
	Type string  `yaml:"type"`
	XDim float64 `yaml:"x_dim,omitempty"`
	YDim float64 `yaml:"y_dim,omitempty"`
}

// PointDoc is a placement location.
type PointDoc struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}
