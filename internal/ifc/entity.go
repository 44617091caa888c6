// Package ifc defines the read-only view of an already-parsed building model
// that the quantity engine consumes: entities, their property and quantity
// sets, space boundaries and simple extruded geometry.
//
// The package only declares the contract. internal/graph provides an
// in-memory implementation; any other model source can be plugged in by
// satisfying Graph and Entity.
package ifc

import (
	"math"
	"strings"

	"github.com/spf13/cast"

	"ifcmetrics/internal/units"
)

// EntityType is an IFC class name such as "IfcWall".
type EntityType string

const (
	Wall             EntityType = "IfcWall"
	WallStandardCase EntityType = "IfcWallStandardCase"
	Door             EntityType = "IfcDoor"
	Window           EntityType = "IfcWindow"
	Space            EntityType = "IfcSpace"
	PropertySetType  EntityType = "IfcPropertySet"
	QuantitySetType  EntityType = "IfcElementQuantity"
)

// subtypes lists the IFC subclasses that answer IsA for their parent.
var subtypes = map[EntityType][]EntityType{
	Wall: {WallStandardCase, "IfcWallElementedCase"},
}

// IsA reports whether t is parent or one of its known subclasses.
func (t EntityType) IsA(parent EntityType) bool {
	if strings.EqualFold(string(t), string(parent)) {
		return true
	}
	for _, sub := range subtypes[parent] {
		if strings.EqualFold(string(t), string(sub)) {
			return true
		}
	}
	return false
}

// RelationKind selects which relationship Entity.Relations traverses.
type RelationKind int

const (
	// DefinedBy yields the property and quantity sets attached to an
	// entity, in their natural order.
	DefinedBy RelationKind = iota
	// BoundedBy yields the building elements related to a space through
	// its space boundaries.
	BoundedBy
)

// Graph is an opened building model.
type Graph interface {
	// Schema returns the model schema identifier, e.g. "IFC4".
	Schema() string
	// EntitiesOfType returns every entity whose type IsA t, in model order.
	EntitiesOfType(t EntityType) []Entity
}

// Entity is a non-owning handle to one node of a Graph. Every accessor
// reports absence explicitly; a missing attribute is never an error.
type Entity interface {
	ID() int
	GlobalID() string
	Type() EntityType
	Attribute(name string) (any, bool)
	Relations(kind RelationKind) []Entity
	// Properties returns the members of a property or quantity set; other
	// entities return nil.
	Properties() []Property
	Representations() []Representation
	Placement() (Point, bool)
	// Units returns the project units the entity's raw values are recorded in.
	Units() UnitContext
}

// UnitContext holds a model's project units. Zero values mean unknown.
type UnitContext struct {
	Length units.Unit
	Area   units.Unit
}

// Property is one named member of a property or quantity set. Value is nil
// when the member carries no value.
type Property struct {
	Name  string
	Value any
	Unit  units.Unit
}

// Number returns the property's value as a finite float64. Strings holding
// a number are accepted; booleans, non-numeric text and missing values are
// not.
func (p Property) Number() (float64, bool) {
	return toNumber(p.Value)
}

// Representation is one geometric representation of an entity, e.g. a
// "SweptSolid" body.
type Representation struct {
	Type  string
	Items []Item
}

// Item is a representation item. Only extruded area solids are described
// in detail; other items keep their type name.
type Item struct {
	Type    string
	Depth   units.Measure
	Profile *Profile
}

// Profile is the swept cross-section of an extruded solid.
type Profile struct {
	Type string
	XDim units.Measure
	YDim units.Measure
}

// Point is a placement location in project length units.
type Point struct {
	X, Y, Z units.Measure
}

// Representation, item and profile type names the engine recognizes.
const (
	SweptSolid          = "SweptSolid"
	Polygon             = "Polygon"
	ExtrudedAreaSolid   = "IfcExtrudedAreaSolid"
	RectangleProfileDef = "IfcRectangleProfileDef"
)

// StringAttr returns a non-empty string attribute.
func StringAttr(e Entity, name string) (string, bool) {
	v, ok := e.Attribute(name)
	if !ok || v == nil {
		return "", false
	}
	s, err := cast.ToStringE(v)
	if err != nil || s == "" {
		return "", false
	}
	return s, true
}

// NumberAttr returns a finite numeric attribute.
func NumberAttr(e Entity, name string) (float64, bool) {
	v, ok := e.Attribute(name)
	if !ok {
		return 0, false
	}
	return toNumber(v)
}

// Name returns the entity's Name attribute, or "Unnamed".
func Name(e Entity) string {
	if s, ok := StringAttr(e, "Name"); ok {
		return s
	}
	return "Unnamed"
}

func toNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case nil, bool:
		return 0, false
	case string:
		if strings.TrimSpace(x) == "" {
			return 0, false
		}
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
