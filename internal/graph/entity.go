package graph

import (
	"fmt"

	"ifcmetrics/internal/ifc"
	"ifcmetrics/internal/units"
)

// entity implements ifc.Entity over an EntityDoc.
type entity struct {
	graph     *Graph
	doc       *EntityDoc
	props     []ifc.Property
	reps      []ifc.Representation
	definedBy []ifc.Entity
	boundedBy []ifc.Entity
}

func newEntity(g *Graph, d *EntityDoc) (*entity, error) {
	e := &entity{graph: g, doc: d}
	for _, p := range d.Properties {
		u, err := units.ParseUnit(p.Unit)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", p.Name, err)
		}
		e.props = append(e.props, ifc.Property{Name: p.Name, Value: p.Value, Unit: u})
	}
	length := g.units.Length
	for _, r := range d.Representations {
		rep := ifc.Representation{Type: r.Type}
		for _, it := range r.Items {
			item := ifc.Item{Type: it.Type, Depth: units.Of(it.Depth, length)}
			if it.Profile != nil {
				item.Profile = &ifc.Profile{
					Type: it.Profile.Type,
					XDim: units.Of(it.Profile.XDim, length),
					YDim: units.Of(it.Profile.YDim, length),
				}
			}
			rep.Items = append(rep.Items, item)
		}
		e.reps = append(e.reps, rep)
	}
	return e, nil
}

func (e *entity) ID() int { return e.doc.ID }

func (e *entity) GlobalID() string { return e.doc.GlobalID }

func (e *entity) Type() ifc.EntityType { return ifc.EntityType(e.doc.Type) }

func (e *entity) Units() ifc.UnitContext { return e.graph.units }

func (e *entity) Attribute(name string) (any, bool) {
	v, ok := e.doc.Attributes[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (e *entity) Relations(kind ifc.RelationKind) []ifc.Entity {
	switch kind {
	case ifc.DefinedBy:
		return e.definedBy
	case ifc.BoundedBy:
		return e.boundedBy
	}
	return nil
}

func (e *entity) Properties() []ifc.Property { return e.props }

func (e *entity) Representations() []ifc.Representation { return e.reps }

func (e *entity) Placement() (ifc.Point, bool) {
	p := e.doc.Placement
	if p == nil {
		return ifc.Point{}, false
	}
	u := e.graph.units.Length
	return ifc.Point{X: units.Of(p.X, u), Y: units.Of(p.Y, u), Z: units.Of(p.Z, u)}, true
}
