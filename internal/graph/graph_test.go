package graph

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ifcmetrics/internal/ifc"
	"ifcmetrics/internal/units"
)

const sampleModel = `
schema: IFC4
units:
  length: MILLIMETRE
entities:
  - id: 1
    global_id: 2O2Fr$t4X7Zf8NOew3FLOH
    type: IfcSpace
    attributes:
      Name: Kitchen
    defined_by: [2, 99]
    bounded_by: [3]
    representations:
      - type: SweptSolid
        items:
          - type: IfcExtrudedAreaSolid
            depth: 2700
            profile: {type: IfcRectangleProfileDef, x_dim: 4000, y_dim: 5000}
  - id: 2
    type: IfcElementQuantity
    attributes: {Name: Qto_SpaceBaseQuantities}
    properties:
      - {name: NetFloorArea, value: 20.0, unit: SQUARE_METRE}
      - {name: Height}
  - id: 3
    type: IfcWallStandardCase
    attributes: {Name: W-1, Description: partition}
    placement: {x: 1000, y: 0, z: 0}
  - id: 4
    type: IfcWall
`

func writeModel(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	return path
}

func TestOpenSampleModel(t *testing.T) {
	g, err := Open(writeModel(t, sampleModel), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if g.Schema() != "IFC4" {
		t.Errorf("Schema = %q, want IFC4", g.Schema())
	}
	if g.Len() != 4 {
		t.Errorf("Len = %d, want 4", g.Len())
	}
	u := g.Units()
	if u.Length != units.Millimetre || u.Area != units.SquareMillimetre {
		t.Errorf("Units = %+v, want mm / mm²", u)
	}

	spaces := g.EntitiesOfType(ifc.Space)
	if len(spaces) != 1 {
		t.Fatalf("spaces = %d, want 1", len(spaces))
	}
	space := spaces[0]
	if space.GlobalID() != "2O2Fr$t4X7Zf8NOew3FLOH" {
		t.Errorf("GlobalID = %q", space.GlobalID())
	}

	// The dangling id 99 is dropped, the real set survives.
	defs := space.Relations(ifc.DefinedBy)
	if len(defs) != 1 || defs[0].ID() != 2 {
		t.Fatalf("DefinedBy = %v, want [#2]", defs)
	}
	props := defs[0].Properties()
	if len(props) != 2 {
		t.Fatalf("properties = %d, want 2", len(props))
	}
	if props[0].Unit != units.SquareMetre {
		t.Errorf("NetFloorArea unit = %v, want SQUARE_METRE", props[0].Unit)
	}
	if _, ok := props[1].Number(); ok {
		t.Error("Height without value must not be numeric")
	}

	reps := space.Representations()
	if len(reps) != 1 || len(reps[0].Items) != 1 {
		t.Fatalf("representations = %+v", reps)
	}
	item := reps[0].Items[0]
	if item.Depth != units.Of(2700, units.Millimetre) {
		t.Errorf("Depth = %+v, want 2700 mm", item.Depth)
	}
	if item.Profile == nil || item.Profile.XDim.Value != 4000 || item.Profile.YDim.Unit != units.Millimetre {
		t.Errorf("Profile = %+v", item.Profile)
	}

	bounds := space.Relations(ifc.BoundedBy)
	if len(bounds) != 1 || bounds[0].Type() != ifc.WallStandardCase {
		t.Fatalf("BoundedBy = %v", bounds)
	}
	p, ok := bounds[0].Placement()
	if !ok || p.X != units.Of(1000, units.Millimetre) {
		t.Errorf("Placement = %+v, %v", p, ok)
	}
}

func TestEntitiesOfTypeIncludesSubtypesInOrder(t *testing.T) {
	g, err := Parse([]byte(sampleModel), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	walls := g.EntitiesOfType(ifc.Wall)
	if len(walls) != 2 {
		t.Fatalf("walls = %d, want 2", len(walls))
	}
	if walls[0].ID() != 3 || walls[1].ID() != 4 {
		t.Errorf("wall order = [%d %d], want [3 4]", walls[0].ID(), walls[1].ID())
	}
	if got := g.EntitiesOfType(ifc.Door); len(got) != 0 {
		t.Errorf("doors = %d, want 0", len(got))
	}
}

func TestAttributeAbsence(t *testing.T) {
	g := MustBuild(&Document{Entities: []EntityDoc{
		{ID: 1, Type: "IfcDoor", Attributes: map[string]any{"Name": "D1", "Tag": nil}},
	}})
	e, ok := g.Entity(1)
	if !ok {
		t.Fatal("entity 1 missing")
	}
	if _, ok := e.Attribute("Tag"); ok {
		t.Error("null attribute must read as absent")
	}
	if _, ok := e.Attribute("OverallWidth"); ok {
		t.Error("missing attribute must read as absent")
	}
	if _, ok := e.Placement(); ok {
		t.Error("missing placement must read as absent")
	}
	if _, ok := g.Entity(42); ok {
		t.Error("unknown id must not resolve")
	}
}

func TestBuildRejectsStructuralProblems(t *testing.T) {
	doc := &Document{
		Units: UnitsDoc{Length: "FURLONG"},
		Entities: []EntityDoc{
			{ID: 1, Type: "IfcSpace"},
			{ID: 1, Type: "IfcSpace"},
			{ID: 0, Type: "IfcWall"},
			{ID: 2},
			{ID: 3, Type: "IfcPropertySet", Properties: []PropertyDoc{{Name: "A", Unit: "ACRE"}}},
		},
	}
	_, err := Build(doc, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var oe *OpenError
	if !errors.As(err, &oe) {
		t.Fatalf("error %T is not *OpenError", err)
	}
	msg := err.Error()
	for _, want := range []string{"units.length", "duplicate id", "missing id", "missing type", "ACRE"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}

func TestOpenFailures(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"empty path", func(t *testing.T) string { return "" }},
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") }},
		{"corrupt file", func(t *testing.T) string { return writeModel(t, "entities: [unterminated") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Open(tt.path(t), nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if g != nil {
				t.Error("no partial graph may be returned")
			}
			var oe *OpenError
			if !errors.As(err, &oe) {
				t.Errorf("error %T is not *OpenError", err)
			}
		})
	}
}

func TestLoaderOpenMissingIsNilGraph(t *testing.T) {
	g, err := Loader{}.Open(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil || g != nil {
		t.Fatalf("Loader.Open = (%v, %v), want (nil, error)", g, err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should unwrap to os.ErrNotExist: %v", err)
	}
}
