package geometry

import (
	"ifcmetrics/internal/ifc"
	"ifcmetrics/internal/units"
)

// Footprint returns a wall's cross-sectional area (length × thickness)
// from its first rectangular swept-solid body.
func (x *Extractor) Footprint(wall ifc.Entity) (units.Measure, bool) {
	item, ok := firstRectExtrusion(wall, wallBodyTypes)
	if !ok {
		return units.Measure{}, false
	}
	return profileArea(item.Profile), true
}

// WallFootprint sums the footprints of every wall bounding space. Walls
// without usable geometry contribute nothing; a space with no bounding
// walls yields zero.
func (x *Extractor) WallFootprint(space ifc.Entity) units.Measure {
	var (
		total units.Measure
		seen  bool
	)
	if space == nil {
		return total
	}
	for _, el := range space.Relations(ifc.BoundedBy) {
		if el == nil || !el.Type().IsA(ifc.Wall) {
			continue
		}
		fp, ok := x.Footprint(el)
		if !ok {
			x.log().Debug("bounding wall has no footprint", "space", space.ID(), "wall", el.ID())
			continue
		}
		x.log().Debug("bounding wall footprint", "space", space.ID(), "wall", el.ID(), "area", fp.Value)
		if !seen {
			total, seen = fp, true
			continue
		}
		total = total.Add(fp)
	}
	return total
}
