// Package geometry derives quantities from simple extruded-solid
// representations: the area and depth of a rectangular profile, and the
// footprint of walls bounding a space.
//
// Only rectangle-profile extrusions are understood. Any other profile or
// item yields no value rather than an approximation, and only the first
// rectangular extrusion found is used.
package geometry

import (
	"math"

	"github.com/charmbracelet/log"

	"ifcmetrics/internal/ifc"
	"ifcmetrics/internal/logging"
	"ifcmetrics/internal/units"
)

// Representation types scanned for a space's body and a wall's body.
var (
	spaceBodyTypes = []string{ifc.SweptSolid, ifc.Polygon}
	wallBodyTypes  = []string{ifc.SweptSolid}
)

// Extractor reads quantities off entity geometry. The zero value is ready
// to use.
type Extractor struct {
	Logger *log.Logger
}

// New returns an Extractor logging to logger.
func New(logger *log.Logger) *Extractor {
	return &Extractor{Logger: logger}
}

func (x *Extractor) log() *log.Logger {
	if x == nil {
		return logging.Discard()
	}
	return logging.OrDiscard(x.Logger)
}

// Area returns the profile area (XDim × YDim) of the entity's first
// rectangular extrusion, in the square of the model's length unit.
func (x *Extractor) Area(e ifc.Entity) (units.Measure, bool) {
	item, ok := firstRectExtrusion(e, spaceBodyTypes)
	if !ok {
		return units.Measure{}, false
	}
	a := profileArea(item.Profile)
	x.log().Debug("area from geometry", "entity", e.ID(), "x_dim", item.Profile.XDim.Value, "y_dim", item.Profile.YDim.Value, "area", a.Value)
	return a, true
}

// Height returns the extrusion depth of the entity's first rectangular
// extrusion.
func (x *Extractor) Height(e ifc.Entity) (units.Measure, bool) {
	item, ok := firstRectExtrusion(e, spaceBodyTypes)
	if !ok || !validDim(item.Depth.Value) {
		return units.Measure{}, false
	}
	x.log().Debug("height from geometry", "entity", e.ID(), "depth", item.Depth.Value)
	return item.Depth, true
}

// firstRectExtrusion scans representations of the given types, in order,
// for the first extruded area solid with a usable rectangle profile.
func firstRectExtrusion(e ifc.Entity, repTypes []string) (ifc.Item, bool) {
	if e == nil {
		return ifc.Item{}, false
	}
	for _, rep := range e.Representations() {
		if !contains(repTypes, rep.Type) {
			continue
		}
		for _, item := range rep.Items {
			if isRectExtrusion(item) {
				return item, true
			}
		}
	}
	return ifc.Item{}, false
}

func isRectExtrusion(item ifc.Item) bool {
	if item.Type != ifc.ExtrudedAreaSolid || item.Profile == nil {
		return false
	}
	p := item.Profile
	return p.Type == ifc.RectangleProfileDef && validDim(p.XDim.Value) && validDim(p.YDim.Value)
}

func profileArea(p *ifc.Profile) units.Measure {
	return units.Of(p.XDim.Value*p.YDim.Value, p.XDim.Unit.Squared())
}

// validDim rejects zero extents: a dimension missing from the model reads
// as zero.
func validDim(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
