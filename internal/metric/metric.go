// Package metric derives space quantities from resolved and extracted
// values: gross area, ceiling height, the wall footprint, net floor area
// and volume. Every result is in metres, square metres or cubic metres.
package metric

import (
	"github.com/charmbracelet/log"

	"ifcmetrics/internal/geometry"
	"ifcmetrics/internal/ifc"
	"ifcmetrics/internal/logging"
	"ifcmetrics/internal/resolve"
	"ifcmetrics/internal/units"
)

// Source tags for values that did not come from a property.
const (
	SourceGeometry = "geometry"
	SourceDerived  = "derived"
)

// Queries are the ranked lookups used for each base quantity.
type Queries struct {
	Area   resolve.Query
	Height resolve.Query
}

// DefaultQueries returns the standard IFC names in priority order.
func DefaultQueries() Queries {
	return Queries{
		Area: resolve.Query{
			Names: []string{"NetFloorArea", "GrossFloorArea", "Area"},
			Kinds: resolve.AnySet,
		},
		Height: resolve.Query{
			Names: []string{"NetCeilingHeight", "Height", "GrossCeilingHeight"},
			Kinds: resolve.AnySet,
		},
	}
}

// Result is one derived quantity. OK is false when the quantity could not
// be resolved; Value is then meaningless.
type Result struct {
	Value     float64
	OK        bool
	Source    string
	Heuristic bool
}

func unavailable() Result { return Result{} }

// Calculator combines the resolver, the geometry fallback and the unit
// normalizer. It holds no per-query state and may be shared.
type Calculator struct {
	Resolver   *resolve.Resolver
	Geometry   *geometry.Extractor
	Normalizer *units.Normalizer
	Queries    Queries
	Logger     *log.Logger
}

// New returns a Calculator using the default queries.
func New(norm *units.Normalizer, logger *log.Logger) *Calculator {
	return &Calculator{
		Resolver:   resolve.New(logger),
		Geometry:   geometry.New(logger),
		Normalizer: norm,
		Queries:    DefaultQueries(),
		Logger:     logger,
	}
}

func (c *Calculator) log() *log.Logger { return logging.OrDiscard(c.Logger) }

// GrossArea resolves a space's floor area from its sets, falling back to
// its extruded geometry.
func (c *Calculator) GrossArea(space ifc.Entity) Result {
	if space == nil {
		return unavailable()
	}
	q := c.Queries.Area
	q.Accept = areaUnit
	if m, ok := c.Resolver.Resolve(space, q); ok {
		meas := m.Measure
		if meas.Unit == units.Unknown {
			meas.Unit = space.Units().Area
		}
		if r := c.area(meas, m.Source()); r.OK {
			return r
		}
		c.log().Debug("property area rejected", "entity", space.ID(), "source", m.Source(), "value", m.Measure.Value)
	}
	if meas, ok := c.Geometry.Area(space); ok {
		return c.area(meas, SourceGeometry)
	}
	c.log().Debug("area unavailable", "entity", space.ID())
	return unavailable()
}

// Height resolves a space's ceiling height from its sets, falling back to
// the extrusion depth.
func (c *Calculator) Height(space ifc.Entity) Result {
	if space == nil {
		return unavailable()
	}
	q := c.Queries.Height
	q.Accept = lengthUnit
	if m, ok := c.Resolver.Resolve(space, q); ok {
		meas := m.Measure
		if meas.Unit == units.Unknown {
			meas.Unit = space.Units().Length
		}
		if r := c.length(meas, m.Source()); r.OK {
			return r
		}
		c.log().Debug("property height rejected", "entity", space.ID(), "source", m.Source(), "value", m.Measure.Value)
	}
	if meas, ok := c.Geometry.Height(space); ok {
		return c.length(meas, SourceGeometry)
	}
	c.log().Debug("height unavailable", "entity", space.ID())
	return unavailable()
}

// areaUnit and lengthUnit refuse properties tagged with a unit of the
// wrong dimension.
func areaUnit(m units.Measure) bool   { return m.Unit == units.Unknown || m.Unit.IsArea() }
func lengthUnit(m units.Measure) bool { return m.Unit == units.Unknown || m.Unit.IsLength() }

// WallFootprint is the normalized footprint of the walls bounding space.
// It is always available; no walls means zero.
func (c *Calculator) WallFootprint(space ifc.Entity) Result {
	sum := c.Geometry.WallFootprint(space)
	if sum.Value == 0 {
		return Result{OK: true, Source: SourceGeometry}
	}
	return c.area(sum, SourceGeometry)
}

// NetArea is gross area minus wall footprint, clamped at zero. It is
// unavailable only when the gross area is.
func (c *Calculator) NetArea(space ifc.Entity) Result {
	return c.net(space, c.GrossArea(space))
}

func (c *Calculator) net(space ifc.Entity, gross Result) Result {
	if !gross.OK {
		return unavailable()
	}
	fp := c.WallFootprint(space)
	v := gross.Value - fp.Value
	if v < 0 {
		c.log().Debug("net area clamped", "entity", space.ID(), "gross", gross.Value, "footprint", fp.Value)
		v = 0
	}
	return Result{
		Value:     v,
		OK:        true,
		Source:    gross.Source,
		Heuristic: gross.Heuristic || fp.Heuristic,
	}
}

// Volume is net area times height. It is unavailable when either operand
// is.
func (c *Calculator) Volume(space ifc.Entity) Result {
	return volume(c.NetArea(space), c.Height(space))
}

func volume(net, height Result) Result {
	if !net.OK || !height.OK {
		return unavailable()
	}
	return Result{
		Value:     net.Value * height.Value,
		OK:        true,
		Source:    SourceDerived,
		Heuristic: net.Heuristic || height.Heuristic,
	}
}

// SpaceMetrics holds every quantity derived for one space.
type SpaceMetrics struct {
	Gross     Result
	Footprint Result
	Net       Result
	Height    Result
	Volume    Result
}

// Space derives all quantities for space, resolving each base value once.
func (c *Calculator) Space(space ifc.Entity) SpaceMetrics {
	gross := c.GrossArea(space)
	net := c.net(space, gross)
	height := c.Height(space)
	return SpaceMetrics{
		Gross:     gross,
		Footprint: c.WallFootprint(space),
		Net:       net,
		Height:    height,
		Volume:    volume(net, height),
	}
}

// Length normalizes a length measure, rejecting negative values.
func (c *Calculator) Length(m units.Measure) Result { return c.length(m, "") }

func (c *Calculator) length(m units.Measure, source string) Result {
	r := c.Normalizer.Length(m)
	return finish(r, source)
}

func (c *Calculator) area(m units.Measure, source string) Result {
	r := c.Normalizer.Area(m)
	return finish(r, source)
}

func finish(r units.Result, source string) Result {
	if r.Value < 0 {
		return unavailable()
	}
	return Result{Value: r.Value, OK: true, Source: source, Heuristic: r.Heuristic}
}
