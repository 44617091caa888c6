// Package resolve finds a named numeric value among the property and
// quantity sets attached to an entity.
//
// Precedence is data: a Query lists candidate names in priority order and
// the set kinds it may read from. The resolver walks the entity's attached
// sets in their natural order; inside each eligible set the first candidate
// name present wins, regardless of member order. The first set that yields
// a match ends the search.
package resolve

import (
	"math"

	"github.com/charmbracelet/log"

	"ifcmetrics/internal/ifc"
	"ifcmetrics/internal/logging"
	"ifcmetrics/internal/units"
)

// SetKind is a bit set of attachable set kinds.
type SetKind uint8

const (
	PropertySets SetKind = 1 << iota
	QuantitySets

	AnySet = PropertySets | QuantitySets
)

// kindOf classifies an attached definition entity.
func kindOf(t ifc.EntityType) SetKind {
	switch {
	case t.IsA(ifc.PropertySetType):
		return PropertySets
	case t.IsA(ifc.QuantitySetType):
		return QuantitySets
	}
	return 0
}

// Query is a ranked lookup. Accept, when set, vets every candidate; a
// rejected candidate is skipped like a missing one.
type Query struct {
	Names  []string
	Kinds  SetKind
	Accept func(units.Measure) bool
}

// usable reports whether m may answer q. Negative and non-finite values
// never match.
func (q Query) usable(m units.Measure) bool {
	if math.IsNaN(m.Value) || math.IsInf(m.Value, 0) || m.Value < 0 {
		return false
	}
	return q.Accept == nil || q.Accept(m)
}

// Match describes where a resolved value came from.
type Match struct {
	Set      string
	Property string
	Measure  units.Measure
}

// Source renders the match as "property:<set>.<name>".
func (m Match) Source() string {
	set := m.Set
	if set == "" {
		set = "?"
	}
	return "property:" + set + "." + m.Property
}

// Resolver runs queries. The zero value is ready to use.
type Resolver struct {
	Logger *log.Logger
}

// New returns a Resolver logging to logger.
func New(logger *log.Logger) *Resolver {
	return &Resolver{Logger: logger}
}

// Resolve runs q against e. A member whose value is missing, not numeric,
// negative or refused by q.Accept does not match and the scan moves on to
// the next candidate name, then the next set.
func (r *Resolver) Resolve(e ifc.Entity, q Query) (Match, bool) {
	if e == nil || len(q.Names) == 0 {
		return Match{}, false
	}
	kinds := q.Kinds
	if kinds == 0 {
		kinds = AnySet
	}
	for _, set := range e.Relations(ifc.DefinedBy) {
		if set == nil || kindOf(set.Type())&kinds == 0 {
			continue
		}
		m, ok := matchInSet(set, q)
		if !ok {
			continue
		}
		if r != nil {
			logging.OrDiscard(r.Logger).Debug("property resolved",
				"entity", e.ID(), "source", m.Source(), "value", m.Measure.Value)
		}
		return m, true
	}
	return Match{}, false
}

// matchInSet tries each candidate name in priority order.
func matchInSet(set ifc.Entity, q Query) (Match, bool) {
	props := set.Properties()
	if len(props) == 0 {
		return Match{}, false
	}
	setName, _ := ifc.StringAttr(set, "Name")
	for _, name := range q.Names {
		for _, p := range props {
			if p.Name != name {
				continue
			}
			v, ok := p.Number()
			if !ok {
				continue
			}
			m := units.Of(v, p.Unit)
			if !q.usable(m) {
				continue
			}
			return Match{Set: setName, Property: p.Name, Measure: m}, true
		}
	}
	return Match{}, false
}
