// Package graph is an in-memory model graph: it opens a YAML model-graph
// document once and serves read-only entity queries from memory.
//
// A *Graph is immutable after Open and safe for concurrent readers.
package graph

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"ifcmetrics/internal/ifc"
	"ifcmetrics/internal/logging"
	"ifcmetrics/internal/units"
)

// OpenError reports that a model could not be opened. It unwraps to the
// underlying cause.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("open model: %v", e.Err)
	}
	return fmt.Sprintf("open model %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// ErrEmptyPath is returned by Open when no path was given.
var ErrEmptyPath = errors.New("no model path given")

// Graph is an opened, read-only model.
type Graph struct {
	schema   string
	units    ifc.UnitContext
	entities []*entity
	byID     map[int]*entity
}

// Loader opens model files. It satisfies the engine's opener contract.
type Loader struct {
	Logger *log.Logger
}

// Open reads and builds the model at path.
func (l Loader) Open(path string) (ifc.Graph, error) {
	g, err := Open(path, l.Logger)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Open reads the YAML document at path and builds a Graph. Every failure
// is an *OpenError.
func Open(path string, logger *log.Logger) (*Graph, error) {
	if path == "" {
		return nil, &OpenError{Err: ErrEmptyPath}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	g, err := Parse(data, logger)
	if err != nil {
		var oe *OpenError
		if errors.As(err, &oe) {
			oe.Path = path
			return nil, oe
		}
		return nil, &OpenError{Path: path, Err: err}
	}
	logging.OrDiscard(logger).Debug("model opened", "path", path, "schema", g.schema, "entities", len(g.entities))
	return g, nil
}

// Parse builds a Graph from YAML document bytes.
func Parse(data []byte, logger *log.Logger) (*Graph, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &OpenError{Err: fmt.Errorf("unmarshal: %w", err)}
	}
	return Build(&doc, logger)
}

// MustBuild is Build for fixtures; it panics on error.
func MustBuild(doc *Document) *Graph {
	g, err := Build(doc, nil)
	if err != nil {
		panic(err)
	}
	return g
}

// Build validates doc and links its entities. Structural problems (missing
// or duplicate ids, missing types, unknown units) fail the whole build;
// relations pointing at unknown ids are dropped with a warning.
func Build(doc *Document, logger *log.Logger) (*Graph, error) {
	logger = logging.OrDiscard(logger)
	var errs *multierror.Error

	lengthUnit, err := units.ParseUnit(doc.Units.Length)
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("units.length: %w", err))
	}
	areaUnit, err := units.ParseUnit(doc.Units.Area)
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("units.area: %w", err))
	}
	if areaUnit == units.Unknown {
		areaUnit = lengthUnit.Squared()
	}

	g := &Graph{
		schema:   doc.Schema,
		units:    ifc.UnitContext{Length: lengthUnit, Area: areaUnit},
		entities: make([]*entity, 0, len(doc.Entities)),
		byID:     make(map[int]*entity, len(doc.Entities)),
	}

	for i := range doc.Entities {
		d := &doc.Entities[i]
		if d.ID <= 0 {
			errs = multierror.Append(errs, fmt.Errorf("entities[%d]: missing id", i))
			continue
		}
		if d.Type == "" {
			errs = multierror.Append(errs, fmt.Errorf("entity #%d: missing type", d.ID))
			continue
		}
		if _, dup := g.byID[d.ID]; dup {
			errs = multierror.Append(errs, fmt.Errorf("entity #%d: duplicate id", d.ID))
			continue
		}
		e, err := newEntity(g, d)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("entity #%d: %w", d.ID, err))
			continue
		}
		g.entities = append(g.entities, e)
		g.byID[d.ID] = e
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, &OpenError{Err: err}
	}

	for _, e := range g.entities {
		e.definedBy = g.link(e, "defined_by", e.doc.DefinedBy, logger)
		e.boundedBy = g.link(e, "bounded_by", e.doc.BoundedBy, logger)
	}
	return g, nil
}

func (g *Graph) link(from *entity, rel string, ids []int, logger *log.Logger) []ifc.Entity {
	if len(ids) == 0 {
		return nil
	}
	out := make([]ifc.Entity, 0, len(ids))
	for _, id := range ids {
		to, ok := g.byID[id]
		if !ok {
			logger.Warn("dangling relation dropped", "entity", from.ID(), "relation", rel, "target", id)
			continue
		}
		out = append(out, to)
	}
	return out
}

// Schema returns the model schema identifier.
func (g *Graph) Schema() string { return g.schema }

// Units returns the model's project units.
func (g *Graph) Units() ifc.UnitContext { return g.units }

// Len returns the number of entities in the model.
func (g *Graph) Len() int { return len(g.entities) }

// EntitiesOfType returns every entity whose type IsA t, in document order.
func (g *Graph) EntitiesOfType(t ifc.EntityType) []ifc.Entity {
	var out []ifc.Entity
	for _, e := range g.entities {
		if e.Type().IsA(t) {
			out = append(out, e)
		}
	}
	return out
}

// Entity looks up an entity by id.
func (g *Graph) Entity(id int) (ifc.Entity, bool) {
	e, ok := g.byID[id]
	if !ok {
		return nil, false
	}
	return e, true
}
