package report

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"ifcmetrics/internal/ifc"
	"ifcmetrics/internal/logging"
	"ifcmetrics/internal/metric"
	"ifcmetrics/internal/resolve"
	"ifcmetrics/internal/units"
)

// ErrNoGraph is returned when a model could not be opened. No report can
// be produced without a graph.
var ErrNoGraph = errors.New("no model graph")

// Opener opens a model file. graph.Loader is the standard implementation.
type Opener interface {
	Open(path string) (ifc.Graph, error)
}

// Options configures an Engine. Zero fields take their defaults.
type Options struct {
	Normalizer    *units.Normalizer
	Queries       metric.Queries
	GValue        resolve.Query
	DefaultGValue float64
	Irradiance    float64
	Logger        *log.Logger
}

// Engine opens models and holds the configured reporters.
type Engine struct {
	opener    Opener
	reporters map[Kind]Reporter
	logger    *log.Logger
}

// NewEngine returns an Engine opening models through opener.
func NewEngine(opener Opener, opts Options) *Engine {
	calc := metric.New(opts.Normalizer, opts.Logger)
	def := metric.DefaultQueries()
	if len(opts.Queries.Area.Names) > 0 {
		calc.Queries.Area = opts.Queries.Area
	} else {
		calc.Queries.Area = def.Area
	}
	if len(opts.Queries.Height.Names) > 0 {
		calc.Queries.Height = opts.Queries.Height
	} else {
		calc.Queries.Height = def.Height
	}

	e := &Engine{
		opener:    opener,
		reporters: make(map[Kind]Reporter),
		logger:    logging.OrDiscard(opts.Logger),
	}
	for _, r := range []Reporter{
		WallReporter{Normalizer: opts.Normalizer},
		Doors(calc),
		Windows(calc),
		AreaReporter{Calc: calc},
		VolumeReporter{Calc: calc},
		SolarReporter{Calc: calc, GValue: opts.GValue, Default: opts.DefaultGValue, Irradiance: opts.Irradiance},
	} {
		e.reporters[r.Kind()] = r
	}
	return e
}

// Reporter returns the reporter for kind.
func (e *Engine) Reporter(kind Kind) (Reporter, bool) {
	r, ok := e.reporters[kind]
	return r, ok
}

// Open opens the model at path and returns a query session over it. Any
// failure wraps ErrNoGraph and no session is returned.
func (e *Engine) Open(path string) (*Session, error) {
	if e.opener == nil {
		return nil, fmt.Errorf("%w: no opener configured", ErrNoGraph)
	}
	g, err := e.opener.Open(path)
	if err != nil {
		e.logger.Error("model could not be opened", "path", path, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrNoGraph, err)
	}
	if g == nil {
		return nil, ErrNoGraph
	}
	e.logger.Info("model opened", "path", path, "schema", g.Schema())
	return &Session{engine: e, graph: g}, nil
}

// Session runs reports against one opened graph. The graph is only read,
// so a Session may serve concurrent Report calls.
type Session struct {
	engine *Engine
	graph  ifc.Graph
}

// NewSession wraps an already-opened graph.
func (e *Engine) NewSession(g ifc.Graph) (*Session, error) {
	if g == nil {
		return nil, ErrNoGraph
	}
	return &Session{engine: e, graph: g}, nil
}

// Graph returns the session's model.
func (s *Session) Graph() ifc.Graph { return s.graph }

// Report builds the report of the given kind.
func (s *Session) Report(kind Kind) (*Report, error) {
	r, ok := s.engine.Reporter(kind)
	if !ok {
		return nil, fmt.Errorf("unknown report %q", kind)
	}
	rep := r.Build(s.graph)
	s.engine.logger.Debug("report built", "kind", kind, "records", rep.Count)
	return rep, nil
}
