package settings

// settings.go: ifcmetrics configuration.
//
// Values are layered, later layers winning:
//
//	built-in defaults
//	.ifcmetrics/settings.yaml under the root directory
//	.env under the root directory (never overrides the real environment)
//	IFCMETRICS_* environment variables
//
// The merged result is validated before use.

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v6"
	"github.com/charmbracelet/log"
	"github.com/go-playground/validator"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ifcmetrics/internal/metric"
	"ifcmetrics/internal/report"
	"ifcmetrics/internal/resolve"
	"ifcmetrics/internal/units"
)

// Dir is the settings directory name under the root.
const Dir = ".ifcmetrics"

// Settings holds ifcmetrics configuration.
type Settings struct {
	Units      Units      `yaml:"units"`
	Resolution Resolution `yaml:"resolution"`
	Solar      Solar      `yaml:"solar"`
	Output     Output     `yaml:"output"`
	Debug      bool       `yaml:"debug" env:"IFCMETRICS_DEBUG"`
}

// Units controls how values without a unit are normalized.
type Units struct {
	// Policy is "heuristic" (rescale large values by magnitude) or
	// "strict" (take unit-less values as metric).
	Policy          string  `yaml:"policy" env:"IFCMETRICS_UNIT_POLICY" validate:"oneof=heuristic strict"`
	LengthThreshold float64 `yaml:"length_threshold" env:"IFCMETRICS_LENGTH_THRESHOLD" validate:"gt=0"`
	AreaThreshold   float64 `yaml:"area_threshold" env:"IFCMETRICS_AREA_THRESHOLD" validate:"gt=0"`
}

// Resolution lists property names in priority order, and the set kinds
// they are looked up in ("any", "property" or "quantity").
type Resolution struct {
	Area   []string `yaml:"area" env:"IFCMETRICS_AREA_NAMES" envSeparator:"," validate:"min=1,dive,required"`
	Height []string `yaml:"height" env:"IFCMETRICS_HEIGHT_NAMES" envSeparator:"," validate:"min=1,dive,required"`
	GValue []string `yaml:"g_value" env:"IFCMETRICS_GVALUE_NAMES" envSeparator:"," validate:"min=1,dive,required"`
	Sets   string   `yaml:"sets" env:"IFCMETRICS_SETS" validate:"oneof=any property quantity"`
}

// Solar configures the solar gain estimate.
type Solar struct {
	Irradiance    float64 `yaml:"irradiance" env:"IFCMETRICS_IRRADIANCE" validate:"gt=0"`
	DefaultGValue float64 `yaml:"default_g_value" env:"IFCMETRICS_DEFAULT_GVALUE" validate:"gt=0,lte=1"`
}

// Output selects the default report format.
type Output struct {
	Format string `yaml:"format" env:"IFCMETRICS_FORMAT" validate:"oneof=text markdown yaml json xlsx"`
}

// Default returns the built-in settings.
func Default() *Settings {
	q := metric.DefaultQueries()
	return &Settings{
		Units: Units{
			Policy:          string(units.PolicyHeuristic),
			LengthThreshold: units.DefaultLengthThreshold,
			AreaThreshold:   units.DefaultAreaThreshold,
		},
		Resolution: Resolution{
			Area:   append([]string(nil), q.Area.Names...),
			Height: append([]string(nil), q.Height.Names...),
			GValue: append([]string(nil), report.DefaultGValueQuery().Names...),
			Sets:   "any",
		},
		Solar: Solar{
			Irradiance:    report.DefaultIrradiance,
			DefaultGValue: report.DefaultGValue,
		},
		Output: Output{Format: "text"},
	}
}

// Path returns the settings file location under root.
func Path(root string) string {
	return filepath.Join(root, Dir, "settings.yaml")
}

// Load builds settings for root. A missing settings file or .env is not an
// error.
func Load(root string) (*Settings, error) {
	s := Default()

	path := Path(root)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", path, err)
		}
	}

	dotenv := filepath.Join(root, ".env")
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", dotenv, err)
	}
	if err := env.Parse(s); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks every field against its constraints.
func (s *Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// Normalizer returns the unit normalizer described by s. Safe to call on a
// nil *Settings receiver.
func (s *Settings) Normalizer(logger *log.Logger) *units.Normalizer {
	if s == nil {
		return &units.Normalizer{Logger: logger}
	}
	return &units.Normalizer{
		Policy:          units.Policy(s.Units.Policy),
		LengthThreshold: s.Units.LengthThreshold,
		AreaThreshold:   s.Units.AreaThreshold,
		Logger:          logger,
	}
}

// EngineOptions returns the report engine configuration described by s.
// Safe to call on a nil *Settings receiver.
func (s *Settings) EngineOptions(logger *log.Logger) report.Options {
	if s == nil {
		s = Default()
	}
	kinds := s.setKinds()
	return report.Options{
		Normalizer: s.Normalizer(logger),
		Queries: metric.Queries{
			Area:   resolve.Query{Names: s.Resolution.Area, Kinds: kinds},
			Height: resolve.Query{Names: s.Resolution.Height, Kinds: kinds},
		},
		GValue:        resolve.Query{Names: s.Resolution.GValue, Kinds: kinds},
		DefaultGValue: s.Solar.DefaultGValue,
		Irradiance:    s.Solar.Irradiance,
		Logger:        logger,
	}
}

func (s *Settings) setKinds() resolve.SetKind {
	switch s.Resolution.Sets {
	case "property":
		return resolve.PropertySets
	case "quantity":
		return resolve.QuantitySets
	}
	return resolve.AnySet
}
