package settings

// settings_test.go: layering and validation of configuration.

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"ifcmetrics/internal/resolve"
	"ifcmetrics/internal/units"
)

func writeSettings(t *testing.T, root, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(root, Dir), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(Path(root), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// unsetForTest clears key for the duration of the test and restores it
// afterwards, so values loaded from .env do not leak between tests.
func unsetForTest(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

// ---------------------------------------------------------------------------
// Defaults
// ---------------------------------------------------------------------------

func TestLoad_NoFiles(t *testing.T) {
	s, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(s, Default()) {
		t.Errorf("Load with no files = %+v, want defaults", s)
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default settings invalid: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Layering
// ---------------------------------------------------------------------------

func TestLoad_File(t *testing.T) {
	root := t.TempDir()
	writeSettings(t, root, `
units:
  policy: strict
resolution:
  area: [GrossFloorArea]
  sets: quantity
solar:
  irradiance: 800
`)
	s, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Units.Policy != "strict" {
		t.Errorf("Policy = %q", s.Units.Policy)
	}
	if s.Units.LengthThreshold != units.DefaultLengthThreshold {
		t.Errorf("unset field lost its default: %v", s.Units.LengthThreshold)
	}
	if !reflect.DeepEqual(s.Resolution.Area, []string{"GrossFloorArea"}) {
		t.Errorf("Area = %v", s.Resolution.Area)
	}
	if len(s.Resolution.Height) != 3 {
		t.Errorf("Height = %v, want defaults", s.Resolution.Height)
	}
	if s.Solar.Irradiance != 800 || s.Solar.DefaultGValue != 0.6 {
		t.Errorf("Solar = %+v", s.Solar)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	root := t.TempDir()
	writeSettings(t, root, "output:\n  format: markdown\n")
	t.Setenv("IFCMETRICS_FORMAT", "json")
	t.Setenv("IFCMETRICS_AREA_NAMES", "Area,NetFloorArea")
	t.Setenv("IFCMETRICS_DEBUG", "true")

	s, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Output.Format != "json" {
		t.Errorf("Format = %q, want json", s.Output.Format)
	}
	if !reflect.DeepEqual(s.Resolution.Area, []string{"Area", "NetFloorArea"}) {
		t.Errorf("Area = %v", s.Resolution.Area)
	}
	if !s.Debug {
		t.Error("Debug should be set from the environment")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	root := t.TempDir()
	unsetForTest(t, "IFCMETRICS_IRRADIANCE")
	unsetForTest(t, "IFCMETRICS_UNIT_POLICY")
	t.Setenv("IFCMETRICS_FORMAT", "yaml")

	dotenv := "IFCMETRICS_IRRADIANCE=650\nIFCMETRICS_UNIT_POLICY=strict\nIFCMETRICS_FORMAT=xlsx\n"
	if err := os.WriteFile(filepath.Join(root, ".env"), []byte(dotenv), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Solar.Irradiance != 650 || s.Units.Policy != "strict" {
		t.Errorf(".env values not applied: %+v %+v", s.Solar, s.Units)
	}
	if s.Output.Format != "yaml" {
		t.Errorf(".env must not override the environment: Format = %q", s.Output.Format)
	}
}

// ---------------------------------------------------------------------------
// Failures
// ---------------------------------------------------------------------------

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		settings string
		env      map[string]string
	}{
		{name: "invalid yaml", settings: ":\tbad yaml:"},
		{name: "unknown policy", settings: "units:\n  policy: guess\n"},
		{name: "g-value above one", settings: "solar:\n  default_g_value: 1.5\n"},
		{name: "empty priority list", settings: "resolution:\n  height: []\n"},
		{name: "unknown format", env: map[string]string{"IFCMETRICS_FORMAT": "pdf"}},
		{name: "unparsable number", env: map[string]string{"IFCMETRICS_LENGTH_THRESHOLD": "tall"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			if tt.settings != "" {
				writeSettings(t, root, tt.settings)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if s, err := Load(root); err == nil {
				t.Errorf("expected error, got %+v", s)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Derived configuration
// ---------------------------------------------------------------------------

func TestEngineOptions(t *testing.T) {
	s := Default()
	s.Units.Policy = "strict"
	s.Resolution.Sets = "property"
	s.Solar.Irradiance = 700

	opts := s.EngineOptions(nil)
	if opts.Normalizer.Policy != units.PolicyStrict {
		t.Errorf("Policy = %q", opts.Normalizer.Policy)
	}
	if opts.Queries.Area.Kinds != resolve.PropertySets || opts.GValue.Kinds != resolve.PropertySets {
		t.Errorf("kinds = %v / %v", opts.Queries.Area.Kinds, opts.GValue.Kinds)
	}
	if opts.Queries.Height.Names[0] != "NetCeilingHeight" {
		t.Errorf("Height names = %v", opts.Queries.Height.Names)
	}
	if opts.Irradiance != 700 || opts.DefaultGValue != 0.6 {
		t.Errorf("solar = %v / %v", opts.Irradiance, opts.DefaultGValue)
	}
}

func TestNilSettings(t *testing.T) {
	var s *Settings
	if n := s.Normalizer(nil); n == nil || n.Policy != "" {
		t.Errorf("nil Settings.Normalizer = %+v", n)
	}
	opts := s.EngineOptions(nil)
	if opts.Queries.Area.Kinds != resolve.AnySet || len(opts.Queries.Area.Names) != 3 {
		t.Errorf("nil Settings.EngineOptions = %+v", opts.Queries)
	}
}
