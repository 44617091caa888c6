package export

// export.go: renders reports for the presentation layer.
//
// Formats:
//   text      styled console listing with totals
//   markdown  YAML frontmatter (schema, kinds, totals) + one table per report
//   yaml      the report structures as YAML
//   json      the report structures as indented JSON
//   xlsx      one worksheet per report, totals below the records
//
// Builders are pure: Render writes only to the given writer. WriteFile is
// the one place that touches the filesystem.

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"ifcmetrics/internal/report"
)

// Format is an output format.
type Format string

const (
	Text     Format = "text"
	Markdown Format = "markdown"
	YAML     Format = "yaml"
	JSON     Format = "json"
	XLSX     Format = "xlsx"
)

// Formats lists every supported format.
func Formats() []Format { return []Format{Text, Markdown, YAML, JSON, XLSX} }

// ParseFormat maps a name (or common file extension) to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "text", "txt":
		return Text, nil
	case "markdown", "md":
		return Markdown, nil
	case "yaml", "yml":
		return YAML, nil
	case "json":
		return JSON, nil
	case "xlsx", "excel":
		return XLSX, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// Binary reports whether the format should not be written to a terminal.
func (f Format) Binary() bool { return f == XLSX }

// Render writes reports to w in format f.
func Render(w io.Writer, f Format, reports ...*report.Report) error {
	switch f {
	case Text:
		_, err := io.WriteString(w, buildText(reports))
		return err
	case Markdown:
		doc, err := buildMarkdown(reports)
		if err != nil {
			return err
		}
		_, err = w.Write(doc)
		return err
	case YAML:
		return renderYAML(w, reports)
	case JSON:
		return renderJSON(w, reports)
	case XLSX:
		return renderXLSX(w, reports)
	}
	return fmt.Errorf("unknown format %q", f)
}

// WriteFile renders reports into path, creating parent directories as
// needed.
func WriteFile(path string, f Format, reports ...*report.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Render(out, f, reports...); err != nil {
		out.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Structured formats
// ---------------------------------------------------------------------------

// payload is a single report on its own, a list otherwise.
func payload(reports []*report.Report) any {
	if len(reports) == 1 {
		return reports[0]
	}
	return reports
}

func renderYAML(w io.Writer, reports []*report.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(payload(reports)); err != nil {
		return fmt.Errorf("yaml: %w", err)
	}
	return enc.Close()
}

func renderJSON(w io.Writer, reports []*report.Report) error {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(payload(reports), "", "  ")
	if err != nil {
		return fmt.Errorf("json: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// column is one field column of a tabular rendering.
type column struct {
	name string
	unit string
}

func (c column) header() string {
	if c.unit == "" {
		return c.name
	}
	return fmt.Sprintf("%s (%s)", c.name, c.unit)
}

// columns returns the union of field names across records, in order of
// first appearance.
func columns(records []report.Record) []column {
	var cols []column
	seen := make(map[string]bool)
	for _, r := range records {
		for _, f := range r.Fields {
			if seen[f.Name] {
				continue
			}
			seen[f.Name] = true
			cols = append(cols, column{name: f.Name, unit: f.Unit})
		}
	}
	return cols
}

// cell formats a field value for display; numbers get two decimals.
func cell(r report.Record, name string) string {
	f, ok := r.Field(name)
	if !ok {
		return ""
	}
	s := f.Value.Format(2)
	if f.Heuristic {
		s += "*"
	}
	return s
}

// heuristicUsed reports whether any value in reports was rescaled by the
// magnitude rule.
func heuristicUsed(reports []*report.Report) bool {
	for _, rep := range reports {
		for _, r := range rep.Records {
			for _, f := range r.Fields {
				if f.Heuristic {
					return true
				}
			}
		}
	}
	return false
}

const heuristicNote = "* unit inferred from value magnitude; check the model's units"
