package export

// export_test.go: tests for report rendering.
//
// Reports are built directly as report.Report values; no model is opened.

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"ifcmetrics/internal/report"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func areaReport() *report.Report {
	return &report.Report{
		Kind:   report.KindAreas,
		Title:  "Space areas",
		Schema: "IFC4",
		Count:  2,
		Records: []report.Record{
			{ID: 1, GlobalID: "2O2Fr$t4X7Zf8NOew3FLOH", Name: "Kitchen", Fields: []report.Field{
				{Name: report.FieldNetArea, Value: report.Number(18), Unit: report.UnitSquareMetre, Source: "property:Qto.NetFloorArea"},
			}},
			{ID: 2, Name: "Store", Fields: []report.Field{
				{Name: report.FieldNetArea, Value: report.Unavailable(), Unit: report.UnitSquareMetre},
			}},
		},
		Totals: []report.Total{{Field: report.FieldNetArea, Value: 18, Unit: report.UnitSquareMetre}},
	}
}

func doorReport() *report.Report {
	return &report.Report{
		Kind:  report.KindDoors,
		Title: "Doors",
		Count: 1,
		Records: []report.Record{
			{ID: 7, Name: "D|1", Fields: []report.Field{
				{Name: report.FieldWidth, Value: report.Number(0.9), Unit: report.UnitMetre, Heuristic: true},
				{Name: report.FieldHeight, Value: report.NotApplicable(), Unit: report.UnitMetre},
			}},
		},
	}
}

func render(t *testing.T, f Format, reports ...*report.Report) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := Render(&buf, f, reports...); err != nil {
		t.Fatalf("Render(%s): %v", f, err)
	}
	return buf.Bytes()
}

// ---------------------------------------------------------------------------
// Formats
// ---------------------------------------------------------------------------

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", Text},
		{"TEXT", Text},
		{"md", Markdown},
		{".yml", YAML},
		{"json", JSON},
		{"xlsx", XLSX},
	}
	for _, tc := range tests {
		got, err := ParseFormat(tc.in)
		if err != nil || got != tc.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("expected error for pdf")
	}
	for _, f := range Formats() {
		if _, err := ParseFormat(string(f)); err != nil {
			t.Errorf("ParseFormat(%q): %v", f, err)
		}
	}
}

func TestText(t *testing.T) {
	out := string(render(t, Text, areaReport(), doorReport()))
	for _, want := range []string{
		"Space areas (IFC4)",
		"Count: 2",
		"Kitchen #1  2O2Fr$t4X7Zf8NOew3FLOH",
		"net area:",
		"18.00 m²",
		"unavailable",
		"Total net area: 18.00 m²",
		"Doors",
		"0.90* m",
		"N/A",
		heuristicNote,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q\ngot:\n%s", want, out)
		}
	}
}

func TestTextWithoutHeuristicHasNoNote(t *testing.T) {
	out := string(render(t, Text, areaReport()))
	if strings.Contains(out, heuristicNote) {
		t.Error("note printed although no value was rescaled")
	}
}

func TestMarkdown(t *testing.T) {
	out := render(t, Markdown, areaReport(), doorReport())

	fm, body, err := SplitFrontmatter(out)
	if err != nil {
		t.Fatalf("SplitFrontmatter: %v", err)
	}
	var m meta
	if err := yaml.Unmarshal(fm, &m); err != nil {
		t.Fatalf("frontmatter yaml: %v", err)
	}
	if m.Schema != "IFC4" || len(m.Reports) != 2 {
		t.Fatalf("frontmatter = %+v", m)
	}
	if m.Reports[0].Kind != report.KindAreas || m.Reports[0].Totals[0].Value != 18 {
		t.Errorf("first entry = %+v", m.Reports[0])
	}
	if len(m.Tags) != 3 || m.Tags[1] != "ifcmetrics/areas" {
		t.Errorf("tags = %v", m.Tags)
	}

	text := string(body)
	for _, want := range []string{
		"# Space areas",
		"| ID | Name | GlobalId | net_area (m²) |",
		"| 1 | Kitchen | 2O2Fr$t4X7Zf8NOew3FLOH | 18.00 |",
		"| 2 | Store |  | unavailable |",
		`| 7 | D\|1 |  | 0.90\* | N/A |`,
		"- **Total net area**: 18.00 m²",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("markdown missing %q\ngot:\n%s", want, text)
		}
	}
}

func TestMarkdownEmptyReport(t *testing.T) {
	rep := &report.Report{Kind: report.KindWindows, Title: "Windows"}
	out := string(render(t, Markdown, rep))
	if !strings.Contains(out, "_None found._") {
		t.Errorf("empty report should say so:\n%s", out)
	}
}

func TestSplitFrontmatterErrors(t *testing.T) {
	if _, _, err := SplitFrontmatter([]byte("no delimiter")); err == nil {
		t.Error("expected error for missing opening delimiter")
	}
	if _, _, err := SplitFrontmatter([]byte("---\nschema: IFC4\n")); err == nil {
		t.Error("expected error for missing closing delimiter")
	}
}

func TestYAML(t *testing.T) {
	out := render(t, YAML, areaReport())
	var got struct {
		Kind    string `yaml:"kind"`
		Records []struct {
			Name   string `yaml:"name"`
			Fields []struct {
				Value any `yaml:"value"`
			} `yaml:"fields"`
		} `yaml:"records"`
	}
	if err := yaml.Unmarshal(out, &got); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if got.Kind != "areas" || len(got.Records) != 2 {
		t.Fatalf("decoded = %+v", got)
	}
	if v := got.Records[0].Fields[0].Value; v != 18 && v != 18.0 {
		t.Errorf("Kitchen value = %#v", v)
	}
	if v := got.Records[1].Fields[0].Value; v != report.SentinelUnavailable {
		t.Errorf("Store value = %#v", v)
	}
}

func TestJSONMultipleReports(t *testing.T) {
	out := render(t, JSON, areaReport(), doorReport())
	var got []map[string]any
	if err := jsoniter.Unmarshal(out, &got); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if len(got) != 2 || got[0]["kind"] != "areas" || got[1]["kind"] != "doors" {
		t.Errorf("decoded = %v", got)
	}
	if !strings.Contains(string(out), `"value": "N/A"`) {
		t.Errorf("sentinel not rendered as text:\n%s", out)
	}
}

func TestXLSX(t *testing.T) {
	out := render(t, XLSX, areaReport(), doorReport())
	f, err := excelize.OpenReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 2 || sheets[0] != "Space areas" || sheets[1] != "Doors" {
		t.Fatalf("sheets = %v", sheets)
	}
	rows, err := f.GetRows("Space areas")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 5 {
		t.Fatalf("rows = %d, want 5: %v", len(rows), rows)
	}
	if strings.Join(rows[0], ",") != "ID,GlobalId,GUID,Name,net_area (m²)" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][3] != "Kitchen" || rows[1][4] != "18" {
		t.Errorf("Kitchen row = %v", rows[1])
	}
	if rows[2][4] != "unavailable" {
		t.Errorf("Store row = %v", rows[2])
	}
	if rows[4][3] != "Total" || rows[4][4] != "18" {
		t.Errorf("total row = %v", rows[4])
	}
}

func TestSheetName(t *testing.T) {
	rep := &report.Report{Kind: report.KindSolar, Title: "Solar gain [W/m²]: a very long title indeed"}
	got := sheetName(rep)
	if strings.ContainsAny(got, `:\/?*[]`) || len([]rune(got)) > 31 {
		t.Errorf("sheetName = %q", got)
	}
}

// ---------------------------------------------------------------------------
// WriteFile
// ---------------------------------------------------------------------------

func TestWriteFileCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "areas.md")
	if err := WriteFile(path, Markdown, areaReport()); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, render(t, Markdown, areaReport())) {
		t.Error("file content differs from Render output")
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	for _, f := range []Format{Text, Markdown, YAML, JSON} {
		a := render(t, f, areaReport(), doorReport())
		b := render(t, f, areaReport(), doorReport())
		if !bytes.Equal(a, b) {
			t.Errorf("%s output differs between runs", f)
		}
	}
}
