package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{})
	l.Debug("hidden")
	l.Warn("unit inferred", "raw", 3000)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug written at info level: %q", out)
	}
	if !strings.Contains(out, "unit inferred") || !strings.Contains(out, "raw=3000") {
		t.Errorf("warn line = %q", out)
	}

	buf.Reset()
	New(&buf, Options{Debug: true, Prefix: "ifcmetrics"}).Debug("shown")
	if out := buf.String(); !strings.Contains(out, "shown") || !strings.Contains(out, "ifcmetrics") {
		t.Errorf("debug line = %q", out)
	}
}

func TestOrDiscard(t *testing.T) {
	if OrDiscard(nil) == nil {
		t.Fatal("OrDiscard(nil) returned nil")
	}
	l := Discard()
	if OrDiscard(l) != l {
		t.Error("OrDiscard must return a non-nil logger unchanged")
	}
	OrDiscard(nil).Error("dropped")
}
