package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pithecene-io/mimestream/types"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{"json lowercase", "json", FormatJSON, false},
		{"json uppercase", "JSON", FormatJSON, false},
		{"table", "table", FormatTable, false},
		{"yaml", "yaml", FormatYAML, false},
		{"empty", "", "", false},
		{"invalid", "xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFormat_InvalidErrorMessage(t *testing.T) {
	_, err := ParseFormat("csv")
	if err == nil || !strings.Contains(err.Error(), "json, table, or yaml") {
		t.Errorf("error should mention valid formats, got: %v", err)
	}
}

func sampleParts() PartTable {
	return PartTable{
		{Index: 0, ContentType: "application/xop+xml", ContentID: "root@x", SizeBytes: 120, Manifest: true},
		{Index: 1, ContentType: "image/png", ContentID: "img@x", SizeBytes: 2048, Path: "parts/part-0001.png"},
	}
}

func TestRenderer_JSON_PartTable(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatJSON, false, &buf)
	if err := r.Render(sampleParts()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var got []types.PartRecord
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not a JSON array: %v\n%s", err, buf.String())
	}
	if len(got) != 2 || !got[0].Manifest || got[1].ContentID != "img@x" {
		t.Errorf("decoded = %+v", got)
	}
}

func TestRenderer_YAML(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatYAML, false, &buf)
	if err := r.Render(sampleParts()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	got := buf.String()
	if !strings.Contains(got, "content_type: image/png") || !strings.Contains(got, "manifest: true") {
		t.Errorf("YAML output missing expected content: %s", got)
	}
}

func TestRenderer_Table_PartTable(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatTable, true, &buf)
	if err := r.Render(sampleParts()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "INDEX") || !strings.Contains(lines[0], "CONTENT-TYPE") {
		t.Errorf("header row = %q", lines[0])
	}
	if !strings.Contains(lines[1], "yes") {
		t.Errorf("manifest row = %q", lines[1])
	}
	if !strings.Contains(lines[2], "parts/part-0001.png") {
		t.Errorf("attachment row = %q", lines[2])
	}
}

func TestRenderer_Table_Empty(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatTable, true, &buf)
	if err := r.Render(PartTable{}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(buf.String(), "(no results)") {
		t.Errorf("empty table should show '(no results)', got: %s", buf.String())
	}
}

func TestRenderer_Table_Struct(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatTable, true, &buf)

	type summary struct {
		ExtractionID string            `json:"extraction_id"`
		Parts        int               `json:"parts"`
		Headers      map[string]string `json:"headers"`
		hidden       string
	}
	if err := r.Render(&summary{ExtractionID: "ext-1", Parts: 3, Headers: map[string]string{"a": "b"}, hidden: "x"}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	got := buf.String()
	for _, want := range []string{"extraction_id:", "ext-1", "parts:", "3", "{1 keys}"} {
		if !strings.Contains(got, want) {
			t.Errorf("table output missing %q: %s", want, got)
		}
	}
	if strings.Contains(got, "hidden") {
		t.Errorf("unexported field rendered: %s", got)
	}
}

func TestRenderer_Table_MapSorted(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatTable, true, &buf)
	if err := r.Render(map[string]int{"b": 2, "a": 1}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got := buf.String(); strings.Index(got, "a:") > strings.Index(got, "b:") {
		t.Errorf("map keys not sorted: %s", got)
	}
}

func TestRenderer_NoColor_DoesNotAffectJSON(t *testing.T) {
	var bufColor, bufNoColor bytes.Buffer
	if err := NewRendererWithWriter(FormatJSON, false, &bufColor).Render(sampleParts()); err != nil {
		t.Fatalf("Render with color failed: %v", err)
	}
	if err := NewRendererWithWriter(FormatJSON, true, &bufNoColor).Render(sampleParts()); err != nil {
		t.Fatalf("Render without color failed: %v", err)
	}
	if bufColor.String() != bufNoColor.String() {
		t.Error("--no-color should not affect JSON output")
	}
}

func TestRenderTUI_Unsupported(t *testing.T) {
	r := NewRendererWithWriter(FormatJSON, false, &bytes.Buffer{})
	if err := r.RenderTUI("version", nil); err == nil {
		t.Error("expected error for unsupported TUI view")
	}
}
