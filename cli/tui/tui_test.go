package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pithecene-io/mimestream/metrics"
	"github.com/pithecene-io/mimestream/types"
)

func TestIsTUISupported(t *testing.T) {
	tests := []struct {
		viewType string
		want     bool
	}{
		{"parts", true},
		{"index", true},
		{"xop", false},
		{"split", false},
		{"version", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.viewType, func(t *testing.T) {
			if got := IsTUISupported(tt.viewType); got != tt.want {
				t.Errorf("IsTUISupported(%q) = %v, want %v", tt.viewType, got, tt.want)
			}
		})
	}
}

func TestRun_UnsupportedViewType(t *testing.T) {
	if err := Run("split", nil); err == nil {
		t.Error("expected error for unsupported view type")
	}
}

func TestRun_WrongPayload(t *testing.T) {
	if err := Run(ViewParts, "not a view"); err == nil {
		t.Error("expected error for wrong payload type")
	}
}

func testView() *PartsView {
	return &PartsView{
		Title: "https://example.com/mtom",
		Parts: []*types.PartRecord{
			{Index: 0, ContentType: "application/xop+xml", ContentID: "root@x", SizeBytes: 120, Manifest: true},
			{Index: 1, ContentType: "image/png", ContentID: "img@x", SizeBytes: 2048,
				Header: map[string]string{"content-transfer-encoding": "binary"}},
		},
		Metrics: &metrics.Snapshot{PartsOpened: 2, BytesRead: 2168},
	}
}

func press(m tea.Model, k tea.KeyMsg) tea.Model {
	next, _ := m.Update(k)
	return next
}

func TestPartsModel_Navigation(t *testing.T) {
	var m tea.Model = NewPartsModel(testView())

	down := tea.KeyMsg{Type: tea.KeyDown}
	up := tea.KeyMsg{Type: tea.KeyUp}

	m = press(m, up)
	if got := m.(PartsModel).Cursor(); got != 0 {
		t.Errorf("cursor after up at top = %d, want 0", got)
	}
	m = press(m, down)
	m = press(m, down)
	if got := m.(PartsModel).Cursor(); got != 1 {
		t.Errorf("cursor after moving past end = %d, want 1", got)
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	if got := m.(PartsModel).Cursor(); got != 0 {
		t.Errorf("cursor after k = %d, want 0", got)
	}
}

func TestPartsModel_DetailFollowsCursor(t *testing.T) {
	var m tea.Model = NewPartsModel(testView())
	m = press(m, tea.KeyMsg{Type: tea.KeyDown})

	view := m.View()
	if !strings.Contains(view, "img@x") {
		t.Errorf("detail pane missing selected content-id:\n%s", view)
	}
	if !strings.Contains(view, "binary") {
		t.Errorf("detail pane missing part headers:\n%s", view)
	}
}

func TestPartsModel_StatsToggle(t *testing.T) {
	var m tea.Model = NewPartsModel(testView())
	m = press(m, tea.KeyMsg{Type: tea.KeyTab})
	if view := m.View(); !strings.Contains(view, "Boundaries") || !strings.Contains(view, "2168") {
		t.Errorf("stats pane not shown:\n%s", view)
	}

	noMetrics := testView()
	noMetrics.Metrics = nil
	m = press(NewPartsModel(noMetrics), tea.KeyMsg{Type: tea.KeyTab})
	if view := m.View(); strings.Contains(view, "Boundaries") {
		t.Error("tab should be ignored without metrics")
	}
}

func TestPartsModel_Quit(t *testing.T) {
	m, cmd := NewPartsModel(testView()).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if m.View() != "" {
		t.Error("view should be empty after quit")
	}
}

func TestRenderStatic_Empty(t *testing.T) {
	out := RenderStatic(&PartsView{Title: "empty"})
	if !strings.Contains(out, "(no parts)") || !strings.Contains(out, "0 parts") {
		t.Errorf("static render = %q", out)
	}
}
