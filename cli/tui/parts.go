package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pithecene-io/mimestream/metrics"
	"github.com/pithecene-io/mimestream/types"
)

// PartsView is the payload of the parts and index views.
type PartsView struct {
	// Title is shown above the list, typically the URL or extraction ID.
	Title string
	// Parts are listed in order.
	Parts []*types.PartRecord
	// Metrics, when set, can be toggled with tab.
	Metrics *metrics.Snapshot
}

type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Stats key.Binding
	Quit  key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Stats: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "metrics"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// PartsModel is a Bubble Tea model listing parts with a detail pane for
// the selected one.
type PartsModel struct {
	view      *PartsView
	cursor    int
	showStats bool
	width     int
	height    int
	quitting  bool
}

// NewPartsModel creates a model over view.
func NewPartsModel(view *PartsView) PartsModel {
	return PartsModel{view: view}
}

// Cursor returns the selected part position.
func (m PartsModel) Cursor() int {
	return m.cursor
}

// Init implements tea.Model.
func (m PartsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m PartsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.view.Parts)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Stats):
			if m.view.Metrics != nil {
				m.showStats = !m.showStats
			}
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m PartsModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("%s (%d parts)", m.view.Title, len(m.view.Parts))))
	b.WriteString("\n")

	if m.showStats {
		b.WriteString(renderStats(m.view.Metrics))
	} else {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderList(), m.renderDetail()))
	}

	help := "↑/↓ select • q quit"
	if m.view.Metrics != nil {
		help = "↑/↓ select • tab metrics • q quit"
	}
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(help))
	return b.String()
}

func (m PartsModel) renderList() string {
	if len(m.view.Parts) == 0 {
		return BoxStyle.Render("(no parts)")
	}
	var b strings.Builder
	for i, rec := range m.view.Parts {
		line := fmt.Sprintf("%3d  %-28s %8d", rec.Index, truncate(rec.ContentType, 28), rec.SizeBytes)
		switch {
		case i == m.cursor:
			line = SelectedStyle.Render("> " + line)
		case rec.Manifest:
			line = ManifestStyle.Render("  " + line)
		case rec.Path != "":
			line = StoredStyle.Render("  " + line)
		default:
			line = "  " + line
		}
		b.WriteString(line)
		if i < len(m.view.Parts)-1 {
			b.WriteString("\n")
		}
	}
	return BoxStyle.Render(b.String())
}

func (m PartsModel) renderDetail() string {
	if len(m.view.Parts) == 0 {
		return ""
	}
	rec := m.view.Parts[m.cursor]

	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render(label+":"), ValueStyle.Render(value)))
	}
	row("Index", fmt.Sprintf("%d", rec.Index))
	row("Content-Type", rec.ContentType)
	if rec.ContentID != "" {
		row("Content-ID", rec.ContentID)
	}
	row("Size", fmt.Sprintf("%d bytes", rec.SizeBytes))
	if rec.Manifest {
		row("Manifest", "yes")
	}
	if rec.Path != "" {
		row("Path", rec.Path)
	}

	names := make([]string, 0, len(rec.Header))
	for name := range rec.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		row(name, rec.Header[name])
	}
	return BoxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

// RenderStatic renders the initial frame of the view without starting a
// program.
func RenderStatic(view *PartsView) string {
	m := NewPartsModel(view)
	m.width = 80
	m.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(m.View())
}
