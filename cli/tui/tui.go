package tui

import (
	"fmt"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
)

// View types with an interactive rendering.
const (
	ViewParts = "parts"
	ViewIndex = "index"
)

// Run starts the interactive view for viewType.
func Run(viewType string, data any) error {
	if !IsTUISupported(viewType) {
		return fmt.Errorf("TUI mode is not supported for %s", viewType)
	}
	view, ok := data.(*PartsView)
	if !ok {
		return fmt.Errorf("TUI %s expects *tui.PartsView, got %T", viewType, data)
	}
	_, err := tea.NewProgram(NewPartsModel(view), tea.WithAltScreen()).Run()
	return err
}

// IsTUISupported reports whether viewType has an interactive rendering.
func IsTUISupported(viewType string) bool {
	return slices.Contains(SupportedTUIViews(), viewType)
}

// SupportedTUIViews lists the view types that support --tui.
func SupportedTUIViews() []string {
	return []string{ViewParts, ViewIndex}
}
