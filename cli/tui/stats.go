package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/pithecene-io/mimestream/metrics"
)

func renderStats(s *metrics.Snapshot) string {
	rows := [][]string{
		{
			statBox("Lines", s.LinesRead),
			statBox("Boundaries", s.BoundariesSeen),
			statBox("Preamble", s.PreambleLines),
		},
		{
			statBox("Parts", s.PartsOpened),
			statBox("Bytes", s.BytesRead),
			statBox("Manifests", s.ManifestsLoaded),
		},
		{
			statBox("Stored", s.StorageWriteSuccess),
			statBox("Store failed", s.StorageWriteFailure),
			statBox("Frames", s.FramesWritten),
		},
	}
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, r...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func statBox(label string, value int64) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		StatLabelStyle.Render(label),
		StatValueStyle.Render(fmt.Sprintf("%d", value)),
	)
	return StatBoxStyle.Render(content)
}
