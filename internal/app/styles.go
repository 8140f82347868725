package app

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorDir    = lipgloss.Color("#3B82F6") // Blue
	colorMuted  = lipgloss.Color("#9CA3AF") // Gray
	colorAccent = lipgloss.Color("#10B981") // Green
	colorError  = lipgloss.Color("#EF4444") // Red

	dirStyle    = lipgloss.NewStyle().Foreground(colorDir).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	headerStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(colorError)
)

// writeColumns aligns rows of styled cells. Widths are measured with
// lipgloss so escape sequences do not count; the last cell is not padded.
func writeColumns(w io.Writer, rows [][]string) {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			b.WriteString(cell)
			if i < len(row)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+2))
			}
		}
		b.WriteByte('\n')
	}
	io.WriteString(w, b.String())
}
