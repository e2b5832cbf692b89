// Package grid renders query results as an aligned text grid.
package grid

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// DefaultMaxColWidth caps how wide a single column may grow.
const DefaultMaxColWidth = 64

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	separatorStyle = lipgloss.NewStyle().Faint(true)
)

// Grid lays out column headers and rows with display-width-aware padding.
type Grid struct {
	Columns     []string
	Rows        [][]string
	MaxColWidth int
}

// New creates a grid over the given result set.
func New(columns []string, rows [][]string) *Grid {
	return &Grid{
		Columns:     columns,
		Rows:        rows,
		MaxColWidth: DefaultMaxColWidth,
	}
}

// Render produces the grid as a string, one line per row, with a styled
// header and separator. Cells wider than MaxColWidth are truncated with an
// ellipsis. NULLs should be pre-rendered by the caller.
func (g *Grid) Render() string {
	if len(g.Columns) == 0 {
		return ""
	}

	maxWidth := g.MaxColWidth
	if maxWidth <= 0 {
		maxWidth = DefaultMaxColWidth
	}

	widths := g.columnWidths(maxWidth)

	var b strings.Builder

	b.WriteString(headerStyle.Render(g.renderRow(g.Columns, widths, maxWidth)))
	b.WriteByte('\n')

	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	b.WriteString(separatorStyle.Render(strings.Join(sep, "  ")))
	b.WriteByte('\n')

	for _, row := range g.Rows {
		b.WriteString(g.renderRow(row, widths, maxWidth))
		b.WriteByte('\n')
	}

	return b.String()
}

// columnWidths computes per-column display widths, capped at maxWidth.
func (g *Grid) columnWidths(maxWidth int) []int {
	widths := make([]int, len(g.Columns))
	for i, col := range g.Columns {
		widths[i] = min(runewidth.StringWidth(col), maxWidth)
	}
	for _, row := range g.Rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			w := min(runewidth.StringWidth(row[i]), maxWidth)
			if w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

// renderRow pads and truncates one row's cells to the computed widths.
func (g *Grid) renderRow(cells []string, widths []int, maxWidth int) string {
	rendered := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if runewidth.StringWidth(cell) > maxWidth {
			cell = runewidth.Truncate(cell, maxWidth, "…")
		}
		rendered[i] = runewidth.FillRight(cell, w)
	}
	return strings.TrimRight(strings.Join(rendered, "  "), " ")
}
