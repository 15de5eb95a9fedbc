package table

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TextStyles controls the terminal rendering
type TextStyles struct {
	Header    lipgloss.Style
	Cell      lipgloss.Style
	Highlight lipgloss.Style
	Muted     lipgloss.Style
}

// DefaultTextStyles highlights matches in bold black on yellow
func DefaultTextStyles() TextStyles {
	return TextStyles{
		Header:    lipgloss.NewStyle().Bold(true),
		Cell:      lipgloss.NewStyle(),
		Highlight: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("11")),
		Muted:     lipgloss.NewStyle().Faint(true),
	}
}

// RenderText draws m as an aligned terminal table
func RenderText(m Model, styles TextStyles) string {
	cells := textCells(m, styles)

	widths := make([]int, len(Columns))
	for i, h := range Columns {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range cells {
		if len(row) != len(Columns) {
			continue
		}
		for i, c := range row {
			if w := lipgloss.Width(c); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var sb strings.Builder
	sep := styles.Muted.Render(" | ")

	for i, h := range Columns {
		if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(pad(styles.Header.Render(h), widths[i]))
	}
	sb.WriteString("\n")

	total := len(Columns)*3 - 3
	for _, w := range widths {
		total += w
	}
	sb.WriteString(styles.Muted.Render(strings.Repeat("-", total)))
	sb.WriteString("\n")

	for _, row := range cells {
		if len(row) == 1 {
			// spans all columns
			sb.WriteString(lipgloss.PlaceHorizontal(total, lipgloss.Center, row[0]))
			sb.WriteString("\n")
			continue
		}
		for i, c := range row {
			if i > 0 {
				sb.WriteString(sep)
			}
			sb.WriteString(pad(c, widths[i]))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func textCells(m Model, styles TextStyles) [][]string {
	switch {
	case m.Loading:
		rows := make([][]string, SkeletonRows)
		for i := range rows {
			rows[i] = make([]string, len(Columns))
			for j := range rows[i] {
				rows[i][j] = styles.Muted.Render("...")
			}
		}
		return rows
	case m.Empty:
		return [][]string{{styles.Muted.Render(EmptyMessage)}}
	}

	rows := make([][]string, 0, len(m.Rows))
	for _, r := range m.Rows {
		name := renderSegments(r.Name, styles)
		if r.Pending {
			name += styles.Muted.Render(" (saving)")
		}
		rows = append(rows, []string{
			name,
			renderSegments(r.Contact, styles),
			renderSegments(r.Company, styles),
			styles.Cell.Render(r.Role),
			styles.Cell.Render(r.Location),
		})
	}
	return rows
}

func renderSegments(segs []Segment, styles TextStyles) string {
	var b strings.Builder
	for _, s := range segs {
		if s.Match {
			b.WriteString(styles.Highlight.Render(s.Text))
		} else {
			b.WriteString(styles.Cell.Render(s.Text))
		}
	}
	return b.String()
}

func pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
