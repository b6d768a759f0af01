package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SimpleTable is a simple table component for rendering static data.
// Columns whose every cell parses as a number are right-aligned, so the
// counts in `prism stats` line up.
type SimpleTable struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// NewSimpleTable creates a new SimpleTable with the given title and headers.
func NewSimpleTable(title string, headers []string) *SimpleTable {
	return &SimpleTable{
		Title:   title,
		Headers: headers,
		Rows:    make([][]string, 0),
	}
}

// AddRow adds a row to the table.
func (t *SimpleTable) AddRow(row ...string) {
	t.Rows = append(t.Rows, row)
}

// numericColumn reports whether every cell in column i is a number.
func (t *SimpleTable) numericColumn(i int) bool {
	if len(t.Rows) == 0 {
		return false
	}
	for _, row := range t.Rows {
		if i >= len(row) {
			return false
		}
		if _, err := strconv.ParseFloat(row[i], 64); err != nil {
			return false
		}
	}
	return true
}

// cell pads s to width, right-aligned when alignRight is set.
func cell(s string, width int, alignRight bool) string {
	gap := width - lipgloss.Width(s)
	if gap < 0 {
		gap = 0
	}
	if alignRight {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

// View renders the table using the provided styles.
func (t *SimpleTable) View(styles Styles) string {
	if len(t.Rows) == 0 {
		return ""
	}

	var sb strings.Builder

	if t.Title != "" {
		sb.WriteString(styles.Title.Render(t.Title))
		sb.WriteString("\n")
	}

	// Column widths fit the widest cell.
	widths := make([]int, len(t.Headers))
	rightAlign := make([]bool, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
		rightAlign[i] = t.numericColumn(i)
	}
	for _, row := range t.Rows {
		for i, c := range row {
			if i < len(widths) {
				if w := lipgloss.Width(c); w > widths[i] {
					widths[i] = w
				}
			}
		}
	}

	sep := styles.Muted.Render("|")

	headerCells := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		headerCells[i] = styles.Bold.Render(" " + cell(h, widths[i], rightAlign[i]) + " ")
	}
	sb.WriteString(strings.Join(headerCells, sep))
	sb.WriteString("\n")

	totalWidth := len(t.Headers) - 1
	for _, w := range widths {
		totalWidth += w + 2
	}
	sb.WriteString(styles.Muted.Render(strings.Repeat("-", totalWidth)) + "\n")

	for _, row := range t.Rows {
		cells := make([]string, 0, len(row))
		for i, c := range row {
			if i < len(widths) {
				cells = append(cells, styles.Body.Render(" "+cell(c, widths[i], rightAlign[i])+" "))
			}
		}
		sb.WriteString(strings.Join(cells, sep))
		sb.WriteString("\n")
	}

	return sb.String()
}
