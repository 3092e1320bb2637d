package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleCaser  = cases.Title(language.English)
)

func (r *Renderer) renderTable(v any) (string, error) {
	var (
		headers []string
		rows    [][]string
	)
	if t, ok := v.(Tabular); ok {
		headers, rows = t.TableHeaders(), t.TableRows()
	} else {
		flat, err := flatten(v)
		if err != nil {
			return "", err
		}
		headers, rows = []string{"path", "value"}, flat
	}
	return Table(headers, rows, r.config.MaxCellWidth), nil
}

// Table renders rows under headers as a bordered text table. Cells wider
// than maxCellWidth terminal columns are cut with an ellipsis.
func Table(headers []string, rows [][]string, maxCellWidth int) string {
	if maxCellWidth <= 0 {
		maxCellWidth = DefaultMaxCellWidth
	}

	titled := make([]string, len(headers))
	for i, h := range headers {
		titled[i] = titleCaser.String(h)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(titled...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = fitCell(cell, maxCellWidth)
		}
		t.Row(cells...)
	}
	return t.String()
}

func fitCell(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
