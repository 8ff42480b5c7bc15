package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Alignment represents column text alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// Column defines one table column.
type Column struct {
	Header string
	Align  Alignment
	// Style applies to body cells; nil renders them plain.
	Style *lipgloss.Style
}

// Table renders rows with a muted header rule and no outer border.
type Table struct {
	columns []Column
	rows    [][]string
}

// NewTable creates a table with the given columns.
func NewTable(columns ...Column) *Table {
	return &Table{columns: columns}
}

// Col is shorthand for a left-aligned column.
func Col(header string) Column {
	return Column{Header: header}
}

// NumCol is shorthand for a right-aligned numeric column.
func NumCol(header string) Column {
	return Column{Header: header, Align: AlignRight}
}

// AddRow appends a row. Missing cells render empty; extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.columns))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Len reports the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// String renders the table, or "" when it has no rows.
func (t *Table) String() string {
	if len(t.rows) == 0 {
		return ""
	}

	headers := make([]string, len(t.columns))
	for i, c := range t.columns {
		headers[i] = c.Header
	}

	tbl := table.New().
		Border(lipgloss.Border{Top: "─", Bottom: "─", Middle: "─"}).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderRow(false).
		BorderColumn(false).
		BorderHeader(true).
		BorderStyle(Muted).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col >= len(t.columns) {
				return lipgloss.NewStyle()
			}
			c := t.columns[col]
			style := lipgloss.NewStyle()
			if row == table.HeaderRow {
				style = Bold
			} else if c.Style != nil {
				style = *c.Style
			}
			if c.Align == AlignRight {
				style = style.Align(lipgloss.Right)
			}
			if col < len(t.columns)-1 {
				style = style.PaddingRight(2)
			}
			return style
		}).
		Rows(t.rows...)

	return tbl.Render() + "\n"
}
