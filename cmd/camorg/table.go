package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column is one table column. Counts and IDs are right aligned.
type column struct {
	title string
	right bool
}

func col(title string) column { return column{title: title} }
func rightCol(title string) column { return column{title: title, right: true} }

// noMatch stands in for the timestamp of a name the matcher rejects.
const noMatch = "no match"

// renderTable lays rows out under columns with rounded borders. Headers
// keep their case. Short rows are padded with blank cells, and a non-empty
// footer is printed below the rows.
func renderTable(columns []column, rows [][]string, footer []string) string {
	if len(columns) == 0 {
		return ""
	}

	style := table.StyleRounded
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault

	tw := table.NewWriter()
	tw.SetStyle(style)

	tw.AppendHeader(toRow(len(columns), func(i int) string { return columns[i].title }))
	for _, row := range rows {
		tw.AppendRow(toRow(len(columns), cellOf(row)))
	}
	if len(footer) > 0 {
		tw.AppendFooter(toRow(len(columns), cellOf(footer)))
	}

	configs := make([]table.ColumnConfig, len(columns))
	for i, c := range columns {
		align := text.AlignLeft
		if c.right {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{
			Number:           i + 1,
			Align:            align,
			AlignFooter:      align,
			AlignHeader:      text.AlignLeft,
			WidthMax:         80,
			WidthMaxEnforcer: text.WrapSoft,
		}
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func toRow(n int, cell func(int) string) table.Row {
	r := make(table.Row, n)
	for i := range r {
		r[i] = cell(i)
	}
	return r
}

func cellOf(values []string) func(int) string {
	return func(i int) string {
		if i < len(values) {
			return values[i]
		}
		return ""
	}
}
