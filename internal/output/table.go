package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// TableFormatter renders datasets as an ASCII table.
type TableFormatter struct{}

// Format implements Formatter.
func (f *TableFormatter) Format(data Dataset) (string, error) {
	if data == nil {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	if title := data.Title(); title != "" {
		t.SetTitle(title)
	}
	t.AppendHeader(toRow(data.Header()))

	rows := data.Rows()
	for _, row := range rows {
		t.AppendRow(toRow(row))
	}

	if width := len(data.Header()); width > 0 {
		footer := make([]string, width)
		footer[width-1] = fmt.Sprintf("%d total", len(rows))
		t.AppendFooter(toRow(footer))
	}

	return t.Render(), nil
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, cell := range cells {
		row[i] = cell
	}
	return row
}
