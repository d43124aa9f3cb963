package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/rodaine/table"
)

// RenderTable renders rows under the column headers. style, if non-nil,
// decorates the header line.
func RenderTable(w io.Writer, columns []Column, rows [][]string, style func(string) string) {
	headers := make([]interface{}, len(columns))
	for i, col := range columns {
		headers[i] = col.Name
	}

	tbl := table.New(headers...).WithWriter(w)
	if style != nil {
		tbl = tbl.WithHeaderFormatter(func(format string, vals ...interface{}) string {
			return style(fmt.Sprintf(format, vals...))
		})
	}

	for _, row := range rows {
		cells := make([]interface{}, len(columns))
		for i, col := range columns {
			value := row[i]
			if col.Width > 0 {
				value = TruncateString(value, col.Width)
			}
			cells[i] = value
		}
		tbl.AddRow(cells...)
	}

	tbl.Print()
}

// TruncateString truncates a string to maxLen runes and adds "..." if needed
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// PadString pads a string to the specified width
func PadString(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
