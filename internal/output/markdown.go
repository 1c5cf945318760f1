package output

import (
	"fmt"
	"strings"
)

// MarkdownFormatter renders datasets as a markdown table.
type MarkdownFormatter struct{}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(data Dataset) (string, error) {
	if data == nil {
		return "", nil
	}

	header := data.Header()
	var sb strings.Builder
	if title := data.Title(); title != "" {
		sb.WriteString(fmt.Sprintf("## %s\n\n", escapeMarkdownCell(title)))
	}
	sb.WriteString("|")
	for _, cell := range header {
		sb.WriteString(" " + escapeMarkdownCell(cell) + " |")
	}
	sb.WriteString("\n|")
	for range header {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")

	for _, row := range data.Rows() {
		sb.WriteString("|")
		for _, cell := range row {
			sb.WriteString(" " + escapeMarkdownCell(cell) + " |")
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	value = strings.ReplaceAll(value, "|", "\\|")
	value = strings.ReplaceAll(value, "\r\n", "<br>")
	return strings.ReplaceAll(value, "\n", "<br>")
}
