package extract

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/xuri/excelize/v2"
)

// extractXLSX flattens a workbook into text: one line per row, cells joined
// with tabs, sheets separated by their name and a blank line.
func extractXLSX(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Debug("Failed to close workbook", "path", path, "error", err)
		}
	}()

	var sb strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}

		sb.WriteString(sheet)
		sb.WriteString("\n")
		for _, row := range rows {
			line := strings.TrimRight(strings.Join(row, "\t"), "\t")
			if line == "" {
				continue
			}
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}
