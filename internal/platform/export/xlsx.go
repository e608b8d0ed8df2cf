package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Items"

// writeXLSX writes a single-sheet workbook: title and meta lines on top, a
// bold header row, then the data rows. The header row is frozen.
func writeXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	row := 1
	if t.Title != "" {
		if err := f.SetCellValue(sheetName, "A1", t.Title); err != nil {
			return err
		}
		row++
	}
	for _, line := range t.Meta {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetCellValue(sheetName, cell, line); err != nil {
			return err
		}
		row++
	}
	if row > 1 {
		row++
	}

	headerRow := row
	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	for i, h := range t.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}
	if len(t.Headers) > 0 {
		first, _ := excelize.CoordinatesToCellName(1, headerRow)
		last, _ := excelize.CoordinatesToCellName(len(t.Headers), headerRow)
		if err := f.SetCellStyle(sheetName, first, last, bold); err != nil {
			return err
		}
		topLeft, _ := excelize.CoordinatesToCellName(1, headerRow+1)
		if err := f.SetPanes(sheetName, &excelize.Panes{
			Freeze:      true,
			YSplit:      headerRow,
			TopLeftCell: topLeft,
			ActivePane:  "bottomLeft",
		}); err != nil {
			return err
		}
	}

	for r, values := range t.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, headerRow+1+r)
		cells := make([]interface{}, len(values))
		for i, v := range values {
			cells[i] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", r, err)
		}
	}

	_, err = f.WriteTo(w)
	return err
}
