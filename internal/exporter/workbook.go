package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// WorkbookWriter collects report tables into a single Excel workbook,
// one sheet per report.
type WorkbookWriter struct {
	file   *excelize.File
	sheets int
}

// NewWorkbookWriter creates an empty workbook.
func NewWorkbookWriter() *WorkbookWriter {
	return &WorkbookWriter{file: excelize.NewFile()}
}

// AddSheet appends a report table as a new sheet.
func (w *WorkbookWriter) AddSheet(table ReportTable) error {
	sheet := table.Name
	if w.sheets == 0 {
		// Rename the default sheet instead of leaving an empty one.
		if err := w.file.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("failed to rename sheet: %w", err)
		}
	} else {
		if _, err := w.file.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
	}
	w.sheets++

	rows := make([][]string, 0, len(table.Records)+1)
	rows = append(rows, table.Headers)
	rows = append(rows, table.Records...)

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to compute cell: %w", err)
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := w.file.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d on %s: %w", i+1, sheet, err)
		}
	}
	return nil
}

// Save writes the workbook to disk.
func (w *WorkbookWriter) Save(path string) error {
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// Close releases the underlying file resources.
func (w *WorkbookWriter) Close() error {
	return w.file.Close()
}
