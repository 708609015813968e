// Package export writes fetched inventory out: flat CSV of canonical rows,
// or one warehouse-by-size matrix sheet per style in a workbook.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"sanmar-inventory/internal/core"
)

// columns is the flat export header: exactly the canonical row fields, in
// schema order, always present.
var columns = []string{
	"style", "partId", "color", "size", "description",
	"warehouseId", "warehouse", "qty", "totalAvailable", "price",
}

// FixExtension appends the extension for the chosen format when the path
// does not already carry it. Format "" picks xlsx for .xlsx paths and csv
// otherwise.
func FixExtension(path, format string) (string, string) {
	if format == "" {
		if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
			format = "xlsx"
		} else {
			format = "csv"
		}
	}
	ext := "." + format
	if !strings.HasSuffix(strings.ToLower(path), ext) {
		path += ext
	}
	return path, format
}

// WriteCSV writes rows as flat CSV. Unknown optional fields are written as
// empty cells, never zero-filled.
func WriteCSV(rows []core.Row, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(csvRecord(row)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func csvRecord(row core.Row) []string {
	total := ""
	if row.TotalAvailable != nil {
		total = strconv.Itoa(*row.TotalAvailable)
	}
	price := ""
	if row.Price != nil {
		price = row.Price.StringFixed(2)
	}
	return []string{
		row.Style, row.PartID, row.Color, row.Size, row.Description,
		row.WarehouseID, row.Warehouse, strconv.Itoa(row.Qty), total, price,
	}
}

// WriteXLSX writes one sheet per table, named after the table's style. The
// leading label column is written as a plain first column; data columns
// follow in the table's size order.
func WriteXLSX(tables []*core.Table, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, table := range tables {
		sheet := sheetName(table.Style, i)
		if i == 0 {
			f.SetSheetName("Sheet1", sheet)
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("failed to add sheet %s: %w", sheet, err)
			}
		}
		for r, row := range table.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return fmt.Errorf("failed to address cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, row.Label); err != nil {
				return fmt.Errorf("failed to write label: %w", err)
			}
			for c, value := range row.Cells {
				cell, err := excelize.CoordinatesToCellName(c+2, r+1)
				if err != nil {
					return fmt.Errorf("failed to address cell: %w", err)
				}
				if err := f.SetCellValue(sheet, cell, value); err != nil {
					return fmt.Errorf("failed to write cell: %w", err)
				}
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// sheetName produces a legal, unique sheet name from a style code. Excel
// caps sheet names at 31 chars and rejects a handful of characters.
func sheetName(style string, index int) string {
	name := style
	if name == "" {
		name = fmt.Sprintf("Sheet%d", index+1)
	}
	for _, bad := range []string{"[", "]", ":", "*", "?", "/", "\\"} {
		name = strings.ReplaceAll(name, bad, "_")
	}
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}
