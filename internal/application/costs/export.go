package costs

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Cost Breakdown"

var exportHeader = []interface{}{"Category", "Trade", "Item", "Description", "Quantity", "Unit", "Unit Rate", "Amount"}

// ExportWorkbook renders a breakdown as an .xlsx workbook: one row per item, a subtotal row per
// non-empty category and a grand total row.
func ExportWorkbook(b *Breakdown) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf("%s %s (v%d, %s)", b.QuotationCode, b.ProjectName, b.Version, b.Status)
	if err := f.SetCellValue(exportSheet, "A1", title); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A3", &exportHeader); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(exportSheet, "A3", "H3", bold); err != nil {
		return nil, err
	}

	row := 4
	for _, cat := range b.Categories {
		if cat.ItemCount == 0 {
			continue
		}
		for _, it := range cat.Items {
			values := []interface{}{string(it.Category), it.Trade, it.ItemName, it.Description, it.Quantity, it.Unit, it.UnitRate, it.TotalAmount}
			if err := setRow(f, row, &values); err != nil {
				return nil, err
			}
			row++
		}
		subtotal := []interface{}{fmt.Sprintf("%s subtotal", cat.Category), nil, nil, nil, nil, nil, nil, cat.Subtotal}
		if err := setRow(f, row, &subtotal); err != nil {
			return nil, err
		}
		if err := styleRow(f, row, bold); err != nil {
			return nil, err
		}
		row++
	}

	grand := []interface{}{"Grand total", nil, nil, nil, nil, nil, nil, b.Totals.GrandTotal}
	if err := setRow(f, row+1, &grand); err != nil {
		return nil, err
	}
	if err := styleRow(f, row+1, bold); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(exportSheet, "A", "D", 22); err != nil {
		return nil, err
	}
	return f.WriteToBuffer()
}

func setRow(f *excelize.File, row int, values *[]interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(exportSheet, cell, values)
}

func styleRow(f *excelize.File, row, style int) error {
	return f.SetCellStyle(exportSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("H%d", row), style)
}
