package writer

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/tuteke2023/bankparse/internal/models"
)

const xlsxSheet = "Transactions"

// XLSX renders a statement as an Excel workbook: transactions on one sheet
// followed by the same summary block the CSV export carries.
func XLSX(st *models.Statement) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(xlsxSheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx: create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	header := []interface{}{"Date", "Description", "Category", "Debit", "Credit", "Balance"}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("xlsx: write header: %w", err)
	}

	row := 2
	for _, t := range st.Transactions {
		cells := []interface{}{
			t.Date,
			t.Description,
			t.Category,
			zeroToNil(t.Debit),
			zeroToNil(t.Credit),
			zeroToNil(t.Balance),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(xlsxSheet, cell, &cells); err != nil {
			return nil, fmt.Errorf("xlsx: write row %d: %w", row, err)
		}
		row++
	}

	row++ // blank separator row
	summary := [][]interface{}{
		{"Total Debits", nil, nil, st.TotalDebits, nil, nil},
		{"Total Credits", nil, nil, nil, st.TotalCredits, nil},
	}
	if st.OpeningBalance != 0 {
		summary = append(summary, []interface{}{"Opening Balance", nil, nil, nil, nil, st.OpeningBalance})
	}
	if st.ClosingBalance != 0 {
		summary = append(summary, []interface{}{"Closing Balance", nil, nil, nil, nil, st.ClosingBalance})
	}
	for _, s := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(xlsxSheet, cell, &s); err != nil {
			return nil, fmt.Errorf("xlsx: write summary row %d: %w", row, err)
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: serialize workbook: %w", err)
	}
	return buf, nil
}

func zeroToNil(v float64) interface{} {
	if v == 0 {
		return nil
	}
	return v
}
