// Package writer renders statements to the supported output formats: CSV,
// JSON, round-trip pipe table, and XLSX.
package writer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/tuteke2023/bankparse/internal/models"
)

// csvHeader is the column order for CSV exports.
var csvHeader = []string{"Date", "Description", "Category", "Debit", "Credit", "Balance"}

// CSV renders a statement as CSV text: one row per transaction with empty
// cells for zero amounts, then a blank row and a summary block.
func CSV(st *models.Statement) string {
	var buf bytes.Buffer
	// csv.Writer only errors on the underlying writer; bytes.Buffer never fails.
	writeCSV(&buf, st)
	return buf.String()
}

// WriteCSV streams the CSV rendering of a statement to w.
func WriteCSV(w io.Writer, st *models.Statement) error {
	return writeCSV(w, st)
}

func writeCSV(w io.Writer, st *models.Statement) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	for _, t := range st.Transactions {
		row := []string{
			t.Date,
			t.Description,
			t.Category,
			blankIfZero(t.Debit),
			blankIfZero(t.Credit),
			blankIfZero(t.Balance),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	cw.Write([]string{})
	cw.Write([]string{"Summary", "", "", "", "", ""})
	cw.Write([]string{"Total Debits", "", "", formatAmount(st.TotalDebits), "", ""})
	cw.Write([]string{"Total Credits", "", "", "", formatAmount(st.TotalCredits), ""})
	if st.OpeningBalance != 0 {
		cw.Write([]string{"Opening Balance", "", "", "", "", formatAmount(st.OpeningBalance)})
	}
	if st.ClosingBalance != 0 {
		cw.Write([]string{"Closing Balance", "", "", "", "", formatAmount(st.ClosingBalance)})
	}

	cw.Flush()
	return cw.Error()
}

func blankIfZero(v float64) string {
	if v == 0 {
		return ""
	}
	return formatAmount(v)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
