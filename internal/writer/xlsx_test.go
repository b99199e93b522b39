package writer

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestXLSX(t *testing.T) {
	buf, err := XLSX(sampleStatement())
	if err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty workbook")
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("workbook does not open: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue("Transactions", "A1")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Date" {
		t.Errorf("A1 = %q, want Date", got)
	}

	desc, _ := f.GetCellValue("Transactions", "B3")
	if desc != "Tesco Stores" {
		t.Errorf("B3 = %q, want Tesco Stores", desc)
	}

	// Zero credit must be an empty cell, not 0.
	credit, _ := f.GetCellValue("Transactions", "E3")
	if credit != "" {
		t.Errorf("E3 = %q, want empty", credit)
	}
}
