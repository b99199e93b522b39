package parser

import (
	"strings"
	"testing"
)

func TestSegmentClassification(t *testing.T) {
	text := strings.Join([]string{
		"Your statement for January.",
		"",
		"| Date | Description | Debit | Credit | Balance |",
		"|------|-------------|-------|--------|---------|",
		"| 15/01/2024 | Tesco Stores | 45.00 |  | 955.00 |",
		"Total Debits: $980.50",
		"Thank you for banking with us.",
	}, "\n")

	rows := Segment(text)
	kinds := make([]LineKind, 0, len(rows))
	for _, r := range rows {
		kinds = append(kinds, r.Kind)
	}

	want := []LineKind{
		LineSkip,    // prose
		LineSkip,    // blank
		LineHeader,  // header
		LineSkip,    // dash separator
		LineData,    // transaction
		LineSummary, // totals
		LineSkip,    // prose
	}
	if len(kinds) != len(want) {
		t.Fatalf("got %d rows, want %d", len(kinds), len(want))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("row %d (%q): kind = %d, want %d", i, rows[i].Raw, kinds[i], want[i])
		}
	}
}

func TestSplitCellsKeepsInteriorEmpties(t *testing.T) {
	row := Segment("| 04-Apr-25 | Direct Credit 400937 DB RESULTS |  | 1,750.00 |")[0]
	if row.Kind != LineData {
		t.Fatalf("kind = %d, want LineData", row.Kind)
	}
	want := []string{"04-Apr-25", "Direct Credit 400937 DB RESULTS", "", "1,750.00"}
	if len(row.Cells) != len(want) {
		t.Fatalf("got %d cells %v, want %d", len(row.Cells), row.Cells, len(want))
	}
	for i := range want {
		if row.Cells[i] != want[i] {
			t.Errorf("cell %d = %q, want %q", i, row.Cells[i], want[i])
		}
	}
}

func TestSplitCellsWhitespaceRuns(t *testing.T) {
	row := Segment("15/01/2024  Card Payment Tesco  45.00  1,205.00")[0]
	if row.Kind != LineData {
		t.Fatalf("kind = %d, want LineData", row.Kind)
	}
	if row.Pipe {
		t.Error("whitespace row flagged as pipe")
	}
	want := []string{"15/01/2024", "Card Payment Tesco", "45.00", "1,205.00"}
	if len(row.Cells) != len(want) {
		t.Fatalf("got cells %v, want %v", row.Cells, want)
	}
	for i := range want {
		if row.Cells[i] != want[i] {
			t.Errorf("cell %d = %q, want %q", i, row.Cells[i], want[i])
		}
	}
}

func TestIsHeaderLine(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"Date | Description | Debit | Credit | Balance", true},
		{"Date  Transaction Details  Money Out  Money In  Balance", true},
		{"| Date | Details | Withdrawal | Deposit | Balance |", true},
		{"15/01/2024 | Tesco | 45.00 | | 955.00", false},
		{"Date and time of your visit", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := isHeaderLine(tt.input); got != tt.expected {
				t.Errorf("isHeaderLine(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsSummaryLine(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"Total Debits: $980.50", true},
		{"Opening Balance 1,000.00", true},
		{"Page 2 of 3", true},
		{"15/01/2024 Closing Balance 955.00", false}, // dated rows are data
		{"Regular prose line", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := isSummaryLine(tt.input); got != tt.expected {
				t.Errorf("isSummaryLine(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestHeaderRedetectionMidText(t *testing.T) {
	text := strings.Join([]string{
		"| Date | Description | Debit | Credit | Balance |",
		"| 15/01/2024 | Coffee | 5.00 |  | 995.00 |",
		"",
		"| Date | Details | Paid Out | Paid In | Balance |",
		"| 16/01/2024 | Refund |  | 5.00 | 1000.00 |",
	}, "\n")

	rows := Segment(text)
	headers := 0
	for _, r := range rows {
		if r.Kind == LineHeader {
			headers++
		}
	}
	if headers != 2 {
		t.Errorf("got %d header rows, want 2", headers)
	}
}
