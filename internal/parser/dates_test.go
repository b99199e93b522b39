package parser

import "testing"

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"01/15/2024", "01/15/2024"},
		{"15/01/2024", "01/15/2024"}, // day-first only when month-first is impossible
		{"04/05/2025", "04/05/2025"}, // ambiguous resolves month-first
		{"2024-01-15", "01/15/2024"},
		{"04-Apr-25", "04/04/2025"},
		{"4-Apr-2025", "04/04/2025"},
		{"15 Jan 2024", "01/15/2024"},
		{"Jan 15, 2024", "01/15/2024"},
		{"1/2/06", "01/02/2006"},
		{"garbage", "garbage"},
		{"32/13/2024", "32/13/2024"}, // unparseable kept verbatim
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := NormalizeDate(tt.input)
			if got != tt.expected {
				t.Errorf("NormalizeDate(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLeadingDate(t *testing.T) {
	tests := []struct {
		input string
		date  string
		rest  string
	}{
		{"15/01/2024 CARD PAYMENT", "15/01/2024", "CARD PAYMENT"},
		{"04-Apr-25 Direct Credit", "04-Apr-25", "Direct Credit"},
		{"15 Jan 2024 TESCO", "15 Jan 2024", "TESCO"},
		{"Oct 14 Coffee Shop", "Oct 14", "Coffee Shop"},
		{"2024-01-15  Transfer", "2024-01-15", "Transfer"},
		{"CARD PAYMENT 15/01/2024", "", "CARD PAYMENT 15/01/2024"},
		{"no date here", "", "no date here"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			date, rest := leadingDate(tt.input)
			if date != tt.date || rest != tt.rest {
				t.Errorf("leadingDate(%q) = (%q, %q), want (%q, %q)",
					tt.input, date, rest, tt.date, tt.rest)
			}
		})
	}
}

func TestStartsWithDate(t *testing.T) {
	if !startsWithDate("15/01/2024 PAYMENT") {
		t.Error("expected date-led line to match")
	}
	if startsWithDate("Total Debits: 45.00") {
		t.Error("summary line should not match")
	}
}
