package parser

import "strings"

// Field names the semantic columns of a statement table.
type Field string

const (
	FieldDate        Field = "date"
	FieldDescription Field = "description"
	FieldReference   Field = "reference"
	FieldDebit       Field = "debit"
	FieldCredit      Field = "credit"
	FieldBalance     Field = "balance"
)

// ColumnMap maps semantic fields to cell indexes for pipe-delimited rows.
// Whitespace-delimited rows do not get a reliable index mapping; they fall
// back to positional inference in the resolver.
type ColumnMap map[Field]int

// AnalyzeHeader derives a column mapping from a header row's cells. Cells
// matching no keyword are left unmapped. Returns nil when nothing at all
// matched, so callers can tell "no header" from "useless header".
func AnalyzeHeader(cells []string) ColumnMap {
	m := ColumnMap{}
	for i, cell := range cells {
		lower := strings.ToLower(cell)
		switch {
		case strings.Contains(lower, "date"):
			setIfAbsent(m, FieldDate, i)
		case strings.Contains(lower, "description"), strings.Contains(lower, "transaction"),
			strings.Contains(lower, "details"):
			setIfAbsent(m, FieldDescription, i)
		case strings.Contains(lower, "debit"), strings.Contains(lower, "withdrawal"),
			strings.Contains(lower, "paid out"), strings.Contains(lower, "money out"):
			setIfAbsent(m, FieldDebit, i)
		case strings.Contains(lower, "credit"), strings.Contains(lower, "deposit"),
			strings.Contains(lower, "paid in"), strings.Contains(lower, "money in"):
			setIfAbsent(m, FieldCredit, i)
		case strings.Contains(lower, "balance"):
			setIfAbsent(m, FieldBalance, i)
		case strings.Contains(lower, "ref"):
			setIfAbsent(m, FieldReference, i)
		}
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

func setIfAbsent(m ColumnMap, f Field, i int) {
	if _, ok := m[f]; !ok {
		m[f] = i
	}
}

// cell returns the mapped cell for a field, or "" when the field is
// unmapped or the row is too short.
func (m ColumnMap) cell(cells []string, f Field) string {
	idx, ok := m[f]
	if !ok || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}
