package parser

import (
	"regexp"
	"strings"
)

// LineKind classifies one line of model output.
type LineKind int

const (
	// LineData is a candidate transaction row.
	LineData LineKind = iota
	// LineHeader is a column header row. Each occurrence resets the active
	// column mapping: multi-page statements repeat headers, and one text
	// block may contain several concatenated tables.
	LineHeader
	// LineSummary is a standalone totals/balance row under the table.
	// Summary rows never become transactions, but the engine still reads
	// opening-balance lines to seed the running balance.
	LineSummary
	// LineSkip covers blanks, separators, and surrounding prose.
	LineSkip
)

// Row is one segmented line with its cells split out.
type Row struct {
	Kind LineKind
	Raw  string
	// Cells are the split fields. For pipe rows the border cells are
	// stripped but interior empties survive: an empty debit cell means
	// "no debit", not "no cell".
	Cells []string
	// Pipe records the delimiter style the row used.
	Pipe bool
}

var separatorPattern = regexp.MustCompile(`^[\s|\-=_+:]+$`)

// whitespaceRun splits whitespace-delimited rows: a tab or a run of two or
// more spaces marks a field boundary; single spaces stay inside fields.
var whitespaceRun = regexp.MustCompile(`\t+|\s{2,}`)

// Segment splits a text block into classified rows. Surrounding prose,
// blank lines, separators, and trailing summary rows never reach the
// resolver; the caller walks LineHeader, LineSummary, and LineData rows.
func Segment(text string) []Row {
	lines := strings.Split(text, "\n")
	rows := make([]Row, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		pipe := strings.Contains(trimmed, "|")
		switch {
		case trimmed == "" || separatorPattern.MatchString(trimmed):
			rows = append(rows, Row{Kind: LineSkip, Raw: line})
		case isHeaderLine(trimmed):
			rows = append(rows, Row{Kind: LineHeader, Raw: line, Cells: splitCells(trimmed), Pipe: pipe})
		case isSummaryLine(trimmed):
			rows = append(rows, Row{Kind: LineSummary, Raw: line})
		case isDataCandidate(trimmed, pipe):
			rows = append(rows, Row{Kind: LineData, Raw: line, Cells: splitCells(trimmed), Pipe: pipe})
		default:
			rows = append(rows, Row{Kind: LineSkip, Raw: line})
		}
	}
	return rows
}

// isDataCandidate separates table rows from surrounding prose. Whitespace
// rows must open with a date token; pipe rows need a digit in their first
// cell and enough cells to hold date, description, and an amount.
func isDataCandidate(line string, pipe bool) bool {
	if pipe {
		cells := splitCells(line)
		if len(cells) < 3 {
			return false
		}
		return strings.ContainsAny(cells[0], "0123456789")
	}
	return startsWithDate(line)
}

// splitCells picks the delimiter style per line: pipe tables split on |,
// everything else on whitespace runs.
func splitCells(line string) []string {
	if strings.Contains(line, "|") {
		parts := strings.Split(line, "|")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		// Border pipes produce empty first/last fields. Drop only those;
		// interior empty cells are meaningful.
		if len(parts) > 0 && parts[0] == "" {
			parts = parts[1:]
		}
		if len(parts) > 0 && parts[len(parts)-1] == "" {
			parts = parts[:len(parts)-1]
		}
		return parts
	}

	parts := whitespaceRun.Split(line, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// isHeaderLine detects a column header: "date" plus a description-ish word
// plus a money-direction word.
func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	if !strings.Contains(lower, "date") {
		return false
	}
	if !strings.Contains(lower, "description") && !strings.Contains(lower, "transaction") &&
		!strings.Contains(lower, "details") {
		return false
	}
	return strings.Contains(lower, "debit") || strings.Contains(lower, "withdrawal") ||
		strings.Contains(lower, "deposit") || strings.Contains(lower, "credit") ||
		strings.Contains(lower, "paid out") || strings.Contains(lower, "money out")
}

// summaryPrefixes mark standalone summary rows under the table. A balance
// mention inside a dated row is data; these only match rows that carry no
// date of their own.
var summaryPrefixes = []string{
	"total debits",
	"total credits",
	"total paid in",
	"total paid out",
	"ending balance",
	"closing balance",
	"opening balance",
	"previous balance",
	"balance brought forward",
	"summary",
	"statement period",
	"page ",
	"continued",
}

func isSummaryLine(line string) bool {
	if startsWithDate(line) {
		return false
	}
	lower := strings.ToLower(strings.Trim(line, "|-= \t"))
	for _, p := range summaryPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}
