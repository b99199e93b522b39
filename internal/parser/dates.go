package parser

import (
	"regexp"
	"strings"
	"time"
)

// Date layouts accepted from model output, tried in order. Ambiguous
// numeric dates (04/05/2025) resolve month-first; day-first layouts only
// catch values the month-first read rejects (day > 12).
var dateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"02/01/2006",
	"2006-01-02",
	"01-02-2006",
	"1-2-2006",
	"02-01-2006",
	"2006/01/02",
	"01/02/06",
	"1/2/06",
	"02/01/06",
	"02-Jan-06",
	"2-Jan-06",
	"02-Jan-2006",
	"2-Jan-2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"02 Jan 06",
	"2 Jan 06",
	"Jan 02, 2006",
	"Jan 2, 2006",
}

// datePattern recognizes date-shaped tokens at the start of a row:
// numeric (15/01/2024, 2024-01-15) or day-month text (04-Apr-25, 4 Dec).
var datePattern = regexp.MustCompile(
	`^(\d{4}[/\-]\d{1,2}[/\-]\d{1,2}|\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}|` +
		`(?i:\d{1,2}[\s\-](?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*(?:[\s\-]\d{2,4})?|` +
		`(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{1,2}(?:,?\s+\d{2,4})?))`,
)

// NormalizeDate converts a raw date string to MM/DD/YYYY. Strings that
// match none of the known layouts are returned verbatim: an odd date is a
// data-quality signal, never grounds for dropping the row.
func NormalizeDate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return s
	}
	// Collapse runs of whitespace so "04  Apr 2025" still parses.
	s = strings.Join(strings.Fields(s), " ")

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("01/02/2006")
		}
	}
	return raw
}

// leadingDate returns the date-shaped token at the start of the string and
// the remainder after it, or ("", s) when the string does not open with one.
func leadingDate(s string) (string, string) {
	s = strings.TrimSpace(s)
	m := datePattern.FindString(s)
	if m == "" {
		return "", s
	}
	return m, strings.TrimSpace(s[len(m):])
}

// startsWithDate reports whether a trimmed line opens with a date token.
func startsWithDate(s string) bool {
	d, _ := leadingDate(s)
	return d != ""
}
