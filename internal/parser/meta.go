package parser

import (
	"regexp"
	"strings"
)

// Statement metadata is pass-through: the engine lifts it from surrounding
// prose when present and otherwise leaves it empty.

var (
	accountNumberPattern = regexp.MustCompile(`(?:\*{2,}\d{2,}|\d{6,12})`)
	anyDatePattern       = regexp.MustCompile(
		`\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}|` +
			`(?i)\d{1,2}[\s\-](?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*[\s\-]\d{2,4}`,
	)
)

// extractMetadata finds an account number and statement period in the text
// around the table. Both searches are label-anchored: a bare digit run far
// from an "account" label is more likely a reference number.
func extractMetadata(text string) (account, period string) {
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)

		if account == "" && strings.Contains(lower, "account") {
			if m := accountNumberPattern.FindString(line); m != "" {
				account = m
			}
		}

		if period == "" && strings.Contains(lower, "period") {
			dates := anyDatePattern.FindAllString(line, 2)
			if len(dates) == 2 {
				period = dates[0] + " to " + dates[1]
			}
		}

		if account != "" && period != "" {
			break
		}
	}
	return account, period
}
