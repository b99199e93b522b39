package amount

import (
	"regexp"
	"strconv"
	"strings"
)

// Token is one currency-like value found in a text fragment.
type Token struct {
	// Value is the parsed amount. Parenthesized amounts come back negative.
	Value float64
	// Raw is the matched text before normalization.
	Raw string
	// Reference marks a pure digit string of four or more digits with no
	// decimal point. The shape alone is ambiguous (whole-pound amounts look
	// the same); callers decide by column position whether the token is a
	// reference code or money.
	Reference bool
}

// tokenPattern matches optional sign/$, comma-grouped digits, an optional
// decimal fraction, and the parenthesized-negative convention (123.45).
// The \b before the first digit keeps digits embedded in words ("xx5330")
// from being read as amounts.
var tokenPattern = regexp.MustCompile(`\(\$?\s*\d[\d,]*(?:\.\d+)?\s*\)|[-+]?\$?\b\d[\d,]*(?:\.\d+)?`)

// Match is a Token plus its byte offsets in the source fragment.
type Match struct {
	Token
	Start int
	End   int
}

// Locate finds currency tokens in a fragment, left to right, with their
// positions. Tokens that fail to parse as a float are skipped, not
// reported: noisy model output is the expected case, not an error.
func Locate(fragment string) []Match {
	idxs := tokenPattern.FindAllStringIndex(fragment, -1)
	if idxs == nil {
		return nil
	}

	matches := make([]Match, 0, len(idxs))
	for _, loc := range idxs {
		raw := fragment[loc[0]:loc[1]]
		v, ok := parse(raw)
		if !ok {
			continue
		}
		matches = append(matches, Match{
			Token: Token{
				Value:     v,
				Raw:       raw,
				Reference: looksLikeReference(raw),
			},
			Start: loc[0],
			End:   loc[1],
		})
	}
	return matches
}

// Tokenize extracts currency tokens from a fragment in left-to-right order.
func Tokenize(fragment string) []Token {
	matches := Locate(fragment)
	if matches == nil {
		return nil
	}
	tokens := make([]Token, 0, len(matches))
	for _, m := range matches {
		tokens = append(tokens, m.Token)
	}
	return tokens
}

// Parse normalizes a single amount string ("$1,234.56", "(45.00)") to a
// float64. The boolean is false when the string is not a usable amount.
func Parse(s string) (float64, bool) {
	return parse(strings.TrimSpace(s))
}

func parse(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	negative := false

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if s == "" || s == "-" || s == "+" {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

// looksLikeReference reports whether a raw token is a bare transaction
// reference: digits only, at least four of them, no decimal point.
func looksLikeReference(raw string) bool {
	s := strings.TrimSpace(raw)
	if strings.ContainsAny(s, ".,$()+-") {
		return false
	}
	if len(s) < 4 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Amounts filters reference tokens out and returns the remaining values in
// order, for callers that treat every reference-shaped token as a code.
func Amounts(tokens []Token) []float64 {
	var out []float64
	for _, t := range tokens {
		if t.Reference {
			continue
		}
		out = append(out, t.Value)
	}
	return out
}
