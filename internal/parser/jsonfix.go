package parser

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tuteke2023/bankparse/internal/models"
)

// The model sometimes answers with JSON instead of a table. That JSON is
// frequently broken in the same few ways: markdown fences around it,
// trailing commas, and arithmetic left in numeric fields
// ("total_debits": 12.5 + 3.2). This file recovers those responses;
// anything it cannot fix falls back to table parsing.

var (
	trailingCommaObj = regexp.MustCompile(`,\s*\}`)
	trailingCommaArr = regexp.MustCompile(`,\s*\]`)
	totalsExprField  = regexp.MustCompile(`"(total_debits|total_credits|opening_balance|closing_balance)"\s*:\s*([0-9.\s+\-*/()]+)`)
)

// looseAmount unmarshals a numeric field that may arrive as a number, a
// "$1,234.56" string, or null.
type looseAmount float64

func (a *looseAmount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*a = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		str = strings.ReplaceAll(str, "$", "")
		str = strings.ReplaceAll(str, ",", "")
		v, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			*a = 0
			return nil
		}
		*a = looseAmount(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = looseAmount(v)
	return nil
}

type jsonTransaction struct {
	Date        string      `json:"date"`
	Description string      `json:"description"`
	Reference   string      `json:"reference"`
	Category    string      `json:"category"`
	Debit       looseAmount `json:"debit"`
	Credit      looseAmount `json:"credit"`
	Balance     looseAmount `json:"balance"`
}

type jsonStatement struct {
	AccountNumber   string            `json:"account_number"`
	StatementPeriod string            `json:"statement_period"`
	Transactions    []jsonTransaction `json:"transactions"`
	OpeningBalance  looseAmount       `json:"opening_balance"`
	ClosingBalance  looseAmount       `json:"closing_balance"`
}

// looksLikeJSON reports whether the response is JSON-shaped rather than a
// table: an object opens before any pipe table row appears.
func looksLikeJSON(text string) bool {
	s := stripFences(text)
	brace := strings.Index(s, "{")
	if brace < 0 {
		return false
	}
	pipe := strings.Index(s, "|")
	return pipe < 0 || brace < pipe
}

// recoverJSON attempts best-effort repair and decoding of a JSON-shaped
// response. The bool reports whether usable transactions came out; callers
// fall back to table parsing when it is false.
func recoverJSON(text string) ([]models.Transaction, *jsonStatement, bool) {
	s := stripFences(text)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, nil, false
	}
	s = s[start : end+1]

	s = trailingCommaObj.ReplaceAllString(s, "}")
	s = trailingCommaArr.ReplaceAllString(s, "]")

	// Evaluate arithmetic the model left in totals fields.
	s = totalsExprField.ReplaceAllStringFunc(s, func(m string) string {
		sub := totalsExprField.FindStringSubmatch(m)
		expr := strings.TrimSpace(sub[2])
		// Leave plain numbers alone; only genuine expressions get evaluated.
		if expr == "" {
			return m
		}
		if !strings.ContainsAny(expr, "+*/") && !strings.Contains(expr[1:], "-") {
			return m
		}
		v, err := evalArith(expr)
		if err != nil {
			return m
		}
		return fmt.Sprintf("%q: %s", sub[1], strconv.FormatFloat(v, 'f', -1, 64))
	})

	var js jsonStatement
	if err := json.Unmarshal([]byte(s), &js); err != nil {
		return nil, nil, false
	}
	if len(js.Transactions) == 0 {
		return nil, nil, false
	}

	txns := make([]models.Transaction, 0, len(js.Transactions))
	for _, jt := range js.Transactions {
		desc, braceRef := cleanDescription(jt.Description)
		t := models.Transaction{
			Date:        NormalizeDate(jt.Date),
			Description: desc,
			Reference:   jt.Reference,
			Category:    jt.Category,
			Debit:       math.Abs(float64(jt.Debit)),
			Credit:      math.Abs(float64(jt.Credit)),
			Balance:     float64(jt.Balance),
		}
		if t.Reference == "" {
			t.Reference = braceRef
		}
		if t.IsBalanceMarker() {
			t.Debit = 0
			t.Credit = 0
		}
		txns = append(txns, t)
	}
	return txns, &js, true
}

func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}

// evalArith evaluates an arithmetic expression restricted to numbers,
// + - * /, and parentheses. A small recursive-descent evaluator is used
// deliberately: no general-purpose evaluation of model output, ever.
func evalArith(input string) (float64, error) {
	p := &arithParser{src: input}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return 0, fmt.Errorf("arith: unexpected %q at %d", p.src[p.pos], p.pos)
	}
	return v, nil
}

type arithParser struct {
	src string
	pos int
}

func (p *arithParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n') {
		p.pos++
	}
}

func (p *arithParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

// expr := term (('+'|'-') term)*
func (p *arithParser) parseExpr() (float64, error) {
	v, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			v += rhs
		case '-':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			v -= rhs
		default:
			return v, nil
		}
	}
}

// term := factor (('*'|'/') factor)*
func (p *arithParser) parseTerm() (float64, error) {
	v, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			rhs, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			v *= rhs
		case '/':
			p.pos++
			rhs, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			if rhs == 0 {
				return 0, fmt.Errorf("arith: division by zero")
			}
			v /= rhs
		default:
			return v, nil
		}
	}
}

// factor := number | '(' expr ')' | '-' factor
func (p *arithParser) parseFactor() (float64, error) {
	switch c := p.peek(); {
	case c == '(':
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, fmt.Errorf("arith: missing closing parenthesis")
		}
		p.pos++
		return v, nil
	case c == '-':
		p.pos++
		v, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		return -v, nil
	case c >= '0' && c <= '9' || c == '.':
		return p.parseNumber()
	default:
		return 0, fmt.Errorf("arith: unexpected character %q", c)
	}
}

func (p *arithParser) parseNumber() (float64, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && (p.src[p.pos] >= '0' && p.src[p.pos] <= '9' || p.src[p.pos] == '.') {
		p.pos++
	}
	if start == p.pos {
		return 0, fmt.Errorf("arith: expected number at %d", start)
	}
	return strconv.ParseFloat(p.src[start:p.pos], 64)
}
