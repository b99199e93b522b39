package parser

import (
	"math"
	"regexp"
	"strings"

	"github.com/tuteke2023/bankparse/internal/amount"
	"github.com/tuteke2023/bankparse/internal/models"
)

// DefaultEpsilon is the tolerance for balance-delta arithmetic. Amounts are
// currency values with two decimals; anything inside a cent is a match.
const DefaultEpsilon = 0.01

// Resolver assigns a row's amounts to debit, credit, and balance. Balance
// arithmetic is ground truth: when the running balance delta matches an
// amount, that classification wins over any keyword signal.
type Resolver struct {
	Epsilon float64
}

func (r *Resolver) epsilon() float64 {
	if r.Epsilon > 0 {
		return r.Epsilon
	}
	return DefaultEpsilon
}

// creditKeywords and debitKeywords drive classification when balance
// arithmetic is inconclusive. Order does not matter; first hit wins.
var creditKeywords = []string{
	"deposit", "direct credit", "transfer from", "transfer - from", "refund",
	"received", "salary", "payroll", "income", "interest paid",
}

var debitKeywords = []string{
	"direct debit", "payment", "purchase", "transfer to", "withdrawal",
	"fee", "charge", "card payment", "standing order",
}

func matchesAny(desc string, keywords []string) bool {
	lower := strings.ToLower(desc)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// braceRefPattern matches a brace-delimited numeric reference embedded in a
// description, e.g. "Payment {12345}".
var braceRefPattern = regexp.MustCompile(`\s*\{(\d+)\}`)

// cleanDescription strips delimiter artifacts and pulls out an embedded
// brace reference. Returns the cleaned description and the reference ("" if
// none).
func cleanDescription(desc string) (string, string) {
	desc = strings.Trim(desc, "| \t")
	ref := ""
	if m := braceRefPattern.FindStringSubmatch(desc); m != nil {
		ref = m[1]
		desc = braceRefPattern.ReplaceAllString(desc, "")
	}
	return strings.TrimSpace(desc), ref
}

// Resolve turns a segmented data row into a transaction. prev is the
// running balance before this row; havePrev is false on the first row of a
// statement. ok is false when the row should be dropped entirely.
func (r *Resolver) Resolve(row Row, cols ColumnMap, prev float64, havePrev bool) (models.Transaction, bool) {
	if row.Pipe && cols != nil {
		return r.resolveMapped(row.Cells, cols, prev, havePrev)
	}
	if row.Pipe {
		return r.resolvePositionalPipe(row.Cells, prev, havePrev)
	}
	return r.resolveWhitespace(row.Raw, prev, havePrev)
}

// resolveMapped trusts a header-derived column mapping first, then lets
// balance arithmetic and keywords correct misplaced amounts.
func (r *Resolver) resolveMapped(cells []string, cols ColumnMap, prev float64, havePrev bool) (models.Transaction, bool) {
	txn := models.Transaction{}

	txn.Date = NormalizeDate(cols.cell(cells, FieldDate))
	desc, braceRef := cleanDescription(cols.cell(cells, FieldDescription))
	txn.Description = desc
	txn.Reference = braceRef

	if refCell := strings.TrimSpace(cols.cell(cells, FieldReference)); refCell != "" && txn.Reference == "" {
		txn.Reference = refCell
	}

	haveBal := false
	if v, ok := amount.Parse(cols.cell(cells, FieldBalance)); ok {
		txn.Balance = v
		haveBal = true
	} else if _, mapped := cols[FieldBalance]; mapped {
		// Header promised a balance column the row does not line up with;
		// fall back to the rightmost numeric cell.
		if bal, ok := lastAmountCell(cells); ok {
			txn.Balance = bal
			haveBal = true
		}
	}

	if v, ok := r.movementAmount(cols.cell(cells, FieldDebit), &txn, prev, havePrev, haveBal); ok {
		txn.Debit = v
	}
	if v, ok := r.movementAmount(cols.cell(cells, FieldCredit), &txn, prev, havePrev, haveBal); ok {
		txn.Credit = v
	}

	// Opening/closing balance rows are not transactions: keep the balance,
	// zero the movement.
	if models.IsBalanceMarkerText(txn.Description) {
		txn.Debit = 0
		txn.Credit = 0
		return txn, true
	}

	r.arbitrate(&txn, prev, havePrev, haveBal)
	r.enforceExclusivity(&txn)

	if txn.Description == "" && txn.Debit == 0 && txn.Credit == 0 && txn.Balance == 0 {
		return models.Transaction{}, false
	}
	return txn, true
}

// movementAmount reads a mapped debit/credit cell. Cell drift can drop a
// reference number into a movement column; a reference-shaped token only
// counts as money when balance arithmetic proves it, otherwise it is kept
// as the row's reference.
func (r *Resolver) movementAmount(cell string, txn *models.Transaction, prev float64, havePrev, haveBal bool) (float64, bool) {
	toks := amount.Tokenize(cell)
	if len(toks) != 1 {
		return 0, false
	}
	v := math.Abs(toks[0].Value)
	if !toks[0].Reference {
		return v, true
	}
	if havePrev && haveBal {
		delta := txn.Balance - prev
		if math.Abs(delta-v) < r.epsilon() || math.Abs(delta+v) < r.epsilon() {
			return v, true
		}
	}
	if txn.Reference == "" {
		txn.Reference = strings.TrimSpace(cell)
	}
	return 0, false
}

// resolvePositionalPipe handles pipe rows with no usable header: first cell
// date, second description, reference in the third when non-numeric,
// balance in the rightmost numeric cell, movement in the first numeric
// non-reference cell between them.
func (r *Resolver) resolvePositionalPipe(cells []string, prev float64, havePrev bool) (models.Transaction, bool) {
	if len(cells) < 3 {
		return models.Transaction{}, false
	}

	txn := models.Transaction{}
	txn.Date = NormalizeDate(cells[0])
	desc, braceRef := cleanDescription(cells[1])
	txn.Description = desc
	txn.Reference = braceRef

	// Balance lives in the rightmost numeric cell.
	balIdx := -1
	for j := len(cells) - 1; j >= 2; j-- {
		if v, ok := amount.Parse(cells[j]); ok {
			txn.Balance = v
			balIdx = j
			break
		}
	}
	if balIdx < 0 {
		// No numbers at all: drop unless the description stands on its own.
		if txn.Description == "" || models.IsBalanceMarkerText(txn.Description) {
			return models.Transaction{}, false
		}
		return txn, true
	}

	// Movement is the first numeric cell before the balance that is not a
	// reference number.
	var amt float64
	haveAmt := false
	for j := 2; j < balIdx; j++ {
		cell := cells[j]
		if cell == "" {
			continue
		}
		toks := amount.Tokenize(cell)
		if len(toks) != 1 {
			continue
		}
		if toks[0].Reference {
			if txn.Reference == "" {
				txn.Reference = strings.TrimSpace(cell)
			}
			continue
		}
		amt = math.Abs(toks[0].Value)
		haveAmt = true
		break
	}

	// A non-numeric third cell is the reference column.
	if txn.Reference == "" && len(cells) > 3 {
		if _, ok := amount.Parse(cells[2]); !ok && cells[2] != "" {
			txn.Reference = cells[2]
		}
	}

	if models.IsBalanceMarkerText(txn.Description) {
		txn.Debit = 0
		txn.Credit = 0
		return txn, true
	}

	if haveAmt {
		r.classifyAmount(&txn, amt, prev, havePrev)
	} else {
		r.inferFromBalanceOnly(&txn, prev, havePrev)
	}
	r.enforceExclusivity(&txn)
	return txn, true
}

// resolveWhitespace handles rows with no pipes: date token first, then
// description up to the first amount, then amounts assigned by count
// (1 → balance; 2 → movement + balance; 3+ → debit, credit, balance).
// Reference-shaped digit runs inside the description are skipped, but the
// trailing column positions always read as money.
func (r *Resolver) resolveWhitespace(raw string, prev float64, havePrev bool) (models.Transaction, bool) {
	line := strings.TrimSpace(raw)
	date, rest := leadingDate(line)
	if date == "" {
		return models.Transaction{}, false
	}

	txn := models.Transaction{Date: NormalizeDate(date)}

	matches := amount.Locate(rest)

	// The trailing run of numeric tokens holds the movement and balance
	// columns; a bare digit run there is money. Reference numbers are the
	// digit runs embedded in or next to the description text.
	tailStart := len(matches)
	limit := len(rest)
	for i := len(matches) - 1; i >= 0; i-- {
		if strings.TrimSpace(rest[matches[i].End:limit]) != "" {
			break
		}
		tailStart = i
		limit = matches[i].Start
	}

	descEnd := len(rest)
	var amounts []float64
	for i, m := range matches {
		inAmountPosition := i >= tailStart && i >= len(matches)-2
		if m.Reference && !inAmountPosition {
			continue
		}
		if len(amounts) == 0 {
			descEnd = m.Start
		}
		amounts = append(amounts, m.Value)
	}

	desc, braceRef := cleanDescription(rest[:descEnd])
	txn.Description = desc
	txn.Reference = braceRef

	if models.IsBalanceMarkerText(txn.Description) {
		if len(amounts) == 0 {
			return models.Transaction{}, false
		}
		txn.Balance = amounts[len(amounts)-1]
		return txn, true
	}

	switch len(amounts) {
	case 0:
		if txn.Description == "" {
			return models.Transaction{}, false
		}
		return txn, true
	case 1:
		txn.Balance = amounts[0]
		r.inferFromBalanceOnly(&txn, prev, havePrev)
	case 2:
		txn.Balance = amounts[1]
		r.classifyAmount(&txn, math.Abs(amounts[0]), prev, havePrev)
	default:
		txn.Debit = math.Abs(amounts[0])
		txn.Credit = math.Abs(amounts[1])
		txn.Balance = amounts[len(amounts)-1]
		r.arbitrate(&txn, prev, havePrev, true)
	}
	r.enforceExclusivity(&txn)
	return txn, true
}

// classifyAmount places a single ambiguous amount as debit or credit.
// Balance-delta arbitration is definitive when it matches; keywords are
// the fallback; the final default is debit, the common case for rows that
// name a payee.
func (r *Resolver) classifyAmount(txn *models.Transaction, amt, prev float64, havePrev bool) {
	if havePrev {
		delta := txn.Balance - prev
		if math.Abs(delta-amt) < r.epsilon() {
			txn.Credit = amt
			return
		}
		if math.Abs(delta+amt) < r.epsilon() {
			txn.Debit = amt
			return
		}
	}
	if matchesAny(txn.Description, creditKeywords) && !matchesAny(txn.Description, debitKeywords) {
		txn.Credit = amt
		return
	}
	if matchesAny(txn.Description, debitKeywords) {
		txn.Debit = amt
		return
	}
	if havePrev && txn.Balance-prev > 0 {
		txn.Credit = amt
		return
	}
	txn.Debit = amt
}

// inferFromBalanceOnly recovers the movement of a row that carried only a
// balance. With a prior balance the delta is the movement; without one,
// only a keyword-classified description justifies treating the whole
// balance as the first movement.
func (r *Resolver) inferFromBalanceOnly(txn *models.Transaction, prev float64, havePrev bool) {
	if havePrev {
		delta := txn.Balance - prev
		if math.Abs(delta) < r.epsilon() {
			return
		}
		if delta > 0 {
			txn.Credit = round2(delta)
		} else {
			txn.Debit = round2(-delta)
		}
		return
	}

	// First row of the statement. Only trust keywords; otherwise leave the
	// movement at zero and let the caller surface it as a warning.
	if matchesAny(txn.Description, creditKeywords) && !matchesAny(txn.Description, debitKeywords) {
		txn.Credit = txn.Balance
	} else if matchesAny(txn.Description, debitKeywords) && txn.Balance < 0 {
		txn.Debit = -txn.Balance
	}
}

// arbitrate corrects a mapped or positional placement against the balance
// delta, then against keywords. It only moves an amount when exactly one of
// debit/credit is set; two live amounts go to enforceExclusivity.
func (r *Resolver) arbitrate(txn *models.Transaction, prev float64, havePrev, haveBal bool) {
	if (txn.Debit > 0) == (txn.Credit > 0) {
		return // zero or both set; nothing to arbitrate
	}

	amt := txn.Debit + txn.Credit
	if havePrev && haveBal {
		delta := txn.Balance - prev
		if math.Abs(delta-amt) < r.epsilon() {
			txn.Credit = amt
			txn.Debit = 0
			return
		}
		if math.Abs(delta+amt) < r.epsilon() {
			txn.Debit = amt
			txn.Credit = 0
			return
		}
	}

	// Delta inconclusive: a strong keyword contradiction moves the amount.
	if txn.Debit > 0 && matchesAny(txn.Description, creditKeywords) && !matchesAny(txn.Description, debitKeywords) {
		txn.Credit = txn.Debit
		txn.Debit = 0
	} else if txn.Credit > 0 && matchesAny(txn.Description, debitKeywords) && !matchesAny(txn.Description, creditKeywords) {
		txn.Debit = txn.Credit
		txn.Credit = 0
	}
}

// tieBreakKeywords are the last-resort credit signals when both columns
// came back non-zero and nothing else decides.
var tieBreakKeywords = []string{"from", "received", "credit", "deposit"}

// enforceExclusivity guarantees at most one of debit/credit is non-zero.
func (r *Resolver) enforceExclusivity(txn *models.Transaction) {
	if txn.Debit == 0 || txn.Credit == 0 {
		return
	}
	if matchesAny(txn.Description, tieBreakKeywords) {
		txn.Debit = 0
	} else {
		txn.Credit = 0
	}
}

// lastAmountCell returns the rightmost cell that parses as an amount.
func lastAmountCell(cells []string) (float64, bool) {
	for j := len(cells) - 1; j >= 0; j-- {
		if v, ok := amount.Parse(cells[j]); ok {
			return v, true
		}
	}
	return 0, false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
