// Package ledger verifies and repairs resolved transaction sequences using
// the running balance as arithmetic ground truth, then aggregates them into
// a statement.
package ledger

import (
	"fmt"
	"math"
	"strings"

	"github.com/tuteke2023/bankparse/internal/models"
)

const (
	// DefaultEpsilon is the balance-arithmetic tolerance in currency units.
	DefaultEpsilon = 0.01
	// DefaultSwapThreshold is the fraction of transactions that must show a
	// keyword contradiction before a global debit/credit swap is applied.
	// Inherited heuristic; expose it rather than trusting it.
	DefaultSwapThreshold = 0.30
)

// Validator checks running-balance consistency over a transaction sequence
// and applies the one systematic repair that is safer than leaving the data
// alone: a whole-statement debit/credit column swap.
type Validator struct {
	Epsilon       float64
	SwapThreshold float64
}

func (v *Validator) epsilon() float64 {
	if v.Epsilon > 0 {
		return v.Epsilon
	}
	return DefaultEpsilon
}

func (v *Validator) threshold() float64 {
	if v.SwapThreshold > 0 {
		return v.SwapThreshold
	}
	return DefaultSwapThreshold
}

// ValidateBalances walks adjacent pairs and records every row whose balance
// does not follow from the previous balance plus credit minus debit.
func (v *Validator) ValidateBalances(txns []models.Transaction) []models.Discontinuity {
	var out []models.Discontinuity
	for i := 1; i < len(txns); i++ {
		expected := txns[i-1].Balance + txns[i].Credit - txns[i].Debit
		if math.Abs(expected-txns[i].Balance) > v.epsilon() {
			out = append(out, models.Discontinuity{
				Index:    i,
				Date:     txns[i].Date,
				Expected: round2(expected),
				Actual:   txns[i].Balance,
			})
		}
	}
	return out
}

// ValidateBalances is the package-level form with default tolerance.
func ValidateBalances(txns []models.Transaction) []models.Discontinuity {
	v := Validator{}
	return v.ValidateBalances(txns)
}

// Strong direction signals: a description containing one of these while the
// amount sits in the opposite column counts as a swap indicator.
var strongCredit = []string{
	"direct credit", "deposit", "transfer from", "transfer - from",
	"refund", "received", "salary", "payroll",
}

// Deliberately narrower than the resolver's keyword lists: generic words
// like "payment" appear in credit descriptions too ("Salary Payment") and
// must not count toward a whole-statement swap.
var strongDebit = []string{
	"direct debit", "transfer to", "withdrawal", "standing order", "card payment",
}

func containsAny(desc string, keywords []string) bool {
	lower := strings.ToLower(desc)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// countSwapIndicators counts rows whose keywords contradict their column.
func (v *Validator) countSwapIndicators(txns []models.Transaction) int {
	n := 0
	for i := range txns {
		t := &txns[i]
		if t.IsBalanceMarker() {
			continue
		}
		if t.Debit > 0 && containsAny(t.Description, strongCredit) {
			n++
		}
		if t.Credit > 0 && containsAny(t.Description, strongDebit) {
			n++
		}
	}
	return n
}

// Repair validates the sequence and, when contradictions are systematic,
// swaps every debit with its credit and recomputes all balances forward
// from the opening balance. A swap that widespread is far more likely to be
// a column extraction error than dozens of independent balance corruptions.
// Isolated discontinuities are reported but deliberately left as extracted,
// so genuine extraction errors stay visible.
func (v *Validator) Repair(txns []models.Transaction, openingBalance float64, haveOpening bool) []string {
	var messages []string

	discontinuities := v.ValidateBalances(txns)
	for _, d := range discontinuities {
		messages = append(messages, fmt.Sprintf(
			"balance mismatch at %s (row %d): expected %.2f, got %.2f",
			d.Date, d.Index, d.Expected, d.Actual))
	}

	if len(txns) == 0 {
		return messages
	}

	indicators := v.countSwapIndicators(txns)
	if float64(indicators) > v.threshold()*float64(len(txns)) {
		for i := range txns {
			txns[i].Debit, txns[i].Credit = txns[i].Credit, txns[i].Debit
		}

		if !haveOpening && txns[0].IsBalanceMarker() {
			openingBalance = txns[0].Balance
			haveOpening = true
		}
		if !haveOpening {
			// No stated opening balance anywhere; anchor the recomputation
			// so the first row keeps its extracted balance.
			openingBalance = round2(txns[0].Balance - txns[0].Credit + txns[0].Debit)
		}
		recomputeBalances(txns, openingBalance)
		messages = append(messages, fmt.Sprintf(
			"debit/credit columns swapped for all %d transactions (%d keyword contradictions); balances recomputed",
			len(txns), indicators))
	}

	return messages
}

// recomputeBalances overwrites extracted balances with the running formula
// from the opening balance forward. Balance-marker rows keep their stated
// balance and reseed the running value.
func recomputeBalances(txns []models.Transaction, openingBalance float64) {
	running := openingBalance
	for i := range txns {
		if txns[i].IsBalanceMarker() {
			if txns[i].Balance != 0 {
				running = txns[i].Balance
			} else {
				txns[i].Balance = running
			}
			continue
		}
		running = round2(running + txns[i].Credit - txns[i].Debit)
		txns[i].Balance = running
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
