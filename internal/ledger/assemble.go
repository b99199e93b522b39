package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/tuteke2023/bankparse/internal/models"
)

// Assemble aggregates a resolved transaction sequence into a statement.
// Pure aggregation: it never fails and always returns a well-formed value,
// even for an empty sequence. Totals are accumulated in decimal so they
// equal the column sums exactly instead of drifting through float addition.
func Assemble(txns []models.Transaction, accountNumber, period string) *models.Statement {
	st := &models.Statement{
		AccountNumber:   accountNumber,
		StatementPeriod: period,
		Transactions:    txns,
	}
	if st.Transactions == nil {
		st.Transactions = []models.Transaction{}
	}

	debits := decimal.Zero
	credits := decimal.Zero
	for i := range txns {
		debits = debits.Add(decimal.NewFromFloat(txns[i].Debit))
		credits = credits.Add(decimal.NewFromFloat(txns[i].Credit))
	}
	st.TotalDebits, _ = debits.Round(2).Float64()
	st.TotalCredits, _ = credits.Round(2).Float64()

	if len(txns) > 0 {
		if txns[0].IsBalanceMarker() {
			st.OpeningBalance = txns[0].Balance
		}
		st.ClosingBalance = txns[len(txns)-1].Balance
	}
	return st
}
