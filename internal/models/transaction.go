package models

import "strings"

// Transaction represents a single ledger entry extracted from a statement.
// Debit and credit are stored as non-negative magnitudes; the field an
// amount occupies carries its sign. At most one of the two is non-zero.
type Transaction struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Reference   string  `json:"reference,omitempty"`
	Category    string  `json:"category,omitempty"`
	Debit       float64 `json:"debit"`
	Credit      float64 `json:"credit"`
	Balance     float64 `json:"balance"`
}

// IsBalanceMarker reports whether the transaction is an opening/previous/
// closing balance row rather than real money movement.
func (t *Transaction) IsBalanceMarker() bool {
	return IsBalanceMarkerText(t.Description)
}

// Statement is the aggregate result of one extraction.
type Statement struct {
	AccountNumber   string        `json:"account_number"`
	StatementPeriod string        `json:"statement_period"`
	Transactions    []Transaction `json:"transactions"`
	TotalDebits     float64       `json:"total_debits"`
	TotalCredits    float64       `json:"total_credits"`
	OpeningBalance  float64       `json:"opening_balance"`
	ClosingBalance  float64       `json:"closing_balance"`

	// Warnings collects data-quality notes (balance discontinuities,
	// applied repairs). Never treated as an error by the engine.
	Warnings []string `json:"warnings,omitempty"`
}

// Discontinuity records a running-balance mismatch at one transaction.
type Discontinuity struct {
	Index    int     `json:"index"`
	Date     string  `json:"date"`
	Expected float64 `json:"expected"`
	Actual   float64 `json:"actual"`
}

// balanceMarkers are descriptions that denote a carried balance row.
var balanceMarkers = []string{
	"previous balance",
	"opening balance",
	"closing balance",
	"beginning balance",
	"balance brought forward",
	"brought forward",
}

// IsBalanceMarkerText reports whether a description names an opening,
// previous, or closing balance row.
func IsBalanceMarkerText(desc string) bool {
	lower := strings.ToLower(desc)
	for _, m := range balanceMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
