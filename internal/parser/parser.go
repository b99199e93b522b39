// Package parser turns noisy model-produced statement text into validated
// transactions. The pipeline is segment → classify columns → resolve each
// row → validate/repair the ledger → assemble the statement.
package parser

import (
	"fmt"
	"strings"

	"github.com/tuteke2023/bankparse/internal/amount"
	"github.com/tuteke2023/bankparse/internal/category"
	"github.com/tuteke2023/bankparse/internal/ledger"
	"github.com/tuteke2023/bankparse/internal/models"
	"github.com/tuteke2023/bankparse/internal/writer"
)

// Options tune the engine. Zero values select the defaults.
type Options struct {
	// Epsilon is the balance-arithmetic tolerance (default 0.01).
	Epsilon float64
	// SwapThreshold is the keyword-contradiction fraction that triggers a
	// global debit/credit swap (default 0.30).
	SwapThreshold float64
	// Corrections overrides category classification per deployment.
	Corrections *category.CorrectionsConfig
}

// Engine is the public surface of the reconciliation core. It is stateless
// across calls: each parse is a pure function of its input text, so one
// engine may serve any number of goroutines.
type Engine struct {
	resolver   Resolver
	validator  ledger.Validator
	classifier *category.Classifier
}

// New builds an engine. The only possible failure is an invalid corrections
// pattern.
func New(opts Options) (*Engine, error) {
	cls, err := category.New(opts.Corrections)
	if err != nil {
		return nil, err
	}
	return &Engine{
		resolver:   Resolver{Epsilon: opts.Epsilon},
		validator:  ledger.Validator{Epsilon: opts.Epsilon, SwapThreshold: opts.SwapThreshold},
		classifier: cls,
	}, nil
}

var defaultEngine = mustNew()

func mustNew() *Engine {
	e, err := New(Options{})
	if err != nil {
		panic(err)
	}
	return e
}

// ParseToStatement parses model output (table or JSON shaped) into a
// statement with the default engine.
func ParseToStatement(text string) *models.Statement {
	return defaultEngine.ParseToStatement(text)
}

// ParseToCSV parses model output and renders it as CSV with the default
// engine.
func ParseToCSV(text string) (*models.Statement, string) {
	return defaultEngine.ParseToCSV(text)
}

// ParseToStatement parses model output into a validated statement. It never
// fails: unusable input yields a well-formed empty statement, and every
// data-quality problem lands in Warnings instead of an error.
func (e *Engine) ParseToStatement(text string) *models.Statement {
	if looksLikeJSON(text) {
		if st, ok := e.parseJSON(text); ok {
			return st
		}
		// JSON recovery failed; the text may still hold a table.
	}
	return e.parseTable(text)
}

// ParseToCSV parses model output and renders the result as CSV.
func (e *Engine) ParseToCSV(text string) (*models.Statement, string) {
	st := e.ParseToStatement(text)
	return st, writer.CSV(st)
}

// ToTable renders a parsed statement back into pipe-table text for review
// round-trips.
func (e *Engine) ToTable(st *models.Statement) string {
	return writer.Table(st)
}

func (e *Engine) parseJSON(text string) (*models.Statement, bool) {
	txns, js, ok := recoverJSON(text)
	if !ok {
		return nil, false
	}

	for i := range txns {
		e.fixClassification(&txns[i])
	}

	warnings := e.validator.Repair(txns, float64(js.OpeningBalance), js.OpeningBalance != 0)
	e.classifier.Apply(txns)

	st := ledger.Assemble(txns, js.AccountNumber, js.StatementPeriod)
	if st.OpeningBalance == 0 {
		st.OpeningBalance = float64(js.OpeningBalance)
	}
	st.Warnings = warnings
	return st, true
}

// fixClassification corrects JSON-delivered rows the same way the resolver
// corrects table rows: strong keywords move a lone misplaced amount, and
// mutual exclusivity always holds afterwards.
func (e *Engine) fixClassification(t *models.Transaction) {
	if t.IsBalanceMarker() {
		t.Debit = 0
		t.Credit = 0
		return
	}
	if t.Debit > 0 && t.Credit == 0 &&
		matchesAny(t.Description, creditKeywords) && !matchesAny(t.Description, debitKeywords) {
		t.Credit = t.Debit
		t.Debit = 0
	} else if t.Credit > 0 && t.Debit == 0 &&
		matchesAny(t.Description, debitKeywords) && !matchesAny(t.Description, creditKeywords) {
		t.Debit = t.Credit
		t.Credit = 0
	}
	e.resolver.enforceExclusivity(t)
}

func (e *Engine) parseTable(text string) *models.Statement {
	rows := Segment(text)

	var (
		txns        []models.Transaction
		warnings    []string
		cols        ColumnMap
		prev        float64
		havePrev    bool
		opening     float64
		haveOpening bool
	)

	for _, row := range rows {
		switch row.Kind {
		case LineHeader:
			// A fresh header starts a new table; its mapping replaces the
			// active one and whitespace tables drop back to positional.
			cols = AnalyzeHeader(row.Cells)
		case LineSummary:
			// Opening-balance summary lines seed the running balance even
			// though they never become transactions.
			if bal, ok := summaryOpeningBalance(row.Raw); ok && !havePrev {
				prev = bal
				havePrev = true
				opening = bal
				haveOpening = true
			}
		case LineData:
			txn, ok := e.resolver.Resolve(row, cols, prev, havePrev)
			if !ok {
				continue
			}
			if txn.Debit == 0 && txn.Credit == 0 && txn.Balance == 0 && !txn.IsBalanceMarker() {
				warnings = append(warnings, fmt.Sprintf("no amounts extracted for %q", strings.TrimSpace(row.Raw)))
			}
			if txn.Balance != 0 {
				prev = txn.Balance
				havePrev = true
			}
			txns = append(txns, txn)
		}
	}

	warnings = append(e.validator.Repair(txns, opening, haveOpening), warnings...)
	e.classifier.Apply(txns)

	account, period := extractMetadata(text)
	st := ledger.Assemble(txns, account, period)
	if st.OpeningBalance == 0 && haveOpening {
		st.OpeningBalance = opening
	}
	st.Warnings = warnings
	return st
}

// summaryOpeningBalance pulls the balance amount off an opening-balance
// summary line ("Opening balance 1,000.00").
func summaryOpeningBalance(line string) (float64, bool) {
	lower := strings.ToLower(line)
	if !strings.Contains(lower, "opening balance") &&
		!strings.Contains(lower, "previous balance") &&
		!strings.Contains(lower, "brought forward") {
		return 0, false
	}
	toks := amount.Tokenize(line)
	if len(toks) == 0 {
		return 0, false
	}
	return toks[len(toks)-1].Value, true
}
