package parser

import (
	"testing"

	"github.com/tuteke2023/bankparse/internal/models"
)

func resolveLine(t *testing.T, line string, cols ColumnMap, prev float64, havePrev bool) (models.Transaction, bool) {
	t.Helper()
	rows := Segment(line)
	if len(rows) != 1 {
		t.Fatalf("Segment(%q) produced %d rows", line, len(rows))
	}
	r := Resolver{}
	return r.Resolve(rows[0], cols, prev, havePrev)
}

func TestResolveFirstRowCreditFromKeywords(t *testing.T) {
	// No header, no prior balance: a single trailing amount is the balance,
	// and "Direct Credit" is the only evidence for the movement direction.
	txn, ok := resolveLine(t, "04-Apr-25 | Direct Credit 400937 DB RESULTS |  | 1,750.00", nil, 0, false)
	if !ok {
		t.Fatal("row was dropped")
	}
	if txn.Date != "04/04/2025" {
		t.Errorf("date = %q, want 04/04/2025", txn.Date)
	}
	if txn.Credit != 1750.00 || txn.Debit != 0 {
		t.Errorf("credit/debit = %.2f/%.2f, want 1750.00/0", txn.Credit, txn.Debit)
	}
	if txn.Balance != 1750.00 {
		t.Errorf("balance = %.2f, want 1750.00", txn.Balance)
	}
}

func TestResolveBalanceDeltaBeatsKeywords(t *testing.T) {
	// "Transfer to" suggests debit and the delta confirms it; the digits in
	// "xx5330" must not be read as an amount.
	txn, ok := resolveLine(t, "05-Apr-25  Transfer to xx5330 Net Setup  850.00  900.00", nil, 1750.00, true)
	if !ok {
		t.Fatal("row was dropped")
	}
	if txn.Description != "Transfer to xx5330 Net Setup" {
		t.Errorf("description = %q", txn.Description)
	}
	if txn.Debit != 850.00 || txn.Credit != 0 {
		t.Errorf("debit/credit = %.2f/%.2f, want 850.00/0", txn.Debit, txn.Credit)
	}
	if txn.Balance != 900.00 {
		t.Errorf("balance = %.2f, want 900.00", txn.Balance)
	}
}

func TestResolveDeltaOverridesMisplacedColumn(t *testing.T) {
	// The amount sits in the debit column but the balance went up by exactly
	// that amount: arithmetic wins.
	cols := ColumnMap{FieldDate: 0, FieldDescription: 1, FieldDebit: 2, FieldCredit: 3, FieldBalance: 4}
	txn, ok := resolveLine(t, "| 17/01/2024 | Mystery Payment In | 2,500.00 |  | 3,455.00 |", cols, 955.00, true)
	if !ok {
		t.Fatal("row was dropped")
	}
	if txn.Credit != 2500.00 || txn.Debit != 0 {
		t.Errorf("credit/debit = %.2f/%.2f, want 2500.00/0", txn.Credit, txn.Debit)
	}
}

func TestResolveMappedColumns(t *testing.T) {
	cols := ColumnMap{FieldDate: 0, FieldDescription: 1, FieldDebit: 2, FieldCredit: 3, FieldBalance: 4}
	txn, ok := resolveLine(t, "| 16/01/2024 | Tesco Stores {4512} | 45.00 |  | 955.00 |", cols, 1000.00, true)
	if !ok {
		t.Fatal("row was dropped")
	}
	if txn.Description != "Tesco Stores" {
		t.Errorf("description = %q, want Tesco Stores", txn.Description)
	}
	if txn.Reference != "4512" {
		t.Errorf("reference = %q, want 4512", txn.Reference)
	}
	if txn.Debit != 45.00 || txn.Credit != 0 || txn.Balance != 955.00 {
		t.Errorf("amounts = %.2f/%.2f/%.2f", txn.Debit, txn.Credit, txn.Balance)
	}
}

func TestResolveKeywordFallbackWithoutDelta(t *testing.T) {
	cols := ColumnMap{FieldDate: 0, FieldDescription: 1, FieldDebit: 2, FieldCredit: 3}
	txn, ok := resolveLine(t, "| 16/01/2024 | Refund from store | 45.00 |  |", cols, 0, false)
	if !ok {
		t.Fatal("row was dropped")
	}
	if txn.Credit != 45.00 || txn.Debit != 0 {
		t.Errorf("credit/debit = %.2f/%.2f, want 45.00/0", txn.Credit, txn.Debit)
	}
}

func TestResolveBalanceMarkerZeroesMovement(t *testing.T) {
	cols := ColumnMap{FieldDate: 0, FieldDescription: 1, FieldDebit: 2, FieldCredit: 3, FieldBalance: 4}
	txn, ok := resolveLine(t, "| 15/01/2024 | Opening Balance |  |  | 1,000.00 |", cols, 0, false)
	if !ok {
		t.Fatal("marker row was dropped")
	}
	if txn.Debit != 0 || txn.Credit != 0 {
		t.Errorf("marker row has movement: %.2f/%.2f", txn.Debit, txn.Credit)
	}
	if txn.Balance != 1000.00 {
		t.Errorf("balance = %.2f, want 1000.00", txn.Balance)
	}
}

func TestResolveWhitespaceMarkerWithoutAmountDropped(t *testing.T) {
	_, ok := resolveLine(t, "01/01/2024 Opening balance", nil, 0, false)
	if ok {
		t.Error("marker row without amounts should be dropped")
	}
}

func TestResolveBalanceOnlyUsesDelta(t *testing.T) {
	txn, ok := resolveLine(t, "18/01/2024  Coffee Corner  905.00", nil, 910.00, true)
	if !ok {
		t.Fatal("row was dropped")
	}
	if txn.Debit != 5.00 || txn.Credit != 0 {
		t.Errorf("debit/credit = %.2f/%.2f, want 5.00/0", txn.Debit, txn.Credit)
	}
}

func TestResolveThreeAmountsWhitespace(t *testing.T) {
	// debit, credit, balance columns flattened to whitespace
	txn, ok := resolveLine(t, "19/01/2024  Mixed Row  20.00  0.00  885.00", nil, 905.00, true)
	if !ok {
		t.Fatal("row was dropped")
	}
	if txn.Debit != 20.00 || txn.Credit != 0 {
		t.Errorf("debit/credit = %.2f/%.2f, want 20.00/0", txn.Debit, txn.Credit)
	}
	if txn.Balance != 885.00 {
		t.Errorf("balance = %.2f, want 885.00", txn.Balance)
	}
}

func TestEnforceExclusivityTieBreak(t *testing.T) {
	r := Resolver{}

	credit := models.Transaction{Description: "Transfer from savings", Debit: 100, Credit: 100}
	r.enforceExclusivity(&credit)
	if credit.Debit != 0 || credit.Credit != 100 {
		t.Errorf("credit tie-break: %.2f/%.2f", credit.Debit, credit.Credit)
	}

	debit := models.Transaction{Description: "Card purchase", Debit: 100, Credit: 100}
	r.enforceExclusivity(&debit)
	if debit.Debit != 100 || debit.Credit != 0 {
		t.Errorf("debit tie-break: %.2f/%.2f", debit.Debit, debit.Credit)
	}
}

func TestResolveWholeNumberAmountsWhitespace(t *testing.T) {
	// Statements that print whole-pound amounts without decimals put digit
	// runs in the movement and balance positions; they are money, not
	// reference codes.
	txn, ok := resolveLine(t, "16/01/2024  Deposit from employer  1000  2000", nil, 1000.00, true)
	if !ok {
		t.Fatal("row was dropped")
	}
	if txn.Description != "Deposit from employer" {
		t.Errorf("description = %q, want Deposit from employer", txn.Description)
	}
	if txn.Credit != 1000.00 || txn.Debit != 0 {
		t.Errorf("credit/debit = %.2f/%.2f, want 1000.00/0", txn.Credit, txn.Debit)
	}
	if txn.Balance != 2000.00 {
		t.Errorf("balance = %.2f, want 2000.00", txn.Balance)
	}
}

func TestResolveWhitespaceReferenceBeforeAmounts(t *testing.T) {
	// A reference glued to the description must still be skipped when real
	// amounts follow it in the trailing columns.
	txn, ok := resolveLine(t, "20/01/2024  Bill Payment 400937  60.00  825.00", nil, 885.00, true)
	if !ok {
		t.Fatal("row was dropped")
	}
	if txn.Debit != 60.00 || txn.Credit != 0 {
		t.Errorf("debit/credit = %.2f/%.2f, want 60.00/0", txn.Debit, txn.Credit)
	}
	if txn.Balance != 825.00 {
		t.Errorf("balance = %.2f, want 825.00", txn.Balance)
	}
}

func TestResolveZeroBalanceStillArbitrates(t *testing.T) {
	// A running balance of exactly 0.00 is a real balance. The delta says
	// the account was emptied, which outranks the credit keyword.
	cols := ColumnMap{FieldDate: 0, FieldDescription: 1, FieldDebit: 2, FieldCredit: 3, FieldBalance: 4}
	txn, ok := resolveLine(t, "| 18/01/2024 | Refund adjustment |  | 45.00 | 0.00 |", cols, 45.00, true)
	if !ok {
		t.Fatal("row was dropped")
	}
	if txn.Debit != 45.00 || txn.Credit != 0 {
		t.Errorf("debit/credit = %.2f/%.2f, want 45.00/0", txn.Debit, txn.Credit)
	}
	if txn.Balance != 0 {
		t.Errorf("balance = %.2f, want 0.00", txn.Balance)
	}
}

func TestResolveMappedReferenceCell(t *testing.T) {
	cols := ColumnMap{FieldDate: 0, FieldDescription: 1, FieldDebit: 2, FieldCredit: 3, FieldBalance: 4}

	t.Run("first row keeps reference", func(t *testing.T) {
		// No prior balance, so nothing can prove 400937 is money; it stays
		// a reference instead of becoming a six-figure debit.
		txn, ok := resolveLine(t, "| 15/01/2024 | Bill Payment | 400937 |  | 500.00 |", cols, 0, false)
		if !ok {
			t.Fatal("row was dropped")
		}
		if txn.Reference != "400937" {
			t.Errorf("reference = %q, want 400937", txn.Reference)
		}
		if txn.Debit != 0 || txn.Credit != 0 {
			t.Errorf("debit/credit = %.2f/%.2f, want 0/0", txn.Debit, txn.Credit)
		}
		if txn.Balance != 500.00 {
			t.Errorf("balance = %.2f, want 500.00", txn.Balance)
		}
	})

	t.Run("delta proves amount", func(t *testing.T) {
		txn, ok := resolveLine(t, "| 16/01/2024 | Transfer to savings | 1000 |  | 0.00 |", cols, 1000.00, true)
		if !ok {
			t.Fatal("row was dropped")
		}
		if txn.Debit != 1000.00 || txn.Credit != 0 {
			t.Errorf("debit/credit = %.2f/%.2f, want 1000.00/0", txn.Debit, txn.Credit)
		}
		if txn.Reference != "" {
			t.Errorf("reference = %q, want empty", txn.Reference)
		}
	})
}

func TestResolvePositionalReferenceColumn(t *testing.T) {
	txn, ok := resolveLine(t, "| 20/01/2024 | Bill Payment | 400937 | 60.00 | 825.00 |", nil, 885.00, true)
	if !ok {
		t.Fatal("row was dropped")
	}
	if txn.Reference != "400937" {
		t.Errorf("reference = %q, want 400937", txn.Reference)
	}
	if txn.Debit != 60.00 || txn.Credit != 0 {
		t.Errorf("debit/credit = %.2f/%.2f, want 60.00/0", txn.Debit, txn.Credit)
	}
	if txn.Balance != 825.00 {
		t.Errorf("balance = %.2f, want 825.00", txn.Balance)
	}
}
