package writer

import (
	"fmt"
	"strings"

	"github.com/tuteke2023/bankparse/internal/models"
)

// Table renders a statement back into pipe-table text. Downstream review
// UIs display this form, and the output parses back through the engine
// (corrections included), so the format must stay tokenizer-friendly.
func Table(st *models.Statement) string {
	var b strings.Builder
	b.WriteString("| Date | Description | Debit | Credit | Balance |\n")
	b.WriteString("|------|-------------|-------|--------|---------|\n")

	for _, t := range st.Transactions {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			t.Date,
			t.Description,
			blankIfZero(t.Debit),
			blankIfZero(t.Credit),
			formatAmount(t.Balance),
		)
	}
	return b.String()
}
