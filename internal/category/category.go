// Package category assigns free-text category labels to transactions from
// description keywords, with an optional injected corrections config for
// deployment-specific overrides.
package category

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tuteke2023/bankparse/internal/models"
)

// Other is the label for descriptions matching nothing.
const Other = "Other"

// keywordRule ties a category to its trigger substrings.
type keywordRule struct {
	category string
	keywords []string
}

// Default keyword table. Order matters: the first matching rule wins, so
// more specific rules sit above catch-alls like Shopping.
var defaultRules = []keywordRule{
	{"Income", []string{"salary", "payroll", "wage", "direct deposit", "income"}},
	{"Groceries", []string{"grocery", "supermarket", "market", "walmart", "kroger", "safeway", "coles", "woolworths", "aldi"}},
	{"Transportation", []string{"gas station", "fuel", "petrol", "uber", "lyft", "taxi", "parking", "shell", "chevron", "exxon"}},
	{"Dining", []string{"restaurant", "cafe", "coffee", "dining", "pizza", "mcdonald", "starbucks", "burger"}},
	{"Healthcare", []string{"pharmacy", "doctor", "medical", "hospital", "cvs", "walgreens"}},
	{"Utilities", []string{"utility", "electric", "water bill", "gas bill", "internet", "phone", "bill payment", "power"}},
	{"Housing", []string{"rent", "mortgage", "lease", "housing"}},
	{"Entertainment", []string{"movie", "netflix", "spotify", "game", "subscription"}},
	{"Banking", []string{"service fee", "bank fee", "overdraft", "interest", "atm fee", "fees"}},
	{"Cash", []string{"atm withdrawal", "cash withdrawal", "atm"}},
	{"Bills", []string{"mastercard", "visa", "amex", "credit card"}},
	{"Transfer", []string{"transfer", "zelle", "venmo", "savings"}},
	{"Shopping", []string{"amazon", "online", "ebay", "store", "purchase", "shop", "electronics"}},
}

// Correction overrides the keyword table for descriptions matching a regex.
// Corrections come from configuration, not code: they capture per-customer
// fixes learned from reviewed statements.
type Correction struct {
	Pattern  string `yaml:"pattern" json:"pattern"`
	Category string `yaml:"category" json:"category"`

	compiled *regexp.Regexp
}

// CorrectionsConfig is the on-disk shape of the corrections file.
type CorrectionsConfig struct {
	Corrections []Correction `yaml:"corrections" json:"corrections"`
}

// Classifier labels transactions. The zero value works with the default
// keyword table and no corrections.
type Classifier struct {
	corrections []Correction
}

// New builds a classifier with the given corrections applied before the
// keyword table. Invalid patterns are rejected here, at construction, so
// classification itself never fails.
func New(cfg *CorrectionsConfig) (*Classifier, error) {
	c := &Classifier{}
	if cfg == nil {
		return c, nil
	}
	for _, corr := range cfg.Corrections {
		re, err := regexp.Compile("(?i)" + corr.Pattern)
		if err != nil {
			return nil, fmt.Errorf("corrections: bad pattern %q: %w", corr.Pattern, err)
		}
		corr.compiled = re
		c.corrections = append(c.corrections, corr)
	}
	return c, nil
}

// LoadCorrections reads a YAML corrections file.
func LoadCorrections(path string) (*CorrectionsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("corrections: read %s: %w", path, err)
	}
	var cfg CorrectionsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("corrections: parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Classify returns the category for one transaction. An explicit category
// on the transaction is kept as-is.
func (c *Classifier) Classify(t *models.Transaction) string {
	if t.Category != "" {
		return t.Category
	}

	desc := strings.ToLower(t.Description)

	for _, corr := range c.corrections {
		if corr.compiled != nil && corr.compiled.MatchString(t.Description) {
			return corr.Category
		}
	}

	// Credits that look like pay are income regardless of the table order.
	if t.Credit > 0 && t.Debit == 0 {
		for _, kw := range []string{"salary", "payroll", "wage", "deposit"} {
			if strings.Contains(desc, kw) {
				return "Income"
			}
		}
	}

	for _, rule := range defaultRules {
		for _, kw := range rule.keywords {
			if strings.Contains(desc, kw) {
				return rule.category
			}
		}
	}
	return Other
}

// Apply labels every transaction in place, skipping balance-marker rows.
func (c *Classifier) Apply(txns []models.Transaction) {
	for i := range txns {
		if txns[i].IsBalanceMarker() {
			continue
		}
		txns[i].Category = c.Classify(&txns[i])
	}
}
