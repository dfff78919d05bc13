package parser

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Income cues are checked before expense cues: phrases like "recibiste un
// pago" contain words from both lists and the income wording wins.
var incomeCues = []string{"recibiste", "cobraste", "ingreso", "depósito", "deposito", "te enviaron"}

var expenseCues = []string{"pagaste", "enviaste", "compra", "pago", "transferencia"}

// keywordCue scans the receipt text for a directional keyword.
func keywordCue(text string) Direction {
	lower := strings.ToLower(text)
	for _, kw := range incomeCues {
		if strings.Contains(lower, kw) {
			return DirectionIncome
		}
	}
	for _, kw := range expenseCues {
		if strings.Contains(lower, kw) {
			return DirectionExpense
		}
	}
	return ""
}

// ResolveDirection applies the direction precedence: explicit keyword cue,
// then the literal sign on the raw token, then expense — outgoing payments
// are the dominant case for this receipt family.
func ResolveDirection(cue DirectionCue) Direction {
	if cue.Keyword != "" {
		return cue.Keyword
	}
	if cue.Signed {
		if cue.Negative {
			return DirectionExpense
		}
		return DirectionIncome
	}
	return DirectionExpense
}

// SignAmount forces the stored amount to agree with the resolved direction,
// whatever the raw token's literal sign was: expense is negative, income
// positive.
func SignAmount(amount decimal.Decimal, dir Direction) decimal.Decimal {
	abs := amount.Abs()
	if dir == DirectionExpense {
		return abs.Neg()
	}
	return abs
}

// CategoryRule maps a keyword to a category label. Rules are data, not
// logic: the table ships as embedded defaults and can be replaced wholesale
// from configuration without touching the matching algorithm.
type CategoryRule struct {
	Keyword  string `mapstructure:"keyword" json:"keyword"`
	Category string `mapstructure:"category" json:"category"`
}

// DefaultCategoryRules mirrors the embedded configuration shipped with the
// CLI.
func DefaultCategoryRules() []CategoryRule {
	return []CategoryRule{
		{Keyword: "supermercado", Category: "groceries"},
		{Keyword: "almacen", Category: "groceries"},
		{Keyword: "verduleria", Category: "groceries"},
		{Keyword: "restaurante", Category: "dining"},
		{Keyword: "cafe", Category: "dining"},
		{Keyword: "delivery", Category: "dining"},
		{Keyword: "farmacia", Category: "health"},
		{Keyword: "nafta", Category: "transport"},
		{Keyword: "combustible", Category: "transport"},
		{Keyword: "taxi", Category: "transport"},
		{Keyword: "colectivo", Category: "transport"},
		{Keyword: "alquiler", Category: "housing"},
		{Keyword: "expensas", Category: "housing"},
		{Keyword: "luz", Category: "utilities"},
		{Keyword: "internet", Category: "utilities"},
		{Keyword: "telefono", Category: "utilities"},
		{Keyword: "sueldo", Category: "salary"},
		{Keyword: "honorarios", Category: "salary"},
	}
}

// Categorize scans the rules in order against the concatenated description
// and merchant text, case-insensitively; first match wins, no match yields
// the default category.
func Categorize(rules []CategoryRule, description, merchant string) string {
	haystack := strings.ToLower(description + " " + merchant)
	for _, r := range rules {
		if r.Keyword == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(r.Keyword)) {
			return r.Category
		}
	}
	return DefaultCategory
}
