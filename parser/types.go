package parser

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the money flow of a transaction.
type Direction string

const (
	DirectionIncome  Direction = "income"
	DirectionExpense Direction = "expense"
)

// DefaultDescription is used when no description span can be found in the
// receipt text.
const DefaultDescription = "MercadoPago Transaction"

// DefaultCategory is assigned when no category rule matches.
const DefaultCategory = "uncategorized"

// ParsedTransaction is the validated record produced by one parse call.
// Optional fields are nil when the receipt genuinely did not contain them;
// an empty value is never used to stand in for "not found".
type ParsedTransaction struct {
	TransactionID    *string         `json:"transaction_id,omitempty"`
	OccurredAt       *time.Time      `json:"occurred_at,omitempty"`
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"`
	Direction        Direction       `json:"direction"`
	Category         string          `json:"category"`
	Merchant         *string         `json:"merchant,omitempty"`
	RawText          string          `json:"raw_text"`
	AmountConfidence Confidence      `json:"amount_confidence"`
}
