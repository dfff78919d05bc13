// Package parser turns raw text extracted from a MercadoPago payment
// receipt into a validated transaction record. The pipeline is
// normalize → independent field extractors → classifier → assembler;
// every step is pure, so one Parser may serve any number of concurrent
// parse calls.
package parser

// Parser assembles extractor outputs into a ParsedTransaction. It holds only
// immutable rule tables and keeps no state across calls.
type Parser struct {
	categories []CategoryRule
}

// New returns a Parser with the embedded default category table.
func New() *Parser {
	return &Parser{categories: DefaultCategoryRules()}
}

// NewWithCategories returns a Parser using an externally supplied category
// rule table, falling back to the defaults when the table is empty.
func NewWithCategories(rules []CategoryRule) *Parser {
	if len(rules) == 0 {
		rules = DefaultCategoryRules()
	}
	return &Parser{categories: rules}
}

// Parse produces one transaction record from raw receipt text.
//
// Only two conditions fail the whole parse: empty normalized input and a
// missing amount. Every other absent field degrades to its documented
// default. Both the record and any failure retain the verbatim raw text;
// normalization is an extraction aid, never a stored transformation.
func (p *Parser) Parse(raw string) (*ParsedTransaction, error) {
	text := Normalize(raw)
	if text == "" {
		return nil, &ParseError{Err: ErrEmptyInput, RawText: raw}
	}

	amount, cue := ExtractAmount(text)
	if !amount.Found {
		return nil, &ParseError{Err: ErrAmountNotFound, RawText: raw}
	}

	id := ExtractTransactionID(text)
	date := ExtractDate(text)
	desc := ExtractDescription(text, amount)
	merchant := ExtractMerchant(text)

	direction := ResolveDirection(cue)

	tx := &ParsedTransaction{
		Description:      DefaultDescription,
		Amount:           SignAmount(amount.Value, direction),
		Direction:        direction,
		RawText:          raw,
		AmountConfidence: amount.Confidence,
	}
	if id.Found {
		v := id.Value
		tx.TransactionID = &v
	}
	if date.Found {
		v := date.Value
		tx.OccurredAt = &v
	}
	if desc.Found {
		tx.Description = desc.Value
	}
	var merchantText string
	if merchant.Found {
		v := merchant.Value
		tx.Merchant = &v
		merchantText = v
	}
	tx.Category = Categorize(p.categories, tx.Description, merchantText)

	return tx, nil
}
