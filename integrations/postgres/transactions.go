package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/recibolabs/recibo/parser"
)

// StoredTransaction is a transaction row read back from the store.
type StoredTransaction struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id,omitempty"`
	OccurredAt    *time.Time      `json:"occurred_at,omitempty"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Direction     string          `json:"direction"`
	Category      string          `json:"category"`
	Merchant      string          `json:"merchant,omitempty"`
	RawText       string          `json:"raw_text"`
	CreatedAt     time.Time       `json:"created_at"`
}

// UpsertTransaction inserts a parsed record, or updates the existing row
// when the receipt carried a transaction identifier that was already stored.
// Records without an identifier are always appended.
func (db *DB) UpsertTransaction(ctx context.Context, tx *parser.ParsedTransaction) error {
	var txID string
	if tx.TransactionID != nil {
		txID = *tx.TransactionID
	}
	if txID != "" {
		sql := `
			INSERT INTO transactions (
				transaction_id, occurred_at, description, amount, direction, category, merchant, raw_text
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (transaction_id) WHERE transaction_id != '' DO UPDATE SET
				occurred_at = EXCLUDED.occurred_at,
				description = EXCLUDED.description,
				amount      = EXCLUDED.amount,
				direction   = EXCLUDED.direction,
				category    = EXCLUDED.category,
				merchant    = EXCLUDED.merchant,
				raw_text    = EXCLUDED.raw_text,
				updated_at  = NOW()
		`
		if _, err := db.Pool.Exec(ctx, sql,
			txID, tx.OccurredAt, tx.Description, tx.Amount, string(tx.Direction), tx.Category, tx.Merchant, tx.RawText,
		); err != nil {
			return fmt.Errorf("failed to upsert transaction %s: %w", txID, err)
		}
		return nil
	}

	sql := `
		INSERT INTO transactions (
			transaction_id, occurred_at, description, amount, direction, category, merchant, raw_text
		) VALUES ('', $1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := db.Pool.Exec(ctx, sql,
		tx.OccurredAt, tx.Description, tx.Amount, string(tx.Direction), tx.Category, tx.Merchant, tx.RawText,
	); err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// TransactionsByDateRange returns stored transactions whose occurred_at
// falls in [from, to], newest first.
func (db *DB) TransactionsByDateRange(ctx context.Context, from, to time.Time) ([]StoredTransaction, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, transaction_id, occurred_at, description, amount, direction, category,
		       COALESCE(merchant, ''), raw_text, created_at
		FROM transactions
		WHERE occurred_at >= $1 AND occurred_at <= $2
		ORDER BY occurred_at DESC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var result []StoredTransaction
	for rows.Next() {
		var t StoredTransaction
		if err := rows.Scan(
			&t.ID, &t.TransactionID, &t.OccurredAt, &t.Description, &t.Amount,
			&t.Direction, &t.Category, &t.Merchant, &t.RawText, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// AllTransactions returns every stored transaction, newest first.
func (db *DB) AllTransactions(ctx context.Context) ([]StoredTransaction, error) {
	return db.TransactionsByDateRange(ctx,
		time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Now().AddDate(100, 0, 0))
}
