package postgres

import (
	"context"
	"fmt"
)

const ddl = `
-- Parsed receipt transactions. The receipt-native transaction_id is the
-- natural key when present; records without one are plain appends.
CREATE TABLE IF NOT EXISTS transactions (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    transaction_id VARCHAR(64) NOT NULL DEFAULT '',
    occurred_at TIMESTAMPTZ,
    description TEXT NOT NULL,
    amount NUMERIC(18,2) NOT NULL,
    direction VARCHAR(10) NOT NULL,
    category VARCHAR(100) NOT NULL DEFAULT 'uncategorized',
    merchant VARCHAR(255),
    raw_text TEXT NOT NULL,
    created_at TIMESTAMPTZ DEFAULT NOW(),
    updated_at TIMESTAMPTZ DEFAULT NOW()
);

-- Dedupe key only applies to receipts that carried an identifier
CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_transaction_id
ON transactions(transaction_id) WHERE transaction_id != '';

CREATE INDEX IF NOT EXISTS idx_transactions_occurred_at ON transactions(occurred_at);
CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category);
`

// EnsureSchema creates tables and indexes if they don't exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
