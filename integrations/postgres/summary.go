package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Summary aggregates stored transactions over a date range. Income totals
// are positive, expense totals negative, matching the stored sign
// convention.
type Summary struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Net          decimal.Decimal `json:"net"`
	Count        int64           `json:"count"`
	IncomeCount  int64           `json:"income_count"`
	ExpenseCount int64           `json:"expense_count"`
}

// Summarize computes income/expense totals and counts for transactions in
// [from, to].
func (db *DB) Summarize(ctx context.Context, from, to time.Time) (*Summary, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE direction = 'income'), 0),
			COALESCE(SUM(amount) FILTER (WHERE direction = 'expense'), 0),
			COUNT(*),
			COUNT(*) FILTER (WHERE direction = 'income'),
			COUNT(*) FILTER (WHERE direction = 'expense')
		FROM transactions
		WHERE occurred_at >= $1 AND occurred_at <= $2
	`, from, to)

	var s Summary
	if err := row.Scan(&s.TotalIncome, &s.TotalExpense, &s.Count, &s.IncomeCount, &s.ExpenseCount); err != nil {
		return nil, fmt.Errorf("failed to compute summary: %w", err)
	}
	s.Net = s.TotalIncome.Add(s.TotalExpense)
	return &s, nil
}
