package core

import (
	"fmt"
	"strings"
)

// CategoryAmount is an amount aggregated by category name.
type CategoryAmount struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Summary holds the aggregates the dashboard and report screens consume.
type Summary struct {
	Income     float64          `json:"income"`
	Expenses   float64          `json:"expenses"`
	Balance    float64          `json:"balance"`
	ByCategory []CategoryAmount `json:"byCategory"` // expenses only, first-seen order
}

// Summarize aggregates income, expense and per-category expense totals.
func Summarize(txs []Transaction) Summary {
	var s Summary
	byCat := map[string]int{}
	for _, t := range txs {
		switch t.Type {
		case Income:
			s.Income += t.Amount
		case Expense:
			s.Expenses += t.Amount
			idx, seen := byCat[t.Category]
			if !seen {
				byCat[t.Category] = len(s.ByCategory)
				s.ByCategory = append(s.ByCategory, CategoryAmount{Name: t.Category, Amount: t.Amount})
				continue
			}
			s.ByCategory[idx].Amount += t.Amount
		}
	}
	s.Balance = s.Income - s.Expenses
	return s
}

// FilterMonth keeps transactions whose date falls in the given year and month.
func FilterMonth(txs []Transaction, year, month int) []Transaction {
	prefix := fmt.Sprintf("%04d-%02d", year, month)
	var out []Transaction
	for _, t := range txs {
		if strings.HasPrefix(t.Date, prefix) {
			out = append(out, t)
		}
	}
	return out
}
