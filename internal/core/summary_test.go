package core

import "testing"

func TestSummarize(t *testing.T) {
	txs := []Transaction{
		{Type: Income, Amount: 3000, Category: "Salário", Date: "2024-03-05"},
		{Type: Expense, Amount: 50.5, Category: "Alimentação", Date: "2024-03-01"},
		{Type: Expense, Amount: 20, Category: "Transporte", Date: "2024-03-02"},
		{Type: Expense, Amount: 9.5, Category: "Alimentação", Date: "2024-03-03"},
	}

	s := Summarize(txs)
	if s.Income != 3000 {
		t.Errorf("income = %v, want 3000", s.Income)
	}
	if s.Expenses != 80 {
		t.Errorf("expenses = %v, want 80", s.Expenses)
	}
	if s.Balance != 2920 {
		t.Errorf("balance = %v, want 2920", s.Balance)
	}
	if len(s.ByCategory) != 2 {
		t.Fatalf("expected 2 expense categories, got %v", s.ByCategory)
	}
	if s.ByCategory[0].Name != "Alimentação" || s.ByCategory[0].Amount != 60 {
		t.Errorf("unexpected first category: %+v", s.ByCategory[0])
	}
	if s.ByCategory[1].Name != "Transporte" || s.ByCategory[1].Amount != 20 {
		t.Errorf("unexpected second category: %+v", s.ByCategory[1])
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Income != 0 || s.Expenses != 0 || s.Balance != 0 || len(s.ByCategory) != 0 {
		t.Errorf("expected zero summary, got %+v", s)
	}
}

func TestFilterMonth(t *testing.T) {
	txs := []Transaction{
		{ID: "1", Date: "2024-03-01"},
		{ID: "2", Date: "2024-03-31"},
		{ID: "3", Date: "2024-04-01"},
		{ID: "4", Date: "2023-03-15"},
	}
	got := FilterMonth(txs, 2024, 3)
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "2" {
		t.Errorf("unexpected filter result: %+v", got)
	}
	if got := FilterMonth(txs, 2024, 12); len(got) != 0 {
		t.Errorf("expected no matches, got %+v", got)
	}
}
