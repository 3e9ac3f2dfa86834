package api

import "famfin/internal/core"

// Wire transaction type tags used by the remote API.
const (
	TypeIncome  = "INCOME"
	TypeExpense = "EXPENSE"
)

type (
	// Member is the wire shape of a household member.
	Member struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Role string `json:"role"`
	}

	// Category is the wire shape of a category.
	Category struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	// CategoryRef references a category by id on transaction bodies. The
	// server fills the name on reads.
	CategoryRef struct {
		ID   int64  `json:"id"`
		Name string `json:"name,omitempty"`
	}

	// Transaction is the wire shape of a transaction.
	Transaction struct {
		ID              int64       `json:"id"`
		Amount          float64     `json:"amount"`
		Description     string      `json:"description"`
		Date            string      `json:"date"`
		TransactionType string      `json:"transactionType"` // INCOME | EXPENSE
		MemberID        int64       `json:"memberId"`
		Category        CategoryRef `json:"category"`
	}

	// TransactionInput carries the fields of a transaction create or update.
	TransactionInput struct {
		Amount          float64
		Description     string
		Date            string
		TransactionType string
		MemberID        int64
		CategoryID      int64
	}

	// pagedResponse is the Spring-style page envelope the transactions
	// listing returns. Only the fields the client inspects are decoded.
	pagedResponse struct {
		Content       []Transaction `json:"content"`
		Last          bool          `json:"last"`
		TotalPages    int           `json:"totalPages"`
		TotalElements int           `json:"totalElements"`
		Number        int           `json:"number"`
		Size          int           `json:"size"`
	}
)

// WireType maps the UI-facing transaction type to the wire tag.
func WireType(t core.TransactionType) string {
	if t == core.Income {
		return TypeIncome
	}
	return TypeExpense
}

// CoreType maps the wire tag to the UI-facing transaction type.
func CoreType(wire string) core.TransactionType {
	if wire == TypeIncome {
		return core.Income
	}
	return core.Expense
}
