package core

import (
	"errors"
	"math"
	"sort"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	// Member is a household participant transactions are assigned to.
	Member struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Role      string `json:"role"`
		CreatedAt string `json:"createdAt,omitempty"`
	}

	// FuelData extends a refuelling transaction with consumption data.
	// Consumption is kilometers per liter, rounded to 2 decimals.
	FuelData struct {
		Liters      float64 `json:"liters"`
		Kilometers  float64 `json:"kilometers"`
		Consumption float64 `json:"consumption"`
	}

	// Transaction is a single income or expense movement.
	Transaction struct {
		ID          string          `json:"id"`
		Type        TransactionType `json:"type"`
		Amount      float64         `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Date        string          `json:"date"` // calendar date (2006-01-02), no time of day
		MemberID    string          `json:"memberId"`
		FuelData    *FuelData       `json:"fuelData,omitempty"`
	}

	// Category is a named income/expense bucket. The ID is assigned by the
	// remote API and is meaningless in local mode.
	Category struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	// MemberUpdate carries the fields of a partial member update. Nil fields
	// are left unchanged.
	MemberUpdate struct {
		Name *string
		Role *string
	}

	// TransactionUpdate carries the fields of a partial transaction update.
	TransactionUpdate struct {
		Type        *TransactionType
		Amount      *float64
		Category    *string
		Description *string
		Date        *string
		MemberID    *string
		FuelData    *FuelData
	}
)

var (
	ErrEmptyName        = errors.New("empty member name")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyCategory    = errors.New("empty category")
	ErrMissingMember    = errors.New("missing member id")
	ErrInvalidFuelData  = errors.New("invalid fuel data")
	ErrWrongConsumption = errors.New("consumption does not match kilometers/liters")
)

// Default category names shown by the forms and used to seed local mode.
var (
	ExpenseCategories = []string{
		"Abastecimento",
		"Alimentação",
		"Moradia",
		"Transporte",
		"Saúde",
		"Educação",
		"Lazer",
		"Vestuário",
		"Contas",
		"Outros",
	}

	IncomeCategories = []string{
		"Salário",
		"Freelance",
		"Investimentos",
		"Outros",
	}
)

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

// Consumption computes kilometers per liter rounded to 2 decimals.
func Consumption(liters, kilometers float64) float64 {
	return math.Round(kilometers/liters*100) / 100
}

// NewFuelData derives the consumption from liters and kilometers.
func NewFuelData(liters, kilometers float64) (FuelData, error) {
	if liters <= 0 || kilometers <= 0 {
		return FuelData{}, ErrInvalidFuelData
	}
	return FuelData{
		Liters:      liters,
		Kilometers:  kilometers,
		Consumption: Consumption(liters, kilometers),
	}, nil
}

func (f FuelData) Validate() error {
	if f.Liters <= 0 || f.Kilometers <= 0 {
		return ErrInvalidFuelData
	}
	if f.Consumption != Consumption(f.Liters, f.Kilometers) {
		return ErrWrongConsumption
	}
	return nil
}

func (m Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if _, err := time.Parse("2006-01-02", t.Date); err != nil {
		return ErrInvalidDate
	}
	if strings.TrimSpace(t.MemberID) == "" {
		return ErrMissingMember
	}
	if t.FuelData != nil {
		return t.FuelData.Validate()
	}
	return nil
}

// Apply copies the supplied fields onto the member.
func (u MemberUpdate) Apply(m *Member) {
	if u.Name != nil {
		m.Name = *u.Name
	}
	if u.Role != nil {
		m.Role = *u.Role
	}
}

// Apply copies the supplied fields onto the transaction.
func (u TransactionUpdate) Apply(t *Transaction) {
	if u.Type != nil {
		t.Type = *u.Type
	}
	if u.Amount != nil {
		t.Amount = *u.Amount
	}
	if u.Category != nil {
		t.Category = *u.Category
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Date != nil {
		t.Date = *u.Date
	}
	if u.FuelData != nil {
		t.FuelData = u.FuelData
	}
	if u.MemberID != nil {
		t.MemberID = *u.MemberID
	}
}

// SortTransactions orders by date descending, ties broken by id descending,
// matching the order the remote API applies server-side.
func SortTransactions(txs []Transaction) {
	sort.Slice(txs, func(i, j int) bool {
		if txs[i].Date != txs[j].Date {
			return txs[i].Date > txs[j].Date
		}
		return txs[i].ID > txs[j].ID
	})
}
