package core

import (
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Monthly BudgetPeriod = "monthly"
	Yearly  BudgetPeriod = "yearly"
)

// DateLayout is the calendar form accepted for transaction dates.
const DateLayout = "2006-01-02"

type (
	TransactionType string

	BudgetPeriod string

	User struct {
		ID           string    `json:"id"`
		Name         string    `json:"name"`
		Email        string    `json:"email"`
		PasswordHash string    `json:"-"`
		CreatedAt    time.Time `json:"createdAt"`
		UpdatedAt    time.Time `json:"updatedAt"`
	}

	Transaction struct {
		ID          string          `json:"id"`
		UserID      string          `json:"userId"`
		Amount      float64         `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Type        TransactionType `json:"type"`
		Date        time.Time       `json:"date"`
		CreatedAt   time.Time       `json:"createdAt"`
		UpdatedAt   time.Time       `json:"updatedAt"`
	}

	Budget struct {
		ID        string       `json:"id"`
		UserID    string       `json:"userId"`
		Category  string       `json:"category"`
		Limit     float64      `json:"limit"`
		Spent     float64      `json:"spent"`
		Period    BudgetPeriod `json:"period"`
		CreatedAt time.Time    `json:"createdAt"`
		UpdatedAt time.Time    `json:"updatedAt"`
	}
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (p BudgetPeriod) Valid() bool {
	return p == Monthly || p == Yearly
}

// NormalizeEmail is the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParseDate accepts a calendar date (2024-01-31) or an RFC 3339 timestamp.
// The result is always UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, NewValidationError("Invalid date")
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, NewValidationError("Invalid date")
}

// Validate checks a transaction before it is persisted.
func (t Transaction) Validate() error {
	if t.UserID == "" {
		return NewValidationError("Missing user")
	}
	if strings.TrimSpace(t.Category) == "" {
		return NewValidationError("Missing required fields")
	}
	if t.Amount <= 0 {
		return NewValidationError("Invalid amount")
	}
	if !t.Type.Valid() {
		return NewValidationError("Invalid type")
	}
	if t.Date.IsZero() {
		return NewValidationError("Invalid date")
	}
	return nil
}

// IsExpense reports whether the transaction takes part in budget tracking.
func (t Transaction) IsExpense() bool {
	return t.Type == Expense && t.Category != ""
}

func (b Budget) Validate() error {
	if b.UserID == "" {
		return NewValidationError("Missing user")
	}
	if strings.TrimSpace(b.Category) == "" {
		return NewValidationError("Missing required fields")
	}
	if b.Limit < 0 || b.Spent < 0 {
		return NewValidationError("Invalid number for limit or spent")
	}
	if !b.Period.Valid() {
		return NewValidationError("Invalid period")
	}
	return nil
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" || u.Email == "" || u.PasswordHash == "" {
		return NewValidationError("Missing required fields")
	}
	if !strings.Contains(u.Email, "@") {
		return NewValidationError("Invalid email")
	}
	return nil
}
