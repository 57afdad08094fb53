package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2024-03-10T15:04:05+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 13, 4, 5, 0, time.UTC), d)

	for _, bad := range []string{"", "31/01/2024", "2024-13-01", "yesterday"} {
		_, err := ParseDate(bad)
		ve, ok := AsValidation(err)
		require.True(t, ok, "input %q", bad)
		assert.Equal(t, "Invalid date", ve.Message)
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.Com "))
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		UserID:   "u1",
		Amount:   50,
		Category: "Food & Dining",
		Type:     Expense,
		Date:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Transaction)
		msg    string
	}{
		{"zero amount", func(tx *Transaction) { tx.Amount = 0 }, "Invalid amount"},
		{"negative amount", func(tx *Transaction) { tx.Amount = -1 }, "Invalid amount"},
		{"blank category", func(tx *Transaction) { tx.Category = "  " }, "Missing required fields"},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, "Invalid type"},
		{"zero date", func(tx *Transaction) { tx.Date = time.Time{} }, "Invalid date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mutate(&tx)
			ve, ok := AsValidation(tx.Validate())
			require.True(t, ok)
			assert.Equal(t, tt.msg, ve.Message)
		})
	}
}

func TestTransactionIsExpense(t *testing.T) {
	assert.True(t, Transaction{Type: Expense, Category: "Travel"}.IsExpense())
	assert.False(t, Transaction{Type: Income, Category: "Salary"}.IsExpense())
	assert.False(t, Transaction{Type: Expense}.IsExpense())
}

func TestBudgetValidate(t *testing.T) {
	b := Budget{UserID: "u1", Category: "Travel", Limit: 200, Period: Monthly}
	require.NoError(t, b.Validate())

	b.Period = "weekly"
	ve, ok := AsValidation(b.Validate())
	require.True(t, ok)
	assert.Equal(t, "Invalid period", ve.Message)

	b.Period = Yearly
	b.Limit = -1
	ve, ok = AsValidation(b.Validate())
	require.True(t, ok)
	assert.Equal(t, "Invalid number for limit or spent", ve.Message)
}

func TestCategoryColor(t *testing.T) {
	assert.Equal(t, "#EF4444", CategoryColor("Food & Dining"))
	assert.Equal(t, DefaultCategoryColor, CategoryColor("Crypto"))
	assert.Len(t, Categories, 12)
}
