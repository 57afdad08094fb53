package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Budget health thresholds, in percent of the limit.
const (
	BudgetWarningPercent = 80
	BudgetOverPercent    = 100
)

const (
	BudgetGood    BudgetStatus = "good"
	BudgetWarning BudgetStatus = "warning"
	BudgetOver    BudgetStatus = "over"
)

// RecentTransactionsLimit bounds Summary.RecentTransactions.
const RecentTransactionsLimit = 5

type BudgetStatus string

// CategoryAmount is the expense total of one category.
type CategoryAmount struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"`
}

// MonthTrend aggregates one calendar month, keyed "2006-01".
type MonthTrend struct {
	Month    string  `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Savings  float64 `json:"savings"`
}

type BudgetHealth struct {
	ID         string       `json:"id"`
	Category   string       `json:"category"`
	Limit      float64      `json:"limit"`
	Spent      float64      `json:"spent"`
	Percentage float64      `json:"percentage"`
	Status     BudgetStatus `json:"status"`
}

// Summary is the dashboard view of one user's data.
type Summary struct {
	TotalBalance       float64          `json:"totalBalance"`
	TotalIncome        float64          `json:"totalIncome"`
	TotalExpenses      float64          `json:"totalExpenses"`
	MonthlyIncome      float64          `json:"monthlyIncome"`
	MonthlyExpenses    float64          `json:"monthlyExpenses"`
	SavingsRate        float64          `json:"savingsRate"`
	ExpensesByCategory []CategoryAmount `json:"expensesByCategory"`
	MonthlyTrend       []MonthTrend     `json:"monthlyTrend"`
	Budgets            []BudgetHealth   `json:"budgets"`
	OverBudgetCount    int              `json:"overBudgetCount"`
	WarningBudgetCount int              `json:"warningBudgetCount"`
	RecentTransactions []Transaction    `json:"recentTransactions"`
}

// StatusFor classifies a spent/limit percentage.
func StatusFor(percentage float64) BudgetStatus {
	switch {
	case percentage >= BudgetOverPercent:
		return BudgetOver
	case percentage >= BudgetWarningPercent:
		return BudgetWarning
	default:
		return BudgetGood
	}
}

// BuildSummary derives the dashboard from a user's transactions and budgets.
// now selects the current month; it is taken in UTC.
func BuildSummary(now time.Time, txs []Transaction, budgets []Budget) Summary {
	now = now.UTC()
	var (
		income, expenses   decimal.Decimal
		mIncome, mExpenses decimal.Decimal
		byCategory         = map[string]decimal.Decimal{}
		byMonth            = map[string]*monthAcc{}
	)

	for _, t := range txs {
		amt := decimal.NewFromFloat(t.Amount)
		d := t.Date.UTC()
		inMonth := d.Year() == now.Year() && d.Month() == now.Month()

		key := d.Format("2006-01")
		acc, ok := byMonth[key]
		if !ok {
			acc = &monthAcc{}
			byMonth[key] = acc
		}

		switch t.Type {
		case Income:
			income = income.Add(amt)
			acc.income = acc.income.Add(amt)
			if inMonth {
				mIncome = mIncome.Add(amt)
			}
		case Expense:
			expenses = expenses.Add(amt)
			acc.expenses = acc.expenses.Add(amt)
			byCategory[t.Category] = byCategory[t.Category].Add(amt)
			if inMonth {
				mExpenses = mExpenses.Add(amt)
			}
		}
	}

	s := Summary{
		TotalBalance:       income.Sub(expenses).InexactFloat64(),
		TotalIncome:        income.InexactFloat64(),
		TotalExpenses:      expenses.InexactFloat64(),
		MonthlyIncome:      mIncome.InexactFloat64(),
		MonthlyExpenses:    mExpenses.InexactFloat64(),
		ExpensesByCategory: []CategoryAmount{},
		MonthlyTrend:       []MonthTrend{},
		Budgets:            []BudgetHealth{},
		RecentTransactions: recent(txs, RecentTransactionsLimit),
	}
	if mIncome.IsPositive() {
		s.SavingsRate = mIncome.Sub(mExpenses).Div(mIncome).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}

	for cat, amt := range byCategory {
		s.ExpensesByCategory = append(s.ExpensesByCategory, CategoryAmount{
			Category:   cat,
			Amount:     amt.InexactFloat64(),
			Percentage: Percent(amt.InexactFloat64(), s.TotalExpenses),
			Color:      CategoryColor(cat),
		})
	}
	sort.Slice(s.ExpensesByCategory, func(i, j int) bool {
		a, b := s.ExpensesByCategory[i], s.ExpensesByCategory[j]
		if a.Amount != b.Amount {
			return a.Amount > b.Amount
		}
		return a.Category < b.Category
	})

	for key, acc := range byMonth {
		s.MonthlyTrend = append(s.MonthlyTrend, MonthTrend{
			Month:    key,
			Income:   acc.income.InexactFloat64(),
			Expenses: acc.expenses.InexactFloat64(),
			Savings:  acc.income.Sub(acc.expenses).InexactFloat64(),
		})
	}
	sort.Slice(s.MonthlyTrend, func(i, j int) bool {
		return s.MonthlyTrend[i].Month < s.MonthlyTrend[j].Month
	})

	for _, b := range budgets {
		pct := Percent(b.Spent, b.Limit)
		h := BudgetHealth{
			ID:         b.ID,
			Category:   b.Category,
			Limit:      b.Limit,
			Spent:      b.Spent,
			Percentage: pct,
			Status:     StatusFor(pct),
		}
		switch h.Status {
		case BudgetOver:
			s.OverBudgetCount++
		case BudgetWarning:
			s.WarningBudgetCount++
		}
		s.Budgets = append(s.Budgets, h)
	}

	return s
}

type monthAcc struct {
	income, expenses decimal.Decimal
}

// recent returns the n newest transactions by date without mutating txs.
func recent(txs []Transaction, n int) []Transaction {
	out := append([]Transaction(nil), txs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	if len(out) > n {
		out = out[:n]
	}
	if out == nil {
		out = []Transaction{}
	}
	return out
}
