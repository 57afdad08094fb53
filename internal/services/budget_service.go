package services

import (
	"context"
	"strings"

	"financetracker/internal/core"
	"financetracker/internal/log"
)

// BudgetInput is the raw create request. Spent defaults to 0 when empty.
type BudgetInput struct {
	Category string
	Limit    string
	Spent    string
	Period   string
}

type BudgetService struct {
	store   BudgetStore
	changes ChangeNotifier
	logger  *log.Logger
}

func NewBudgetService(store BudgetStore, logger *log.Logger) *BudgetService {
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentBudget})
	}
	return &BudgetService{store: store, logger: logger}
}

// NotifyChanges registers n to hear about every successful write.
func (s *BudgetService) NotifyChanges(n ChangeNotifier) {
	s.changes = n
}

func (s *BudgetService) changed(userID string) {
	if s.changes != nil {
		s.changes.Invalidate(userID)
	}
}

// List returns the user's budgets, most recently created first.
func (s *BudgetService) List(ctx context.Context, userID string) ([]core.Budget, error) {
	return s.store.ListBudgets(ctx, userID)
}

// Create stores a budget with the caller-supplied spent value; existing
// transactions are not back-filled. A second budget for the same category
// yields core.ErrConflict.
func (s *BudgetService) Create(ctx context.Context, userID string, in BudgetInput) (core.Budget, error) {
	b, err := parseBudget(userID, in)
	if err != nil {
		return core.Budget{}, err
	}
	b, err = s.store.CreateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, err
	}
	s.changed(userID)
	s.logger.InfoContext(ctx, "Budget created",
		log.NewFields().WithUser(userID).WithBudget(b.ID, b.Category).ToSlice()...)
	return b, nil
}

// SetSpent replaces the budget's spent value.
func (s *BudgetService) SetSpent(ctx context.Context, userID, id, spent string) error {
	if strings.TrimSpace(spent) == "" {
		return core.NewValidationError("Missing required field: spent")
	}
	v, err := core.ParseAmount(spent)
	if err != nil {
		return core.NewValidationError("Invalid value for spent")
	}
	if id == "" {
		return core.ErrNotFound
	}
	if err := s.store.SetBudgetSpent(ctx, userID, id, v.InexactFloat64()); err != nil {
		return err
	}
	s.changed(userID)
	s.logger.InfoContext(ctx, "Budget spent replaced",
		log.FieldUserID, userID, log.FieldBudgetID, id, log.FieldAmount, v.InexactFloat64())
	return nil
}

func (s *BudgetService) Delete(ctx context.Context, userID, id string) error {
	if id == "" {
		return core.ErrNotFound
	}
	if err := s.store.DeleteBudget(ctx, userID, id); err != nil {
		return err
	}
	s.changed(userID)
	s.logger.InfoContext(ctx, "Budget deleted", log.FieldUserID, userID, log.FieldBudgetID, id)
	return nil
}

func parseBudget(userID string, in BudgetInput) (core.Budget, error) {
	category := strings.TrimSpace(in.Category)
	period := strings.ToLower(strings.TrimSpace(in.Period))
	if category == "" || strings.TrimSpace(in.Limit) == "" || period == "" {
		return core.Budget{}, core.NewValidationError("Missing required fields")
	}

	limit, err := core.ParseAmount(in.Limit)
	if err != nil {
		return core.Budget{}, core.NewValidationError("Invalid number for limit or spent")
	}
	spent := "0"
	if strings.TrimSpace(in.Spent) != "" {
		spent = in.Spent
	}
	spentValue, err := core.ParseAmount(spent)
	if err != nil {
		return core.Budget{}, core.NewValidationError("Invalid number for limit or spent")
	}

	b := core.Budget{
		UserID:   userID,
		Category: category,
		Limit:    limit.InexactFloat64(),
		Spent:    spentValue.InexactFloat64(),
		Period:   core.BudgetPeriod(period),
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}
