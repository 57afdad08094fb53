package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"financetracker/internal/cache"
	"financetracker/internal/core"
)

// SummaryService builds the dashboard summary from live data.
type SummaryService struct {
	transactions TransactionStore
	budgets      BudgetStore
	now          func() time.Time

	cache cache.Cache[core.Summary]
	// generations counts invalidations per user so a summary computed
	// across a concurrent write is never stored.
	mu          sync.Mutex
	generations map[string]uint64
}

func NewSummaryService(transactions TransactionStore, budgets BudgetStore) *SummaryService {
	return &SummaryService{
		transactions: transactions,
		budgets:      budgets,
		now:          time.Now,
		generations:  make(map[string]uint64),
	}
}

// EnableCache keeps computed summaries in c until the user's data changes.
// Call it before serving requests.
func (s *SummaryService) EnableCache(c cache.Cache[core.Summary]) {
	s.cache = c
}

// Invalidate drops the cached summary of userID. Writers call it after
// every successful transaction or budget change.
func (s *SummaryService) Invalidate(userID string) {
	s.mu.Lock()
	s.generations[userID]++
	s.mu.Unlock()
	if s.cache != nil {
		s.cache.Delete(userID)
	}
}

func (s *SummaryService) generation(userID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[userID]
}

// Summary loads the user's transactions and budgets concurrently and
// aggregates them relative to the current month.
func (s *SummaryService) Summary(ctx context.Context, userID string) (core.Summary, error) {
	if s.cache != nil {
		if sum, ok := s.cache.Get(userID); ok {
			return sum, nil
		}
	}
	gen := s.generation(userID)

	var (
		txs     []core.Transaction
		budgets []core.Budget
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.transactions.ListTransactions(gctx, userID)
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		budgets, err = s.budgets.ListBudgets(gctx, userID)
		if err != nil {
			return fmt.Errorf("load budgets: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.Summary{}, err
	}

	sum := core.BuildSummary(s.now(), txs, budgets)
	if s.cache != nil {
		s.mu.Lock()
		if s.generations[userID] == gen {
			s.cache.Set(userID, sum)
		}
		s.mu.Unlock()
	}
	return sum, nil
}
