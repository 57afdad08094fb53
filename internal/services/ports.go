package services

import (
	"context"

	"financetracker/internal/core"
)

// Storage ports, satisfied by *storage.SQLiteRepository.
type (
	UserStore interface {
		CreateUser(ctx context.Context, u core.User) (core.User, error)
		GetUserByEmail(ctx context.Context, email string) (core.User, error)
		GetUserByID(ctx context.Context, id string) (core.User, error)
	}

	TransactionStore interface {
		ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, userID, id string) (core.Transaction, error)
	}

	BudgetStore interface {
		ListBudgets(ctx context.Context, userID string) ([]core.Budget, error)
		CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		SetBudgetSpent(ctx context.Context, userID, id string, spent float64) error
		DeleteBudget(ctx context.Context, userID, id string) error
	}
)

// EventPublisher announces domain events, satisfied by *amqp.Client.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, u core.User) error
	PublishTransactionCreated(ctx context.Context, t core.Transaction) error
	PublishTransactionDeleted(ctx context.Context, t core.Transaction) error
}

// WelcomeSender delivers the welcome e-mail, satisfied by *notify.Mailer.
type WelcomeSender interface {
	SendWelcome(ctx context.Context, name, email string) error
}

// ChangeNotifier is told after a user's transactions or budgets change,
// satisfied by *SummaryService.
type ChangeNotifier interface {
	Invalidate(userID string)
}
