package services

import (
	"context"
	"strings"

	"financetracker/internal/core"
	"financetracker/internal/log"
)

// TransactionInput is the raw create request; every field is as received.
type TransactionInput struct {
	Amount      string
	Category    string
	Description string
	Type        string
	Date        string
}

// TransactionService orchestrates transaction writes across SQLite and AMQP.
// Budget synchronisation happens inside the store.
type TransactionService struct {
	store     TransactionStore
	publisher EventPublisher
	changes   ChangeNotifier
	logger    *log.Logger
}

func NewTransactionService(store TransactionStore, publisher EventPublisher, logger *log.Logger) *TransactionService {
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentTransaction})
	}
	return &TransactionService{store: store, publisher: publisher, logger: logger}
}

// NotifyChanges registers n to hear about every successful write.
func (s *TransactionService) NotifyChanges(n ChangeNotifier) {
	s.changes = n
}

func (s *TransactionService) changed(userID string) {
	if s.changes != nil {
		s.changes.Invalidate(userID)
	}
}

// List returns the user's transactions, newest date first.
func (s *TransactionService) List(ctx context.Context, userID string) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, userID)
}

// Create validates in, stores it for userID and publishes
// transaction.created.
func (s *TransactionService) Create(ctx context.Context, userID string, in TransactionInput) (core.Transaction, error) {
	t, err := parseTransaction(userID, in)
	if err != nil {
		return core.Transaction{}, err
	}

	t, err = s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}
	s.changed(userID)

	s.logger.InfoContext(ctx, "Transaction created",
		log.NewFields().WithUser(userID).WithTransaction(t.ID, string(t.Type), t.Category, t.Amount).ToSlice()...)

	// Don't fail the request - the transaction is stored
	if s.publisher == nil {
		s.logger.WarnContext(ctx, "AMQP client not available, skipping transaction.created")
	} else if err := s.publisher.PublishTransactionCreated(ctx, t); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish transaction.created",
			log.FieldTransactionID, t.ID, log.FieldError, err)
	}
	return t, nil
}

// Delete removes the user's transaction. Missing and foreign ids both
// yield core.ErrNotFound.
func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	if id == "" {
		return core.ErrNotFound
	}
	t, err := s.store.DeleteTransaction(ctx, userID, id)
	if err != nil {
		return err
	}
	s.changed(userID)

	s.logger.InfoContext(ctx, "Transaction deleted",
		log.NewFields().WithUser(userID).WithTransaction(t.ID, string(t.Type), t.Category, t.Amount).ToSlice()...)

	if s.publisher == nil {
		s.logger.WarnContext(ctx, "AMQP client not available, skipping transaction.deleted")
	} else if err := s.publisher.PublishTransactionDeleted(ctx, t); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish transaction.deleted",
			log.FieldTransactionID, t.ID, log.FieldError, err)
	}
	return nil
}

func parseTransaction(userID string, in TransactionInput) (core.Transaction, error) {
	category := strings.TrimSpace(in.Category)
	if strings.TrimSpace(in.Amount) == "" || category == "" || strings.TrimSpace(in.Type) == "" || strings.TrimSpace(in.Date) == "" {
		return core.Transaction{}, core.NewValidationError("Missing required fields")
	}

	amount, err := core.ParseAmount(in.Amount)
	if err != nil || !amount.IsPositive() {
		return core.Transaction{}, core.NewValidationError("Invalid amount")
	}

	typ := core.TransactionType(strings.ToLower(strings.TrimSpace(in.Type)))
	if !typ.Valid() {
		return core.Transaction{}, core.NewValidationError("Invalid type")
	}

	date, err := core.ParseDate(in.Date)
	if err != nil {
		return core.Transaction{}, err
	}

	t := core.Transaction{
		UserID:      userID,
		Amount:      amount.InexactFloat64(),
		Category:    category,
		Description: strings.TrimSpace(in.Description),
		Type:        typ,
		Date:        date,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}
