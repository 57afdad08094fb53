package worker

import (
	"context"
	"fmt"

	"financetracker/internal/amqp"
	"financetracker/internal/core"
	"financetracker/internal/log"
	"financetracker/internal/sheets"
)

// WelcomeSender delivers the welcome e-mail.
type WelcomeSender interface {
	SendWelcome(ctx context.Context, name, email string) error
}

// EventWorker handles events consumed from AMQP: welcome mails for new
// users and journal rows for transaction writes. Either collaborator may
// be nil, in which case its events are acknowledged and skipped.
type EventWorker struct {
	mailer  WelcomeSender
	journal sheets.JournalWriter
	logger  *log.Logger
}

func NewEventWorker(mailer WelcomeSender, journal sheets.JournalWriter, logger *log.Logger) *EventWorker {
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentWorker})
	}
	return &EventWorker{mailer: mailer, journal: journal, logger: logger}
}

// Handle is an amqp.Handler. Undecodable and unknown events are permanent
// failures; collaborator errors are returned for redelivery.
func (w *EventWorker) Handle(ctx context.Context, env *amqp.Envelope) error {
	switch env.Type {
	case amqp.EventUserRegistered:
		return w.handleUserRegistered(ctx, env)
	case amqp.EventTransactionCreated, amqp.EventTransactionDeleted:
		return w.handleTransaction(ctx, env)
	default:
		return fmt.Errorf("%w: unknown event type %q", amqp.ErrPermanent, env.Type)
	}
}

func (w *EventWorker) handleUserRegistered(ctx context.Context, env *amqp.Envelope) error {
	var msg amqp.UserRegistered
	if err := env.Decode(&msg); err != nil {
		return fmt.Errorf("%w: %v", amqp.ErrPermanent, err)
	}
	if w.mailer == nil {
		w.logger.WarnContext(ctx, "No mailer configured, skipping welcome mail", log.FieldUserID, msg.UserID)
		return nil
	}
	if err := w.mailer.SendWelcome(ctx, msg.Name, msg.Email); err != nil {
		return fmt.Errorf("send welcome to user %s: %w", msg.UserID, err)
	}
	w.logger.InfoContext(ctx, "Welcome mail delivered", log.FieldUserID, msg.UserID, log.FieldOperation, log.OpNotify)
	return nil
}

func (w *EventWorker) handleTransaction(ctx context.Context, env *amqp.Envelope) error {
	var msg amqp.TransactionEvent
	if err := env.Decode(&msg); err != nil {
		return fmt.Errorf("%w: %v", amqp.ErrPermanent, err)
	}
	if msg.ID == "" {
		return fmt.Errorf("%w: %s without transaction id", amqp.ErrPermanent, env.Type)
	}
	if w.journal == nil {
		w.logger.WarnContext(ctx, "No journal configured, skipping entry",
			log.FieldEventType, env.Type, log.FieldTransactionID, msg.ID)
		return nil
	}

	entry := sheets.JournalEntry{
		RecordedAt:    env.Timestamp,
		Event:         string(env.Type),
		TransactionID: msg.ID,
		UserID:        msg.UserID,
		Date:          msg.Date,
		Type:          core.TransactionType(msg.Type),
		Category:      msg.Category,
		Description:   msg.Description,
		Amount:        msg.Amount,
		Reversal:      env.Type == amqp.EventTransactionDeleted,
	}
	ref, err := w.journal.AppendEntry(ctx, entry)
	if err != nil {
		return fmt.Errorf("journal %s %s: %w", env.Type, msg.ID, err)
	}

	w.logger.InfoContext(ctx, "Journal entry appended",
		log.FieldEventType, env.Type,
		log.FieldTransactionID, msg.ID,
		log.FieldJournalRef, ref)
	return nil
}
