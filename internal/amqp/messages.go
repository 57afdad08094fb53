package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"financetracker/internal/core"
)

type EventType string

const (
	EventUserRegistered     EventType = "user.registered"
	EventTransactionCreated EventType = "transaction.created"
	EventTransactionDeleted EventType = "transaction.deleted"
)

// Envelope wraps every message on the queue; Payload depends on Type.
type Envelope struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

type UserRegistered struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// TransactionEvent describes a transaction that was created or deleted.
type TransactionEvent struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Date        time.Time `json:"date"`
}

func NewTransactionEvent(t core.Transaction) TransactionEvent {
	return TransactionEvent{
		ID:          t.ID,
		UserID:      t.UserID,
		Amount:      t.Amount,
		Category:    t.Category,
		Description: t.Description,
		Type:        string(t.Type),
		Date:        t.Date,
	}
}

// NewEnvelope marshals payload under the given event type.
func NewEnvelope(eventType EventType, payload any) (*Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &Envelope{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   raw,
	}, nil
}

// ToJSON converts the message to JSON bytes
func (e *Envelope) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Decode unmarshals the payload into v.
func (e *Envelope) Decode(v any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("%s: empty payload", e.Type)
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}

// EnvelopeFromJSON parses a queue message body.
func EnvelopeFromJSON(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.Type == "" {
		return nil, errors.New("message has no type")
	}
	return &env, nil
}
