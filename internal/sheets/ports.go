package sheets

import (
	"context"
	"time"

	"financetracker/internal/core"
)

// JournalEntry is one line of the transaction journal. Reversal entries
// record a deletion and carry the negated amount.
type JournalEntry struct {
	RecordedAt    time.Time
	Event         string
	TransactionID string
	UserID        string
	Date          time.Time
	Type          core.TransactionType
	Category      string
	Description   string
	Amount        float64
	Reversal      bool
}

// SignedAmount returns the amount as written to the journal.
func (e JournalEntry) SignedAmount() float64 {
	if e.Reversal {
		return -e.Amount
	}
	return e.Amount
}

// Ports for outbound adapters.
type (
	JournalWriter interface {
		AppendEntry(ctx context.Context, e JournalEntry) (ref string, err error)
	}
)
