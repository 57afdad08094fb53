package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ports "financetracker/internal/sheets"
)

// Journal keeps journal entries in memory. It stands in for the Google
// journal in tests and when no spreadsheet is configured.
type Journal struct {
	mu      sync.Mutex
	entries []ports.JournalEntry
}

var _ ports.JournalWriter = (*Journal)(nil)

func New() *Journal {
	return &Journal{}
}

// AppendEntry stores the entry and returns a synthetic row reference.
func (j *Journal) AppendEntry(_ context.Context, e ports.JournalEntry) (string, error) {
	if e.TransactionID == "" {
		return "", errors.New("journal entry has no transaction id")
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
	return fmt.Sprintf("mem:%d", len(j.entries)), nil
}

// Entries returns a copy of the stored entries in append order.
func (j *Journal) Entries() []ports.JournalEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]ports.JournalEntry(nil), j.entries...)
}

// Balance sums the signed amounts recorded for a user.
func (j *Journal) Balance(userID string) float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	var total float64
	for _, e := range j.entries {
		if e.UserID == userID {
			total += e.SignedAmount()
		}
	}
	return total
}
