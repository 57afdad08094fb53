package memory

import (
	"context"
	"testing"

	ports "financetracker/internal/sheets"
)

func TestJournalAppendAndEntries(t *testing.T) {
	j := New()
	ref, err := j.AppendEntry(context.Background(), ports.JournalEntry{TransactionID: "t1", UserID: "u1", Amount: 10})
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}
	ref, err = j.AppendEntry(context.Background(), ports.JournalEntry{TransactionID: "t2", UserID: "u1", Amount: 4})
	if err != nil || ref != "mem:2" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}

	entries := j.Entries()
	if len(entries) != 2 || entries[0].TransactionID != "t1" || entries[1].TransactionID != "t2" {
		t.Fatalf("unexpected entries: %+v", entries)
	}

	// Callers get a copy.
	entries[0].TransactionID = "changed"
	if j.Entries()[0].TransactionID != "t1" {
		t.Error("Entries() must not expose internal storage")
	}
}

func TestJournalRejectsEntryWithoutID(t *testing.T) {
	if _, err := New().AppendEntry(context.Background(), ports.JournalEntry{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestJournalBalanceHonoursReversals(t *testing.T) {
	j := New()
	ctx := context.Background()
	_, _ = j.AppendEntry(ctx, ports.JournalEntry{TransactionID: "t1", UserID: "u1", Amount: 30})
	_, _ = j.AppendEntry(ctx, ports.JournalEntry{TransactionID: "t1", UserID: "u1", Amount: 30, Reversal: true})
	_, _ = j.AppendEntry(ctx, ports.JournalEntry{TransactionID: "t2", UserID: "u1", Amount: 5})
	_, _ = j.AppendEntry(ctx, ports.JournalEntry{TransactionID: "t3", UserID: "u2", Amount: 99})

	if got := j.Balance("u1"); got != 5 {
		t.Errorf("Balance(u1) = %v, want 5", got)
	}
}
