//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"financetracker/internal/core"
	ports "financetracker/internal/sheets"
)

// Integration tests require real Google Sheets credentials
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_JournalAppend(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	credsJSON := os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")
	credsFile := os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")
	if credsJSON == "" && credsFile == "" {
		t.Skip("service account credentials not configured, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := New(ctx, Options{
		SpreadsheetID:   spreadsheetID,
		SheetName:       os.Getenv("GOOGLE_SHEET_NAME"),
		CredentialsJSON: credsJSON,
		CredentialsFile: credsFile,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	if err := client.EnsureHeader(ctx); err != nil {
		t.Fatalf("Failed to ensure header: %v", err)
	}

	ref, err := client.AppendEntry(ctx, ports.JournalEntry{
		RecordedAt:    time.Now(),
		Event:         "transaction.created",
		TransactionID: "integration-test",
		UserID:        "integration-user",
		Date:          time.Now(),
		Type:          core.Expense,
		Category:      "Other",
		Description:   "Integration Test Entry",
		Amount:        12.34,
	})
	if err != nil {
		t.Fatalf("Failed to append entry: %v", err)
	}
	if ref == "" {
		t.Error("Expected non-empty reference")
	}
	t.Logf("Appended journal row at %s", ref)
}
