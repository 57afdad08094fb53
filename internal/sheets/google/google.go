package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"financetracker/internal/log"
	ports "financetracker/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const defaultSheetName = "Journal"

// Columns written by AppendEntry, in order.
var journalHeader = []any{"Recorded At", "Event", "Transaction ID", "User ID", "Date", "Type", "Category", "Description", "Amount"}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var _ ports.JournalWriter = (*Client)(nil)

// Options configures New. Exactly one of CredentialsJSON and
// CredentialsFile is expected; ClientOptions are appended last and mostly
// serve tests.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
	ClientOptions   []goption.ClientOption
}

// New creates a Sheets journal client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(opts.SheetName)
	if sheetName == "" {
		sheetName = defaultSheetName
	}

	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	logger := log.FromContext(ctx).WithComponent(log.ComponentSheets)

	clientOpts := []goption.ClientOption{goption.WithScopes(gsheet.SpreadsheetsScope)}
	switch {
	case opts.CredentialsJSON != "":
		logger.InfoContext(ctx, "Using inline JSON credentials")
		clientOpts = append(clientOpts, goption.WithCredentialsJSON([]byte(opts.CredentialsJSON)))
	case opts.CredentialsFile != "":
		credentialsJSON, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		logger.InfoContext(ctx, "Read credentials file", "path", opts.CredentialsFile, "size", len(credentialsJSON))
		clientOpts = append(clientOpts, goption.WithCredentialsJSON(credentialsJSON))
	case len(opts.ClientOptions) == 0:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
	clientOpts = append(clientOpts, opts.ClientOptions...)

	service, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// EnsureHeader writes the column titles when the first row is empty.
func (c *Client) EnsureHeader(ctx context.Context) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A1:I1", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", c.sheetName, err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}
	vr := &gsheet.ValueRange{Values: [][]any{journalHeader}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header of %s: %w", c.sheetName, err)
	}
	return nil
}

// AppendEntry appends one journal row and returns the updated range.
func (c *Client) AppendEntry(ctx context.Context, e ports.JournalEntry) (string, error) {
	if e.TransactionID == "" {
		return "", errors.New("journal entry has no transaction id")
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:I", c.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{entryToRow(e)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return rng, nil
}

func entryToRow(e ports.JournalEntry) []any {
	recorded := e.RecordedAt
	if recorded.IsZero() {
		recorded = time.Now()
	}
	return []any{
		recorded.UTC().Format(time.RFC3339),
		e.Event,
		e.TransactionID,
		e.UserID,
		e.Date.UTC().Format("2006-01-02"),
		string(e.Type),
		e.Category,
		e.Description,
		e.SignedAmount(),
	}
}
