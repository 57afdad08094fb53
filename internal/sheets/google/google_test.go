package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"financetracker/internal/core"
	ports "financetracker/internal/sheets"

	goption "google.golang.org/api/option"
)

// fakeSheets records the requests the client sends to the Sheets API.
type fakeSheets struct {
	mu       sync.Mutex
	requests []*recordedRequest
	header   string // JSON returned for GET
}

type recordedRequest struct {
	method string
	path   string
	query  map[string]string
	values [][]any
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	rec := &recordedRequest{method: r.Method, path: r.URL.Path, query: map[string]string{}}
	for k := range r.URL.Query() {
		rec.query[k] = r.URL.Query().Get(k)
	}
	if len(body) > 0 {
		var vr struct {
			Values [][]any `json:"values"`
		}
		_ = json.Unmarshal(body, &vr)
		rec.values = vr.Values
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, ":append"):
		_, _ = io.WriteString(w, `{"spreadsheetId":"sheet-1","updates":{"updatedRange":"Journal!A7:I7","updatedRows":1}}`)
	case r.Method == http.MethodGet:
		_, _ = io.WriteString(w, f.header)
	default:
		_, _ = io.WriteString(w, `{}`)
	}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Options{
		SpreadsheetID: "sheet-1",
		ClientOptions: []goption.ClientOption{
			goption.WithEndpoint(srv.URL + "/"),
			goption.WithoutAuthentication(),
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{CredentialsJSON: "{}"})
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "x"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "x", CredentialsFile: "/nonexistent/sa.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_DefaultSheetName(t *testing.T) {
	c := newTestClient(t, &fakeSheets{})
	if c.sheetName != "Journal" {
		t.Errorf("sheetName = %q, want Journal", c.sheetName)
	}
}

func TestEntryToRow(t *testing.T) {
	e := ports.JournalEntry{
		RecordedAt:    time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
		Event:         "transaction.deleted",
		TransactionID: "t1",
		UserID:        "u1",
		Date:          time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC),
		Type:          core.Expense,
		Category:      "Travel",
		Description:   "train",
		Amount:        12.5,
		Reversal:      true,
	}

	row := entryToRow(e)
	want := []any{"2024-03-01T10:30:00Z", "transaction.deleted", "t1", "u1", "2024-02-28", "expense", "Travel", "train", -12.5}
	if len(row) != len(want) {
		t.Fatalf("row has %d columns, want %d", len(row), len(want))
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("column %d = %v, want %v", i, row[i], want[i])
		}
	}
	if len(row) != len(journalHeader) {
		t.Errorf("row and header widths differ: %d vs %d", len(row), len(journalHeader))
	}
}

func TestClient_AppendEntry(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake)

	ref, err := c.AppendEntry(context.Background(), ports.JournalEntry{
		Event:         "transaction.created",
		TransactionID: "t1",
		UserID:        "u1",
		Date:          time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Type:          core.Income,
		Category:      "Salary",
		Amount:        1000,
	})
	if err != nil {
		t.Fatalf("AppendEntry() error = %v", err)
	}
	if ref != "Journal!A7:I7" {
		t.Errorf("ref = %q", ref)
	}

	if len(fake.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(fake.requests))
	}
	req := fake.requests[0]
	if req.method != http.MethodPost || !strings.Contains(req.path, "/v4/spreadsheets/sheet-1/values/") {
		t.Errorf("unexpected request %s %s", req.method, req.path)
	}
	if req.query["valueInputOption"] != "USER_ENTERED" || req.query["insertDataOption"] != "INSERT_ROWS" {
		t.Errorf("unexpected query %v", req.query)
	}
	if len(req.values) != 1 || req.values[0][2] != "t1" || req.values[0][8] != float64(1000) {
		t.Errorf("unexpected values %v", req.values)
	}
}

func TestClient_AppendEntry_RequiresTransactionID(t *testing.T) {
	c := &Client{spreadsheetID: "test"}
	if _, err := c.AppendEntry(context.Background(), ports.JournalEntry{}); err == nil {
		t.Fatal("expected error for entry without transaction id")
	}
}

func TestClient_AppendEntry_NilService(t *testing.T) {
	c := &Client{spreadsheetID: "test"}
	_, err := c.AppendEntry(context.Background(), ports.JournalEntry{TransactionID: "t1"})
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_EnsureHeader(t *testing.T) {
	t.Run("writes header on empty sheet", func(t *testing.T) {
		fake := &fakeSheets{header: `{"range":"Journal!A1:I1"}`}
		c := newTestClient(t, fake)
		if err := c.EnsureHeader(context.Background()); err != nil {
			t.Fatalf("EnsureHeader() error = %v", err)
		}
		if len(fake.requests) != 2 {
			t.Fatalf("expected GET and PUT, got %d requests", len(fake.requests))
		}
		put := fake.requests[1]
		if put.method != http.MethodPut || len(put.values) != 1 || put.values[0][0] != "Recorded At" {
			t.Errorf("unexpected header write: %s %v", put.method, put.values)
		}
	})

	t.Run("keeps existing header", func(t *testing.T) {
		fake := &fakeSheets{header: `{"range":"Journal!A1:I1","values":[["Recorded At"]]}`}
		c := newTestClient(t, fake)
		if err := c.EnsureHeader(context.Background()); err != nil {
			t.Fatalf("EnsureHeader() error = %v", err)
		}
		if len(fake.requests) != 1 {
			t.Errorf("expected only the read, got %d requests", len(fake.requests))
		}
	})
}
