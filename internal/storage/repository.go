package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"financetracker/internal/core"
)

// timeLayout sorts lexicographically, so ORDER BY on the TEXT columns
// matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer keeps SQLite from returning SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// withTx runs fn inside a transaction. fn must only use tx: with one
// pooled connection, touching r.db would block forever.
func (r *SQLiteRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// ---- users ----

// CreateUser stores a new user. A taken email yields core.ErrConflict.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = core.NormalizeEmail(u.Email)
	now := r.now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, formatTime(now), formatTime(now))
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, fmt.Errorf("create user %s: %w", u.Email, core.ErrConflict)
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// GetUserByEmail looks a user up by normalized email.
func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at, updated_at FROM users WHERE email = ?`,
		core.NormalizeEmail(email))
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("user %s: %w", email, core.ErrNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id string) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at, updated_at FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("user %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// ---- transactions ----

// ListTransactions returns the user's transactions, newest date first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, amount, category, description, type, date, created_at, updated_at
		   FROM transactions WHERE user_id = ?
		  ORDER BY date DESC, created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// CreateTransaction stores t and, for expenses, adds its amount to the
// owner's budget of the same category. Both writes commit together; a
// missing budget is not an error.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := r.now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	t.Date = t.Date.UTC()

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (id, user_id, amount, category, description, type, date, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.UserID, t.Amount, t.Category, t.Description, string(t.Type),
			formatTime(t.Date), formatTime(now), formatTime(now))
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		if t.IsExpense() {
			if _, err := adjustBudgetSpent(ctx, tx, t.UserID, t.Category, t.Amount, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved",
		"transaction_id", t.ID, "user_id", t.UserID, "type", t.Type, "category", t.Category)
	return t, nil
}

// DeleteTransaction removes the user's transaction and, for expenses,
// subtracts its amount from the matching budget (spent may go negative).
// A transaction that is absent or owned by someone else yields core.ErrNotFound.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	var deleted core.Transaction
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT id, user_id, amount, category, description, type, date, created_at, updated_at
			   FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
		t, err := scanTransaction(row)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("load transaction: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID); err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		if t.IsExpense() {
			if _, err := adjustBudgetSpent(ctx, tx, userID, t.Category, -t.Amount, r.now().UTC()); err != nil {
				return err
			}
		}
		deleted = t
		return nil
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("delete transaction: %w", err)
	}
	return deleted, nil
}

func adjustBudgetSpent(ctx context.Context, tx *sql.Tx, userID, category string, delta float64, now time.Time) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE budgets SET spent = spent + ?, updated_at = ? WHERE user_id = ? AND category = ?`,
		delta, formatTime(now), userID, category)
	if err != nil {
		return false, fmt.Errorf("adjust budget spent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("adjust budget spent: %w", err)
	}
	return n > 0, nil
}

// ---- budgets ----

// ListBudgets returns the user's budgets, most recently created first.
func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, category, limit_amount, spent, period, created_at, updated_at
		   FROM budgets WHERE user_id = ?
		  ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	out := []core.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return out, nil
}

// GetBudgetByCategory returns the user's budget for one category.
func (r *SQLiteRepository) GetBudgetByCategory(ctx context.Context, userID, category string) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, category, limit_amount, spent, period, created_at, updated_at
		   FROM budgets WHERE user_id = ? AND category = ?`, userID, category)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, fmt.Errorf("budget for %s: %w", category, core.ErrNotFound)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget by category: %w", err)
	}
	return b, nil
}

// CreateBudget stores b with the caller-supplied spent value. A second
// budget for the same user and category yields core.ErrConflict.
func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := r.now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (id, user_id, category, limit_amount, spent, period, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.Category, b.Limit, b.Spent, string(b.Period), formatTime(now), formatTime(now))
	if err != nil {
		if isUniqueViolation(err) {
			return core.Budget{}, fmt.Errorf("create budget for %s: %w", b.Category, core.ErrConflict)
		}
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	return b, nil
}

// SetBudgetSpent overwrites spent on the user's budget.
func (r *SQLiteRepository) SetBudgetSpent(ctx context.Context, userID, id string, spent float64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET spent = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		spent, formatTime(r.now().UTC()), id, userID)
	if err != nil {
		return fmt.Errorf("set budget spent: %w", err)
	}
	return requireAffected(res, "budget", id)
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireAffected(res, "budget", id)
}

// RecomputeBudgetSpent resets spent on every budget of userID (or of all
// users when userID is empty) to the sum of matching expense transactions.
// It returns the number of budgets rewritten.
func (r *SQLiteRepository) RecomputeBudgetSpent(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets
		    SET spent = COALESCE((
		            SELECT SUM(t.amount) FROM transactions t
		             WHERE t.user_id = budgets.user_id
		               AND t.category = budgets.category
		               AND t.type = 'expense'), 0),
		        updated_at = ?
		  WHERE (? = '' OR user_id = ?)`,
		formatTime(r.now().UTC()), userID, userID)
	if err != nil {
		return 0, fmt.Errorf("recompute budget spent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("recompute budget spent: %w", err)
	}
	return n, nil
}

// ---- helpers ----

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (core.User, error) {
	var (
		u                    core.User
		createdAt, updatedAt string
	)
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &createdAt, &updatedAt); err != nil {
		return core.User{}, err
	}
	var err error
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.User{}, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return core.User{}, err
	}
	return u, nil
}

func scanTransaction(s rowScanner) (core.Transaction, error) {
	var (
		t                          core.Transaction
		typ, date, created, update string
	)
	if err := s.Scan(&t.ID, &t.UserID, &t.Amount, &t.Category, &t.Description, &typ, &date, &created, &update); err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)
	var err error
	if t.Date, err = parseTime(date); err != nil {
		return core.Transaction{}, err
	}
	if t.CreatedAt, err = parseTime(created); err != nil {
		return core.Transaction{}, err
	}
	if t.UpdatedAt, err = parseTime(update); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func scanBudget(s rowScanner) (core.Budget, error) {
	var (
		b                        core.Budget
		period, created, updated string
	)
	if err := s.Scan(&b.ID, &b.UserID, &b.Category, &b.Limit, &b.Spent, &period, &created, &updated); err != nil {
		return core.Budget{}, err
	}
	b.Period = core.BudgetPeriod(period)
	var err error
	if b.CreatedAt, err = parseTime(created); err != nil {
		return core.Budget{}, err
	}
	if b.UpdatedAt, err = parseTime(updated); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, core.ErrNotFound)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
