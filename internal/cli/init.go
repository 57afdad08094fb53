// Package cli holds the start-up steps shared by the server, the worker
// and ftctl.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"financetracker/internal/config"
	"financetracker/internal/log"
	"financetracker/internal/notify"
	"financetracker/internal/sheets"
	gsheet "financetracker/internal/sheets/google"
	"financetracker/internal/sheets/memory"
	"financetracker/internal/storage"
)

// SetupLogger builds the root logger at the configured level and installs
// it as the slog default.
func SetupLogger(level string, out io.Writer) *log.Logger {
	cfg := &config.Config{LogLevel: level}
	logger := log.New(log.Config{
		Level:     cfg.SlogLevel(),
		Component: log.ComponentApp,
		Output:    out,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig reads the environment and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// InitSQLite opens the database and applies pending migrations.
func InitSQLite(logger *log.Logger, dbPath string) (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	if v, dirty, err := storage.MigrationVersion(dbPath); err == nil {
		logger.Info("Database ready", "path", dbPath, "schema_version", v, "dirty", dirty)
	}
	return repo, nil
}

// InitMailer returns nil when SMTP is not configured.
func InitMailer(cfg *config.Config, logger *log.Logger) (*notify.Mailer, error) {
	if !cfg.MailEnabled() {
		logger.Info("SMTP not configured, welcome mail disabled")
		return nil, nil
	}
	m, err := notify.NewMailer(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.SMTPFrom,
		Secure:   cfg.SMTPSecure,
	}, logger.WithComponent(log.ComponentMail))
	if err != nil {
		return nil, fmt.Errorf("init mailer: %w", err)
	}
	logger.Info("SMTP mailer initialized", "host", cfg.SMTPHost, "port", cfg.SMTPPort)
	return m, nil
}

// InitJournal returns the Google Sheets journal. Without a spreadsheet it
// returns an in-memory journal outside production and nil in production.
func InitJournal(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.JournalWriter, error) {
	if !cfg.JournalEnabled() {
		if cfg.IsProduction() {
			logger.Info("Google Sheets journal disabled - no GOOGLE_SPREADSHEET_ID provided")
			return nil, nil
		}
		logger.Info("Google Sheets journal not configured, keeping entries in memory", "env", cfg.AppEnv)
		return memory.New(), nil
	}
	client, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("init sheets journal: %w", err)
	}
	if err := client.EnsureHeader(ctx); err != nil {
		return nil, fmt.Errorf("prepare sheets journal: %w", err)
	}
	logger.Info("Google Sheets journal initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	return client, nil
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)
	}()
	return ctx, cancel
}

// Fatal logs err and exits with status 1.
func Fatal(logger *log.Logger, msg string, err error) {
	logger.Error(msg, log.FieldError, err)
	os.Exit(1)
}
