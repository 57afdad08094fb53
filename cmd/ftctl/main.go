// Command ftctl administers a financetracker database.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"financetracker/internal/cli"
	"financetracker/internal/log"
	"financetracker/internal/storage"
)

const defaultDBPath = "./data/financetracker.db"

// app carries what every subcommand needs; stdin and stdout are swapped
// in tests.
type app struct {
	v      *viper.Viper
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger *log.Logger
}

func main() {
	cli.LoadEnvFile()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{v: viper.New(), stdin: stdin, stdout: stdout, stderr: stderr}
	a.v.AutomaticEnv()
	a.v.SetDefault("SQLITE_DB_PATH", defaultDBPath)
	a.v.SetDefault("LOG_LEVEL", "warn")

	root := &cobra.Command{
		Use:           "ftctl",
		Short:         "Administer the finance tracker database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.logger = cli.SetupLogger(a.v.GetString("LOG_LEVEL"), a.stderr).WithComponent(log.ComponentCLI)
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().String("db", defaultDBPath, "SQLite database path (env SQLITE_DB_PATH)")
	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	_ = a.v.BindPFlag("SQLITE_DB_PATH", root.PersistentFlags().Lookup("db"))
	_ = a.v.BindPFlag("LOG_LEVEL", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(a.migrateCmd())
	root.AddCommand(a.userCmd())
	root.AddCommand(a.budgetsCmd())
	return root
}

func (a *app) dbPath() string {
	return a.v.GetString("SQLITE_DB_PATH")
}

func (a *app) openRepo() (*storage.SQLiteRepository, error) {
	return cli.InitSQLite(a.logger, a.dbPath())
}
