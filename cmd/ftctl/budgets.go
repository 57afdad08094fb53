package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"financetracker/internal/core"
	"financetracker/internal/log"
)

func (a *app) budgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "Maintain budgets",
	}

	recompute := &cobra.Command{
		Use:   "recompute",
		Short: "Rebuild budget spent from expense transactions",
		Long: `Set every budget's spent to the sum of the owner's expense
transactions in its category, replacing any manual override.

Without --user all budgets are rebuilt.`,
		Args: cobra.NoArgs,
		RunE: a.runBudgetsRecompute,
	}
	recompute.Flags().String("user", "", "only rebuild budgets of the user with this email")

	cmd.AddCommand(recompute)
	return cmd
}

func (a *app) runBudgetsRecompute(cmd *cobra.Command, _ []string) error {
	email, _ := cmd.Flags().GetString("user")
	ctx := cmd.Context()

	repo, err := a.openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	var userID string
	if email != "" {
		u, err := repo.GetUserByEmail(ctx, core.NormalizeEmail(email))
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("no user with email %s", email)
		}
		if err != nil {
			return err
		}
		userID = u.ID
	}

	n, err := repo.RecomputeBudgetSpent(ctx, userID)
	if err != nil {
		return err
	}
	a.logger.Info("Budgets recomputed", log.FieldUserID, userID, log.FieldOperation, log.OpRecompute, "count", n)
	fmt.Fprintf(a.stdout, "%d budget(s) recomputed\n", n)
	return nil
}
