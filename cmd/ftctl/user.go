package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"financetracker/internal/core"
	"financetracker/internal/services"
)

func (a *app) userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Create a user account",
		Long: `Create a user account without going through the API.

The password is prompted for when --password is omitted. No welcome
mail is sent.`,
		Args: cobra.NoArgs,
		RunE: a.runUserAdd,
	}
	add.Flags().String("name", "", "display name (required)")
	add.Flags().String("email", "", "login email (required)")
	add.Flags().String("password", "", "password (prompted when omitted)")
	_ = add.MarkFlagRequired("name")
	_ = add.MarkFlagRequired("email")

	cmd.AddCommand(add)
	return cmd
}

func (a *app) runUserAdd(cmd *cobra.Command, _ []string) error {
	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	if password == "" {
		fmt.Fprint(a.stdout, "Password: ")
		var err error
		password, err = readPassword(a.stdin)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		fmt.Fprintln(a.stdout)
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password cannot be empty")
	}

	repo, err := a.openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	accounts := services.NewAccountService(repo, nil, nil, a.logger)
	u, err := accounts.Register(cmd.Context(), services.RegisterInput{
		Name:     name,
		Email:    email,
		Password: password,
	})
	if errors.Is(err, core.ErrConflict) {
		return fmt.Errorf("a user with email %s already exists", core.NormalizeEmail(email))
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Fprintf(a.stdout, "User %s <%s> created with ID %s\n", u.Name, u.Email, u.ID)
	return nil
}

// readPassword reads without echo from a terminal, or one line otherwise.
func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
