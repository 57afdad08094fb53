package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"financetracker/internal/auth"
	"financetracker/internal/core"
	"financetracker/internal/log"
)

// notifyTimeout bounds the background welcome notification.
const notifyTimeout = 30 * time.Second

// ErrInvalidCredentials is returned by Login for an unknown email and for a
// wrong password alike.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", core.ErrUnauthenticated)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AccountService registers users and checks their credentials.
type AccountService struct {
	users     UserStore
	publisher EventPublisher
	welcome   WelcomeSender
	logger    *log.Logger

	wg sync.WaitGroup
}

// NewAccountService wires the account flows. publisher and welcome may be
// nil: without a publisher the welcome mail is sent directly, without
// either no notification happens.
func NewAccountService(users UserStore, publisher EventPublisher, welcome WelcomeSender, logger *log.Logger) *AccountService {
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentAuth})
	}
	return &AccountService{users: users, publisher: publisher, welcome: welcome, logger: logger}
}

// Register creates the account and starts the welcome notification in the
// background. A taken email yields core.ErrConflict.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (core.User, error) {
	name := strings.TrimSpace(in.Name)
	email := core.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return core.User{}, core.NewValidationError("Missing required fields")
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return core.User{}, core.NewValidationError("Password too long")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := core.User{Name: name, Email: email, PasswordHash: hash}
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}

	u, err = s.users.CreateUser(ctx, u)
	if err != nil {
		return core.User{}, err
	}

	s.logger.InfoContext(ctx, "User registered", log.FieldUserID, u.ID, log.FieldOperation, log.OpRegister)
	s.notifyRegistered(ctx, u)
	return u, nil
}

// Login returns the user owning email when password matches.
func (s *AccountService) Login(ctx context.Context, email, password string) (core.User, error) {
	email = core.NormalizeEmail(email)
	if email == "" || password == "" {
		return core.User{}, core.NewValidationError("Missing required fields")
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, core.ErrNotFound) {
		return core.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return core.User{}, fmt.Errorf("find user: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		s.logger.InfoContext(ctx, "Password mismatch", log.FieldUserID, u.ID, log.FieldOperation, log.OpLogin)
		return core.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Current returns the account behind a session. A session whose user no
// longer exists yields core.ErrUnauthenticated.
func (s *AccountService) Current(ctx context.Context, userID string) (core.User, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, core.ErrNotFound) {
		return core.User{}, fmt.Errorf("session user %s: %w", userID, core.ErrUnauthenticated)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// notifyRegistered is fire-and-forget: failures are logged and never reach
// the caller. It outlives the request context.
func (s *AccountService) notifyRegistered(ctx context.Context, u core.User) {
	if s.publisher == nil && s.welcome == nil {
		s.logger.DebugContext(ctx, "No notifier configured, skipping welcome", log.FieldUserID, u.ID)
		return
	}

	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		var err error
		if s.publisher != nil {
			err = s.publisher.PublishUserRegistered(bg, u)
		} else {
			err = s.welcome.SendWelcome(bg, u.Name, u.Email)
		}
		if err != nil {
			s.logger.WarnContext(bg, "Welcome notification failed",
				log.FieldUserID, u.ID,
				log.FieldOperation, log.OpNotify,
				log.FieldError, err)
		}
	}()
}

// Wait blocks until background notifications have finished.
func (s *AccountService) Wait() {
	s.wg.Wait()
}
