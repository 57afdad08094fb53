// Package notify sends account e-mails over SMTP.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/wneessen/go-mail"

	"financetracker/internal/log"
)

const (
	welcomeSubject = "Welcome to FinanceTracker!"
	fallbackFrom   = "no-reply@example.com"
	sendTimeout    = 15 * time.Second
)

// SMTPConfig mirrors the SMTP_* settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// Secure selects implicit TLS; otherwise STARTTLS is used when offered.
	Secure bool
}

// sender is the part of *mail.Client the mailer needs.
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Mailer sends the welcome e-mail.
type Mailer struct {
	from   string
	client sender
	logger *log.Logger
}

// NewMailer builds an SMTP client from cfg. No connection is made until
// the first message is sent.
func NewMailer(cfg SMTPConfig, logger *log.Logger) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("missing SMTP host")
	}

	opts := []mail.Option{mail.WithTimeout(sendTimeout)}
	// An explicit port wins over the one implied by the TLS mode.
	if cfg.Port > 0 {
		opts = append(opts, mail.WithPort(cfg.Port))
	}
	if cfg.Secure {
		opts = append(opts, mail.WithSSLPort(false))
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create SMTP client: %w", err)
	}
	return newMailer(fromAddress(cfg), client, logger), nil
}

func newMailer(from string, client sender, logger *log.Logger) *Mailer {
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentMail})
	}
	return &Mailer{from: from, client: client, logger: logger}
}

func fromAddress(cfg SMTPConfig) string {
	switch {
	case cfg.From != "":
		return cfg.From
	case cfg.Username != "":
		return cfg.Username
	default:
		return fallbackFrom
	}
}

// SendWelcome e-mails a newly registered user.
func (m *Mailer) SendWelcome(ctx context.Context, name, email string) error {
	msg, err := m.welcomeMessage(name, email)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send welcome mail: %w", err)
	}
	m.logger.InfoContext(ctx, "Welcome mail sent", log.FieldOperation, log.OpNotify)
	return nil
}

func (m *Mailer) welcomeMessage(name, email string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.from, err)
	}
	if err := msg.To(email); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(welcomeSubject)

	text, htmlBody := welcomeBodies(name)
	msg.SetBodyString(mail.TypeTextPlain, text)
	msg.AddAlternativeString(mail.TypeTextHTML, htmlBody)
	return msg, nil
}

func welcomeBodies(name string) (text, htmlBody string) {
	text = fmt.Sprintf("Hi %s,\n\nWelcome to FinanceTracker! Your account has been created successfully.\n\n— FinanceTracker Team", name)
	htmlBody = fmt.Sprintf("<p>Hi <strong>%s</strong>,</p><p>Welcome to <strong>FinanceTracker</strong>! Your account has been created successfully.</p><p>— FinanceTracker Team</p>",
		html.EscapeString(name))
	return text, htmlBody
}
