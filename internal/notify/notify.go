// Package notify sends transactional mail: receipts, invoices and rejections.
package notify

import (
	"context"
	"fmt"

	"github.com/IICPAS/IICPAS-sub003/internal/config"
	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

const (
	ProviderSMTP     = "smtp"
	ProviderSendGrid = "sendgrid"
	ProviderConsole  = "console"
)

func NewMailer(cfg config.Email, log logger.Log) (Mailer, error) {
	switch cfg.Provider {
	case ProviderSMTP:
		if cfg.User == "" || cfg.Password == "" {
			return nil, fmt.Errorf("smtp mailer needs EMAIL_USER and EMAIL_PASS")
		}
		return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.User, cfg.Password, cfg.FromName), nil
	case ProviderSendGrid:
		if cfg.SendGridKey == "" {
			return nil, fmt.Errorf("sendgrid mailer needs SENDGRID_API_KEY")
		}
		return NewSendGridMailer(cfg.SendGridKey, cfg.FromName, cfg.User), nil
	case ProviderConsole, "":
		return NewConsoleMailer(log), nil
	}
	return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
}

type ConsoleMailer struct {
	log logger.Log
}

func NewConsoleMailer(log logger.Log) *ConsoleMailer {
	return &ConsoleMailer{log: log}
}

func (m *ConsoleMailer) Send(_ context.Context, msg Message) error {
	m.log.Info("email", "to", msg.To, "subject", msg.Subject)
	return nil
}
