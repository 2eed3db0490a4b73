package notify

import (
	"context"

	"gopkg.in/gomail.v2"
)

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	name   string
}

func NewSMTPMailer(host string, port int, username, password, fromName string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   username,
		name:   fromName,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mailer := gomail.NewMessage()
	mailer.SetAddressHeader("From", m.from, m.name)
	mailer.SetHeader("To", msg.To)
	mailer.SetHeader("Subject", msg.Subject)
	mailer.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		mailer.AddAlternative("text/html", msg.HTML)
	}
	return m.dialer.DialAndSend(mailer)
}
