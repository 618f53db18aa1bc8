package auth

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/goliatone/go-errors"
)

// SMTPMailer delivers notifications over plain SMTP.
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSMTPMailer creates a mailer for the given server address ("host:port")
// and sender. Pass a nil auth for servers that accept unauthenticated relay.
func NewSMTPMailer(addr, from string, auth smtp.Auth) *SMTPMailer {
	return &SMTPMailer{
		addr: addr,
		from: from,
		auth: auth,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "context cancelled before delivery")
	}

	payload := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.from, msg.To, msg.Subject, msg.Body,
	)

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{msg.To}, []byte(payload)); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "smtp delivery failed").
			WithMetadata(map[string]any{"to": msg.To})
	}

	return nil
}

var _ Mailer = (*SMTPMailer)(nil)

// LogMailer writes outbound messages to the logger instead of a wire. Useful
// in development and as a safe default.
type LogMailer struct {
	logger Logger
}

func NewLogMailer(logger Logger) *LogMailer {
	if logger == nil {
		logger = defLogger{}
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("outbound notification", "to", msg.To, "subject", msg.Subject, "body", msg.Body)
	return nil
}

var _ Mailer = (*LogMailer)(nil)
