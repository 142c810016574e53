// Package mail holds the outbound mail contract the notification jobs
// depend on. Delivery mechanics are intentionally thin; the jobs only need
// a way to hand off a rendered message.
package mail

import (
	"fmt"
	"net/smtp"

	"parkxcel/internal/logging"
)

type Mailer interface {
	Send(to, subject, body string) error
}

type SMTPMailer struct {
	addr string
	from string
}

func NewSMTP(host, port, from string) *SMTPMailer {
	return &SMTPMailer{addr: host + ":" + port, from: from}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.from, to, subject, body)
	return smtp.SendMail(m.addr, nil, m.from, []string{to}, []byte(msg))
}

// ConsoleMailer logs messages instead of delivering them; used when no
// SMTP host is configured.
type ConsoleMailer struct{}

func NewConsole() *ConsoleMailer {
	return &ConsoleMailer{}
}

func (c *ConsoleMailer) Send(to, subject, body string) error {
	logging.Logger().Info().
		Str("to", to).
		Str("subject", subject).
		Msg("mail (console delivery)")
	return nil
}
