// Package mailer provides best-effort SMTP delivery for outreach messages.
package mailer

import (
	"github.com/rotisserie/eris"
	"gopkg.in/gomail.v2"
)

// Message is a single plain-text outreach email.
type Message struct {
	FromName string
	From     string
	To       string
	Subject  string
	Text     string
}

// Sender delivers a single message. Implementations are best-effort: the
// caller treats a failure as "this lead's send failed", nothing more.
type Sender interface {
	Send(msg Message) error
}

// SMTPSender sends mail through an SMTP relay via gomail.
type SMTPSender struct {
	dialer *gomail.Dialer
}

// NewSMTP creates an SMTPSender for the given relay.
func NewSMTP(host string, port int, user, password string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, user, password),
	}
}

// Send delivers the message, dialing a fresh connection per call. Sends are
// infrequent enough that connection reuse is not worth the bookkeeping.
func (s *SMTPSender) Send(msg Message) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", msg.From, msg.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)

	if err := s.dialer.DialAndSend(m); err != nil {
		return eris.Wrapf(err, "mailer: send to %s", msg.To)
	}
	return nil
}
