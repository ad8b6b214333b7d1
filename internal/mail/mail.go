// Package mail dispatches the outbound relay email. Each send authenticates
// with the acting user's own mailbox credentials; the gateway holds no mail
// account of its own. One attempt per request, no retries.
package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Message is one outbound email. From doubles as the SMTP username;
// AppPassword is the per-user application password stored on the record.
type Message struct {
	From        string
	AppPassword string
	To          string
	Subject     string
	Body        string
}

// Sender dispatches a single message.
type Sender interface {
	Send(msg Message) error
}

// Func adapts a function to the Sender interface.
type Func func(msg Message) error

// Send calls f.
func (f Func) Send(msg Message) error { return f(msg) }

// SMTPSender sends through a fixed SMTP endpoint with per-message
// credentials.
type SMTPSender struct {
	host string
	port int
}

// NewSMTPSender constructs an SMTPSender.
func NewSMTPSender(host string, port int) *SMTPSender {
	return &SMTPSender{host: host, port: port}
}

// Send dials, authenticates as msg.From, and delivers the message.
func (s *SMTPSender) Send(msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	dialer := gomail.NewDialer(s.host, s.port, msg.From, msg.AppPassword)
	if errSend := dialer.DialAndSend(m); errSend != nil {
		return fmt.Errorf("mail: send via %s:%d: %w", s.host, s.port, errSend)
	}
	return nil
}
