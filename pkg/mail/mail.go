// Package mail sends SMTP mail through gomail.
//
//	mailer.To("user@example.com").
//	    Subject("Your code").
//	    Text("123456").
//	    Send(ctx)
package mail

import (
	"context"
	"errors"

	"gopkg.in/gomail.v2"

	"github.com/shashiranjanraj/brewhouse/config"
)

// ErrNotConfigured is returned by Send when MAIL_HOST is empty.
var ErrNotConfigured = errors.New("mail: MAIL_HOST not configured")

// Mailer holds the SMTP dialer and sender address.
type Mailer struct {
	from string
	send func(msgs ...*gomail.Message) error
}

// New builds a Mailer from cfg. A Mailer without a host reports
// Enabled() == false and refuses to send.
func New(cfg config.Config) *Mailer {
	m := &Mailer{from: cfg.MailFrom}
	if cfg.MailHost == "" {
		return m
	}
	d := gomail.NewDialer(cfg.MailHost, cfg.MailPort, cfg.MailUsername, cfg.MailPassword)
	m.send = d.DialAndSend
	return m
}

func (m *Mailer) Enabled() bool { return m != nil && m.send != nil }

// To starts a message to the given recipients.
func (m *Mailer) To(addresses ...string) *Message {
	return &Message{mailer: m, to: addresses, isHTML: true}
}

// Message is a fluent builder for one email.
type Message struct {
	mailer  *Mailer
	to      []string
	subject string
	body    string
	isHTML  bool
}

func (msg *Message) Subject(s string) *Message {
	msg.subject = s
	return msg
}

// Body sets an HTML body.
func (msg *Message) Body(html string) *Message {
	msg.body = html
	msg.isHTML = true
	return msg
}

// Text sets a plain-text body.
func (msg *Message) Text(text string) *Message {
	msg.body = text
	msg.isHTML = false
	return msg
}

func (msg *Message) build() *gomail.Message {
	g := gomail.NewMessage()
	g.SetHeader("From", msg.mailer.from)
	g.SetHeader("To", msg.to...)
	g.SetHeader("Subject", msg.subject)
	if msg.isHTML {
		g.SetBody("text/html", msg.body)
	} else {
		g.SetBody("text/plain", msg.body)
	}
	return g
}

// Send delivers the message. gomail has no context support, so ctx is only
// checked before dialing.
func (msg *Message) Send(ctx context.Context) error {
	if !msg.mailer.Enabled() {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return msg.mailer.send(msg.build())
}
