// Package notification delivers user-facing messages over named channels.
// A Notification lists its channels in Via and implements the matching
// To<Channel> method for each one.
package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shashiranjanraj/brewhouse/pkg/logger"
	"github.com/shashiranjanraj/brewhouse/pkg/mail"
	"github.com/shashiranjanraj/brewhouse/pkg/workerpool"
)

const (
	ChannelMail = "mail"
	ChannelLog  = "log"
)

// MailData carries the data needed to send an email notification.
type MailData struct {
	To      string // overrides the notifiable address if set
	Subject string
	Text    string
}

// LogData is written to the application log instead of being delivered.
type LogData struct {
	Message string
	Attrs   []any
}

type Notification interface {
	Via() []string
}

type Mailable interface {
	ToMail() MailData
}

type Loggable interface {
	ToLog() LogData
}

// Dispatcher sends notifications. Notify is fire-and-forget through the
// worker pool; Send delivers synchronously.
type Dispatcher struct {
	mailer *mail.Mailer
	pool   *workerpool.Pool
}

func NewDispatcher(mailer *mail.Mailer, pool *workerpool.Pool) *Dispatcher {
	return &Dispatcher{mailer: mailer, pool: pool}
}

// Notify queues n for delivery to address and returns at once. The error
// only reports that the pool refused the job.
func (d *Dispatcher) Notify(address string, n Notification) error {
	return d.pool.Submit(func(ctx context.Context) error {
		return d.Send(ctx, address, n)
	})
}

// Send delivers n through every channel it asks for. The mail channel falls
// back to the log channel when no SMTP host is configured.
func (d *Dispatcher) Send(ctx context.Context, address string, n Notification) error {
	var errs []error
	for _, channel := range n.Via() {
		if err := d.dispatch(ctx, address, channel, n); err != nil {
			errs = append(errs, fmt.Errorf("notification: %s: %w", channel, err))
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) dispatch(ctx context.Context, address, channel string, n Notification) error {
	switch channel {
	case ChannelMail:
		m, ok := n.(Mailable)
		if !ok {
			return fmt.Errorf("%T does not implement Mailable", n)
		}
		if !d.mailer.Enabled() {
			if l, ok := n.(Loggable); ok {
				writeLog(ctx, l.ToLog())
				return nil
			}
			return mail.ErrNotConfigured
		}
		data := m.ToMail()
		to := data.To
		if to == "" {
			to = address
		}
		return d.mailer.To(to).Subject(data.Subject).Text(data.Text).Send(ctx)

	case ChannelLog:
		l, ok := n.(Loggable)
		if !ok {
			return fmt.Errorf("%T does not implement Loggable", n)
		}
		writeLog(ctx, l.ToLog())
		return nil

	default:
		return fmt.Errorf("unknown channel %q", channel)
	}
}

func writeLog(ctx context.Context, data LogData) {
	logger.WithCtx(ctx).Log(ctx, slog.LevelInfo, data.Message, data.Attrs...)
}

// OTP carries a freshly issued email verification code.
type OTP struct {
	Username string
	Code     string
}

func (OTP) Via() []string { return []string{ChannelMail} }

func (n OTP) ToMail() MailData {
	return MailData{
		Subject: "Verify your brewhouse account",
		Text:    fmt.Sprintf("Hi %s,\n\nYour verification code is %s.\n", n.Username, n.Code),
	}
}

// ToLog is used when mail is not configured, so local setups can still
// finish verification.
func (n OTP) ToLog() LogData {
	return LogData{Message: "notification: verification code issued", Attrs: []any{"username", n.Username, "otp", n.Code}}
}
