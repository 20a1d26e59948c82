package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/brewhouse/config"
	"github.com/shashiranjanraj/brewhouse/pkg/mail"
	"github.com/shashiranjanraj/brewhouse/pkg/workerpool"
)

type mailOnly struct{}

func (mailOnly) Via() []string    { return []string{ChannelMail} }
func (mailOnly) ToMail() MailData { return MailData{Subject: "s", Text: "t"} }

type unknownChannel struct{}

func (unknownChannel) Via() []string { return []string{"pigeon"} }

func newDispatcher(t *testing.T) *Dispatcher {
	pool := workerpool.New("notify", 1)
	t.Cleanup(pool.Shutdown)
	return NewDispatcher(mail.New(config.Config{}), pool)
}

func TestOTPFallsBackToLogWithoutMail(t *testing.T) {
	d := newDispatcher(t)
	assert.NoError(t, d.Send(context.Background(), "a@example.com", OTP{Username: "ann", Code: "123456"}))
}

func TestMailWithoutFallbackFails(t *testing.T) {
	d := newDispatcher(t)
	err := d.Send(context.Background(), "a@example.com", mailOnly{})
	assert.ErrorIs(t, err, mail.ErrNotConfigured)
}

func TestUnknownChannel(t *testing.T) {
	d := newDispatcher(t)
	err := d.Send(context.Background(), "a@example.com", unknownChannel{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pigeon")
}

func TestNotifyRefusedAfterShutdown(t *testing.T) {
	pool := workerpool.New("notify", 1)
	pool.Shutdown()
	d := NewDispatcher(mail.New(config.Config{}), pool)

	assert.ErrorIs(t, d.Notify("a@example.com", OTP{}), workerpool.ErrPoolClosed)
}

func TestOTPMailBody(t *testing.T) {
	data := OTP{Username: "ann", Code: "654321"}.ToMail()
	assert.Contains(t, data.Text, "654321")
	assert.Contains(t, data.Text, "ann")
}
