package mail

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("shop@example.com", "buyer@example.com", "Reset password", "code 123456")
	assert.Contains(t, msg, "From: shop@example.com\r\n")
	assert.Contains(t, msg, "To: buyer@example.com\r\n")
	assert.Contains(t, msg, "Subject: Reset password\r\n")
	assert.Contains(t, msg, "\r\n\r\ncode 123456\r\n")
}

func TestNewWithoutHostLogsOnly(t *testing.T) {
	m := New(SMTPConfig{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, ok := m.(*logMailer)
	assert.True(t, ok)
	assert.NoError(t, m.Send(context.Background(), "a@b.c", "s", "b"))

	m = New(SMTPConfig{Host: "smtp.example.com", User: "u"}, nil)
	sm, ok := m.(*smtpMailer)
	assert.True(t, ok)
	assert.Equal(t, "u", sm.from())
}
