package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSMTPMailer(t *testing.T) {
	_, err := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 587})
	assert.Error(t, err, "sender is required")

	_, err = NewSMTPMailer(SMTPConfig{Port: 587, From: "league@example.com"})
	assert.Error(t, err, "host is required")

	m, err := NewSMTPMailer(SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "league",
		Password: "secret",
		From:     "league@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "league@example.com", m.from)
}

func TestSMTPMailerRejectsBadRecipientBeforeDialing(t *testing.T) {
	m, err := NewSMTPMailer(SMTPConfig{Host: "smtp.invalid", Port: 25, From: "league@example.com"})
	require.NoError(t, err)

	err = m.Send(context.Background(), Message{To: "not an address", Subject: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid recipient")
}

func TestLogMailer(t *testing.T) {
	assert.NoError(t, LogMailer{}.Send(context.Background(), Message{To: "a@example.com", Subject: "s", HTML: "<p>x</p>"}))
}
