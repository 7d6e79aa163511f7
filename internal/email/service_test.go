package email

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/go-accounts-api/internal/config"
)

type sentMail struct {
	addr string
	auth smtp.Auth
	from string
	to   []string
	msg  string
}

func newTestService(cfg config.EmailConfig) (*Service, *[]sentMail) {
	var sent []sentMail
	s := NewService(cfg, "http://localhost:3000/")
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, sentMail{addr: addr, auth: a, from: from, to: to, msg: string(msg)})
		return nil
	}
	return s, &sent
}

func TestVerificationLink(t *testing.T) {
	s, _ := newTestService(config.EmailConfig{})
	assert.Equal(t, "http://localhost:3000/api/users/verify/abc_DEF-123", s.VerificationLink("abc_DEF-123"))
}

func TestSendVerificationEmail(t *testing.T) {
	s, sent := newTestService(config.EmailConfig{
		SMTPHost:     "smtp.example.com",
		SMTPPort:     "587",
		SMTPUser:     "mailer@example.com",
		SMTPPassword: "secret",
		ProductName:  "Accounts",
	})

	err := s.SendVerificationEmail(context.Background(), "tok123", "alice@example.com", "Alice")
	require.NoError(t, err)
	require.Len(t, *sent, 1)

	mail := (*sent)[0]
	assert.Equal(t, "smtp.example.com:587", mail.addr)
	assert.NotNil(t, mail.auth)
	assert.Equal(t, "mailer@example.com", mail.from)
	assert.Equal(t, []string{"alice@example.com"}, mail.to)
	assert.Contains(t, mail.msg, "Subject: Verify your email for Accounts")
	assert.Contains(t, mail.msg, "http://localhost:3000/api/users/verify/tok123")
	assert.Contains(t, mail.msg, "Hi Alice,")
	assert.Contains(t, mail.msg, "Confirm your account")
	assert.Contains(t, mail.msg, "Welcome to Accounts!")
}

func TestSendVerificationEmailEscapesName(t *testing.T) {
	s, sent := newTestService(config.EmailConfig{SMTPHost: "localhost", SMTPPort: "1025", From: "noreply@example.com"})

	require.NoError(t, s.SendVerificationEmail(context.Background(), "tok", "bob@example.com", "<script>"))
	require.Len(t, *sent, 1)

	mail := (*sent)[0]
	assert.Nil(t, mail.auth)
	assert.Equal(t, "noreply@example.com", mail.from)
	assert.NotContains(t, mail.msg, "<script>")
	assert.Contains(t, mail.msg, "&lt;script&gt;")
}

func TestSendVerificationEmailWithoutSMTP(t *testing.T) {
	s, sent := newTestService(config.EmailConfig{})

	require.NoError(t, s.SendVerificationEmail(context.Background(), "tok", "bob@example.com", ""))
	assert.Empty(t, *sent)
}

func TestSendVerificationEmailFailure(t *testing.T) {
	s, _ := newTestService(config.EmailConfig{SMTPHost: "localhost", SMTPPort: "25"})
	s.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	err := s.SendVerificationEmail(context.Background(), "tok", "bob@example.com", "Bob")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
