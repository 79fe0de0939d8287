package adapter

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/tournament-scout/internal/config"
)

// EmailSender delivers plain-text notification mail over SMTP. Callers wrap
// sends in a best-effort so a broken mail relay never fails a batch.
type EmailSender struct {
	host     string
	port     int
	user     string
	password string
	from     string
}

// NewEmailSender creates an SMTP sender from config. Returns nil when no host
// is configured, which callers treat as notifications disabled.
func NewEmailSender(cfg *config.SMTPConfig) *EmailSender {
	if cfg.Host == "" {
		return nil
	}
	return &EmailSender{
		host:     cfg.Host,
		port:     cfg.Port,
		user:     cfg.User,
		password: cfg.Password,
		from:     cfg.From,
	}
}

// Send delivers a single plain-text message.
func (s *EmailSender) Send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.password, s.host)
	}

	msg := strings.Join([]string{
		"From: " + s.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	return nil
}
