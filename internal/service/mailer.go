package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"time"
)

// Mailer delivers the reset and verification links. The raw tokens appear
// only inside the URLs handed to it, never in storage.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, resetURL string, expiresAt time.Time) error
	SendEmailVerification(ctx context.Context, email, verifyURL string, expiresAt time.Time) error
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func (c SMTPConfig) validate() error {
	if c.Host == "" || c.Port == "" || c.Username == "" || c.Password == "" || c.From == "" {
		return errors.New("invalid smtp configuration")
	}
	return nil
}

type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &SMTPMailer{cfg: cfg}, nil
}

func (m *SMTPMailer) SendPasswordReset(_ context.Context, email, resetURL string, expiresAt time.Time) error {
	body := fmt.Sprintf("Reset your password using the link below. It expires at %s.\r\n\r\n%s",
		expiresAt.Format(time.RFC1123), resetURL)
	return m.send(email, "Reset your password", body)
}

func (m *SMTPMailer) SendEmailVerification(_ context.Context, email, verifyURL string, expiresAt time.Time) error {
	body := fmt.Sprintf("Verify your email using the link below. It expires at %s.\r\n\r\n%s",
		expiresAt.Format(time.RFC1123), verifyURL)
	return m.send(email, "Verify your email", body)
}

func (m *SMTPMailer) send(to, subject, body string) error {
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	msg := []byte(fmt.Sprintf("To: %s\r\nFrom: %s\r\nSubject: %s\r\n\r\n%s", to, m.cfg.From, subject, body))
	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// DevMailer logs the links instead of sending them; used when SMTP is not
// configured.
type DevMailer struct {
	logger *slog.Logger
}

func NewDevMailer(logger *slog.Logger) *DevMailer {
	return &DevMailer{logger: logger}
}

func (m *DevMailer) SendPasswordReset(ctx context.Context, email, resetURL string, expiresAt time.Time) error {
	m.logger.InfoContext(ctx, "password reset link issued",
		"email", email,
		"reset_url", resetURL,
		"expires_at", expiresAt,
	)
	return nil
}

func (m *DevMailer) SendEmailVerification(ctx context.Context, email, verifyURL string, expiresAt time.Time) error {
	m.logger.InfoContext(ctx, "email verification link issued",
		"email", email,
		"verify_url", verifyURL,
		"expires_at", expiresAt,
	)
	return nil
}
