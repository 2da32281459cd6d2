// Package mailer composes outgoing replies and delivers them over SMTP.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"

	"github.com/bassamadnan/triage/backend"
)

// Config holds SMTP account settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Compose builds a plain-text message. From may be empty when the transport
// fills it in (Gmail does).
func Compose(from string, req backend.SendRequest) (*email.Email, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	e := email.NewEmail()
	e.From = from
	e.To = []string{strings.TrimSpace(req.Recipient)}
	e.Subject = req.Subject
	e.Text = []byte(req.Body)
	return e, nil
}

// Validate checks the fields every outgoing reply needs.
func Validate(req backend.SendRequest) error {
	switch {
	case strings.TrimSpace(req.Recipient) == "":
		return fmt.Errorf("recipient is required")
	case strings.TrimSpace(req.Subject) == "":
		return fmt.Errorf("subject is required")
	case strings.TrimSpace(req.Body) == "":
		return fmt.Errorf("email body is required")
	}
	return nil
}

type sendFunc func(e *email.Email, addr string, auth smtp.Auth, tlsConfig *tls.Config) error

// SMTPSender delivers replies through an SMTP relay with STARTTLS.
type SMTPSender struct {
	cfg  Config
	send sendFunc
}

// NewSMTPSender creates an SMTP sender.
func NewSMTPSender(cfg Config) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPSender{
		cfg: cfg,
		send: func(e *email.Email, addr string, auth smtp.Auth, tlsConfig *tls.Config) error {
			return e.SendWithStartTLS(addr, auth, tlsConfig)
		},
	}, nil
}

// Name identifies the transport in logs.
func (s *SMTPSender) Name() string { return "smtp" }

// Send delivers req. The SMTP library has no context support, so ctx is only
// checked before dialing.
func (s *SMTPSender) Send(ctx context.Context, req backend.SendRequest) error {
	e, err := Compose(s.cfg.From, req)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	if err := s.send(e, addr, auth, &tls.Config{ServerName: s.cfg.Host}); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
