// Package mail provides an SMTP-backed implementation of the engine's
// NotificationSender contract. It renders the verification and
// password-reset messages as plain-text email with a clickable link into
// the platform frontend.
package mail

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/vipconnect/authcore"
)

var _ authcore.NotificationSender = (*Sender)(nil)

// Config holds SMTP connection and sender parameters.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	// From is the envelope sender address. Required.
	From string
	// FromName, when set, becomes the display name on the From header.
	FromName string
	// TLS enforces transport encryption: implicit TLS on port 465,
	// STARTTLS otherwise. When false the connection is plaintext, which
	// only makes sense against a local relay.
	TLS bool
	// BaseURL is the public frontend origin the emailed links point at,
	// e.g. "https://vipconnect.example". Required.
	BaseURL string
}

// Sender sends transactional auth email over SMTP.
type Sender struct {
	cfg     Config
	baseURL string
}

// NewSender validates cfg and returns a Sender.
func NewSender(cfg Config) (*Sender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp from address is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &Sender{
		cfg:     cfg,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
	}, nil
}

// SendVerificationEmail emails a single-use email verification link.
func (s *Sender) SendVerificationEmail(ctx context.Context, email, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", s.baseURL, url.QueryEscape(token))
	body := fmt.Sprintf(
		"Welcome to VIPConnect!\n\n"+
			"Please confirm your email address by opening the link below. "+
			"The link is valid for 24 hours and can be used once.\n\n%s\n\n"+
			"If you did not create this account, you can ignore this message.\n",
		link)
	return s.send(ctx, email, "Verify your email address", body)
}

// SendPasswordResetEmail emails a single-use password reset link.
func (s *Sender) SendPasswordResetEmail(ctx context.Context, email, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, url.QueryEscape(token))
	body := fmt.Sprintf(
		"A password reset was requested for your VIPConnect account.\n\n"+
			"Open the link below to choose a new password. "+
			"The link is valid for 1 hour and can be used once.\n\n%s\n\n"+
			"If you did not request this, your password is unchanged and you "+
			"can ignore this message.\n",
		link)
	return s.send(ctx, email, "Reset your password", body)
}

func (s *Sender) send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}
	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}
