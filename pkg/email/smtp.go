package email

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"
)

type smtpSender struct {
	dialer *gomail.Dialer
	config Config
}

// NewSMTPSender creates a sender that delivers through an SMTP relay.
func NewSMTPSender(cfg Config) (EmailSender, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("%w: SMTPHost is required", ErrInvalidConfig)
	}
	if cfg.SMTPPort <= 0 {
		return nil, fmt.Errorf("%w: SMTPPort must be positive", ErrInvalidConfig)
	}
	if err := validateIdentity(cfg); err != nil {
		return nil, err
	}

	return &smtpSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		config: cfg,
	}, nil
}

// SendEmail dials the relay per message. gomail has no context support,
// so cancellation is only honored before dialing.
func (s *smtpSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.config.SenderEmail)
	msg.SetHeader("To", params.SendTo)
	if s.config.SupportEmail != "" {
		msg.SetHeader("Reply-To", s.config.SupportEmail)
	}
	msg.SetHeader("Subject", params.Subject)
	if params.Tag != "" {
		msg.SetHeader("X-Tag", params.Tag)
	}
	msg.SetBody("text/html", params.BodyHTML)

	if err := s.dialer.DialAndSend(msg); err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	return nil
}
