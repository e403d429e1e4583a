package mail

import (
	"errors"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/simasosial/simasosial-backend/pkg/config"
)

// Sender dispatches a single HTML email.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// SMTPSender delivers mail through the configured SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender builds a sender from SMTP configuration.
func NewSMTPSender(cfg config.SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.FromAddress == "" {
		return nil, errors.New("smtp from address is required")
	}
	from := cfg.FromAddress
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress)
	}
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from,
	}, nil
}

func (s *SMTPSender) Send(to, subject, htmlBody string) error {
	if to == "" {
		return errors.New("recipient is required")
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
