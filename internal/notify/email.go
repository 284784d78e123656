package notify

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"
)

// Sender delivers a verification code to a student's mailbox.
type Sender interface {
	SendVerificationCode(toEmail, code string) error
}

// SMTPConfig holds the outbound mail settings.
type SMTPConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	FromEmail string
}

// EmailSender sends verification codes over SMTP.
type EmailSender struct {
	cfg SMTPConfig
}

var _ Sender = (*EmailSender)(nil)

// NewEmailSender creates an SMTP-backed sender.
func NewEmailSender(cfg SMTPConfig) *EmailSender {
	return &EmailSender{cfg: cfg}
}

// SendVerificationCode emails the code. It fails when the transport is
// unreachable or the SMTP credentials are missing; the caller decides what
// that means for the signup flow.
func (s *EmailSender) SendVerificationCode(toEmail, code string) error {
	if s.cfg.Host == "" || s.cfg.User == "" || s.cfg.FromEmail == "" {
		return fmt.Errorf("email config missing")
	}
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("empty recipient")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.FromEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Scholarship Assistant - OTP Verification")
	m.SetBody("text/plain", fmt.Sprintf("Your OTP is: %s\n\nThe code is valid for 3 minutes.", code))

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.User, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
