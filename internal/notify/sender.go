package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"
)

// Sender delivers a notification to a set of recipients.
type Sender interface {
	Send(ctx context.Context, recipients []string, subject, body string) error
}

// SMTPConfig holds mail relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// EmailSender delivers plain-text mail over SMTP.
type EmailSender struct {
	cfg SMTPConfig
}

func NewEmailSender(cfg SMTPConfig) *EmailSender {
	return &EmailSender{cfg: cfg}
}

func (s *EmailSender) Send(_ context.Context, recipients []string, subject, body string) error {
	if s.cfg.Host == "" {
		return fmt.Errorf("smtp host is not configured")
	}

	msg := strings.Join([]string{
		"From: " + s.cfg.From,
		"To: " + strings.Join(recipients, ", "),
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, s.cfg.From, recipients, []byte(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// SMSSender is the delivery boundary for text messages. The provider
// integration lives outside this system; this implementation records the
// outbound message in the log.
type SMSSender struct {
	From   string
	Logger *logrus.Logger
}

func NewSMSSender(from string, logger *logrus.Logger) *SMSSender {
	if logger == nil {
		logger = logrus.New()
	}
	return &SMSSender{
		From:   from,
		Logger: logger,
	}
}

func (s *SMSSender) Send(_ context.Context, recipients []string, _, body string) error {
	for _, to := range recipients {
		s.Logger.WithFields(logrus.Fields{
			"from": s.From,
			"to":   to,
		}).Infof("sms: %s", body)
	}
	return nil
}
