// Copyright (c) 2026 Bazario. All rights reserved.
// Author: duc.phamminh.dev@gmail.com

package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/phamminhduc/bazario/internal/platform/config"
)

// smtpMailer delivers mail through a plain SMTP relay.
type smtpMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func newSMTPMailer(cfg *config.Config) *smtpMailer {
	return &smtpMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.MailFrom,
	}
}

// Send implements [Mailer].
//
// smtp.SendMail has no context support; the call is bounded only by the
// relay's own timeouts. Acceptable for the relay deployments this driver
// targets (local postfix, mailhog in staging).
func (m *smtpMailer) Send(_ context.Context, message Message) error {
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	payload := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		m.from, message.To, message.Subject, message.Text,
	))

	addr := fmt.Sprintf("%s:%s", m.host, m.port)
	if err := smtp.SendMail(addr, auth, m.from, []string{message.To}, payload); err != nil {
		return fmt.Errorf("mailer: smtp send failed: %w", err)
	}

	return nil
}
