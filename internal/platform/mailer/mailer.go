// Copyright (c) 2026 Bazario. All rights reserved.
// Author: duc.phamminh.dev@gmail.com

/*
Package mailer provides outbound transactional email delivery.

It defines a small driver interface with three implementations:

  - log: writes the message to the structured log (development default).
  - smtp: plain SMTP relay with optional authentication.
  - mailgun: Mailgun HTTP API for production delivery.

The driver is selected by configuration at startup; callers depend only on
the [Mailer] interface and never see transport details.
*/
package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phamminhduc/bazario/internal/platform/config"
)

// Message is a fully-rendered transactional email.
type Message struct {
	To      string
	Subject string
	Text    string
}

// Mailer delivers a single message. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(ctx context.Context, message Message) error
}

// New selects and builds the configured mail driver.
func New(cfg *config.Config, logger *slog.Logger) (Mailer, error) {
	switch cfg.MailerDriver {
	case "mailgun":
		return newMailgunMailer(cfg), nil
	case "smtp":
		return newSMTPMailer(cfg), nil
	case "log":
		return &logMailer{logger: logger}, nil
	default:
		return nil, fmt.Errorf("mailer: unknown driver %q", cfg.MailerDriver)
	}
}

// logMailer writes messages to the log instead of delivering them.
// Used in development and tests so no real email ever leaves the machine.
type logMailer struct {
	logger *slog.Logger
}

func (m *logMailer) Send(ctx context.Context, message Message) error {
	m.logger.InfoContext(ctx, "mail_logged_instead_of_sent",
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
		slog.String("text", message.Text),
	)
	return nil
}
