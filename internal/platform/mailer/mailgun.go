// Copyright (c) 2026 Bazario. All rights reserved.
// Author: duc.phamminh.dev@gmail.com

package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/phamminhduc/bazario/internal/platform/config"
)

// sendTimeout bounds a single Mailgun API call.
const sendTimeout = 30 * time.Second

// mailgunMailer delivers mail through the Mailgun HTTP API.
type mailgunMailer struct {
	client *mailgun.MailgunImpl
	from   string
}

func newMailgunMailer(cfg *config.Config) *mailgunMailer {
	return &mailgunMailer{
		client: mailgun.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey),
		from:   cfg.MailFrom,
	}
}

// Send implements [Mailer].
func (m *mailgunMailer) Send(ctx context.Context, message Message) error {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	mgMessage := m.client.NewMessage(m.from, message.Subject, message.Text)
	if err := mgMessage.AddRecipient(message.To); err != nil {
		return fmt.Errorf("mailer: invalid recipient: %w", err)
	}

	_, _, err := m.client.Send(sendCtx, mgMessage)
	if err != nil {
		return fmt.Errorf("mailer: mailgun send failed: %w", err)
	}

	return nil
}
