package notifier

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/roomstead/roomstead/internal/config"
	"github.com/roomstead/roomstead/internal/observability/tracing"
)

// MailClient wraps the resend API. When mail is disabled in config it is
// constructed in a no-op mode and every send returns ErrMailDisabled.
type MailClient struct {
	client      *resend.Client
	enabled     bool
	fromAddress string
	replyTo     string
}

var ErrMailDisabled = errors.New("mail_disabled")

func NewMailClient(cfg *config.Config) *MailClient {
	if !cfg.Mail.Enabled || cfg.Mail.APIKey == "" {
		return &MailClient{enabled: false}
	}
	httpClient := tracing.WrapHTTPClient(&http.Client{Timeout: 10 * time.Second})
	return &MailClient{
		client:      resend.NewCustomClient(httpClient, cfg.Mail.APIKey),
		enabled:     true,
		fromAddress: cfg.Mail.FromAddress,
		replyTo:     cfg.Mail.ReplyTo,
	}
}

// Enabled reports whether sends will reach the provider.
func (c *MailClient) Enabled() bool { return c.enabled }

// Send delivers a single email and returns the provider message id.
func (c *MailClient) Send(ctx context.Context, to, subject, html, text string) (string, error) {
	if !c.enabled {
		return "", ErrMailDisabled
	}
	params := &resend.SendEmailRequest{
		From:    c.fromAddress,
		To:      []string{to},
		Subject: subject,
		Html:    html,
		Text:    text,
	}
	if c.replyTo != "" {
		params.ReplyTo = c.replyTo
	}
	sent, err := c.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", err
	}
	return sent.Id, nil
}
