// Package email provides an email sending client.
//
// It uses Resend (resend-go) as the email provider and renders HTML bodies
// from templates embedded in the binary.
package email

import (
	"context"
	"fmt"

	"github.com/deppfellow/contosopizza/internal/config"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// Client wraps the Resend client and a logger.
//
// A Client without an API key is disabled: emails are rendered and logged
// but not sent.
type Client struct {
	client *resend.Client
	from   string
	logger *zerolog.Logger
}

// NewClient creates an email Client from the integration config.
func NewClient(cfg *config.Config, logger *zerolog.Logger) *Client {
	var rc *resend.Client
	if cfg.Integration.ResendAPIKey != "" {
		rc = resend.NewClient(cfg.Integration.ResendAPIKey)
	} else {
		logger.Warn().Msg("resend api key not set, outgoing email disabled")
	}
	return newClient(rc, cfg.Integration.EmailFrom, logger)
}

func newClient(rc *resend.Client, from string, logger *zerolog.Logger) *Client {
	return &Client{
		client: rc,
		from:   from,
		logger: logger,
	}
}

// Enabled reports whether emails are actually delivered.
func (c *Client) Enabled() bool {
	return c.client != nil
}

// SendEmail renders templateName with data and sends it to a single recipient.
func (c *Client) SendEmail(ctx context.Context, to, subject string, templateName Template, data any) error {
	body, err := Render(templateName, data)
	if err != nil {
		return err
	}

	if !c.Enabled() {
		c.logger.Info().
			Str("to", to).
			Str("template", string(templateName)).
			Msg("email disabled, skipping send")
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}

	sent, err := c.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	c.logger.Debug().Str("id", sent.Id).Str("template", string(templateName)).Msg("email sent")
	return nil
}
