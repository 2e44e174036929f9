package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/luciaherrero/famcenter-backend/pkg/config"
)

// Message is one outbound transactional email.
type Message struct {
	ToEmail  string
	Subject  string
	PlainTxt string
	HTML     string
}

// Sender exposes the delivery surface consumed by services.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Client delivers email through SendGrid.
type Client struct {
	api  *sendgrid.Client
	from *mail.Email
}

// New builds a SendGrid-backed mailer from configuration.
func New(cfg config.SendgridConfig) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("sendgrid api key is required")
	}
	from := strings.TrimSpace(cfg.DefaultFrom)
	if from == "" {
		return nil, errors.New("sendgrid from email is required")
	}
	return &Client{
		api:  sendgrid.NewSendClient(apiKey),
		from: mail.NewEmail("FamCenter", from),
	}, nil
}

// Send delivers one message. SendGrid acks with 2xx; anything else is a
// provider fault the caller maps to its own error taxonomy.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if c == nil || c.api == nil {
		return errors.New("mailer not initialized")
	}
	if msg.ToEmail == "" {
		return errors.New("recipient email is required")
	}

	email := mail.NewSingleEmail(c.from, msg.Subject, mail.NewEmail("", msg.ToEmail), msg.PlainTxt, msg.HTML)
	resp, err := c.api.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("sendgrid send: unexpected status %d", resp.StatusCode)
	}
	return nil
}
