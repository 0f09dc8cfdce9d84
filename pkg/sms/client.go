package sms

import (
	"context"
	"fmt"

	messagebird "github.com/messagebird/go-rest-api/v9"
	mbsms "github.com/messagebird/go-rest-api/v9/sms"

	"github.com/spec-kit/sms-support-bridge/internal/config"
)

// Gateway sends a text message to a single recipient. Implementations must
// not be retried by callers; a failed send is reported and dropped.
type Gateway interface {
	Send(ctx context.Context, originator, recipient, body string) error
}

// Client provides SMS sending via MessageBird.
type Client struct {
	client  messagebird.Client
	enabled bool
}

// NewFromConfig creates a new SMS client from the application configuration.
// If SMS is disabled, returns a client that no-ops on all operations.
func NewFromConfig(cfg config.SMSConfig) (*Client, error) {
	if !cfg.Enabled {
		return &Client{enabled: false}, nil
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("MessageBird API key required when SMS enabled")
	}

	return &Client{
		client:  messagebird.New(cfg.APIKey),
		enabled: true,
	}, nil
}

// Send delivers a single SMS. If SMS is disabled, this is a no-op and
// returns nil.
func (c *Client) Send(ctx context.Context, originator, recipient, body string) error {
	if !c.enabled {
		// No-op when disabled (useful for development)
		return nil
	}

	if originator == "" {
		return fmt.Errorf("originator is required")
	}
	if recipient == "" {
		return fmt.Errorf("recipient is required")
	}
	if body == "" {
		return fmt.Errorf("message body is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := mbsms.Create(c.client, originator, []string{recipient}, body, nil); err != nil {
		return fmt.Errorf("messagebird send failed: %w", err)
	}

	return nil
}

// IsEnabled returns whether SMS sending is enabled.
func (c *Client) IsEnabled() bool {
	return c.enabled
}
