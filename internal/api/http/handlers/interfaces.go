package handlers

import (
	"context"
	"time"

	"github.com/spec-kit/sms-support-bridge/internal/domain"
	"github.com/spec-kit/sms-support-bridge/internal/service"
)

// TicketOperations is the slice of the ticket service the HTTP handlers
// depend on; tests substitute doubles.
type TicketOperations interface {
	HandleInbound(ctx context.Context, number, text string) (*service.InboundOutcome, error)
	HandleOutbound(ctx context.Context, ticketID, content string) (*service.ReplyOutcome, error)
	ListOpenTickets(ctx context.Context) ([]domain.Ticket, error)
}

// WebhookDeduper remembers provider message ids so redelivered webhooks are
// dropped. It reports whether the id was already seen.
type WebhookDeduper interface {
	MarkWebhookSeen(ctx context.Context, messageID string, ttl time.Duration) (bool, error)
}
