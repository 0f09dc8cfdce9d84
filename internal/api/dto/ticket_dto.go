package dto

import (
	"time"

	"github.com/spec-kit/sms-support-bridge/internal/domain"
)

// InboundWebhookRequest is the provider's inbound message event. MessageBird
// posts it form-encoded; the JSON tags cover replayed test traffic.
type InboundWebhookRequest struct {
	MessageID  string `json:"id" form:"id"`
	Originator string `json:"originator" form:"originator"`
	Payload    string `json:"payload" form:"payload"`
}

// ReplyRequest is the admin reply submission.
type ReplyRequest struct {
	ID      string `json:"id" form:"id"`
	Content string `json:"content" form:"content"`
}

// MessageView is one conversation turn.
type MessageView struct {
	Direction domain.MessageDirection `json:"direction"`
	Content   string                  `json:"content"`
	CreatedAt time.Time               `json:"created_at"`
}

// TicketView annotates a ticket with its derived short code for display.
type TicketView struct {
	ID        string        `json:"id"`
	ShortCode string        `json:"short_code"`
	Number    string        `json:"number"`
	Open      bool          `json:"open"`
	Messages  []MessageView `json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewTicketView maps a domain ticket into its display form.
func NewTicketView(ticket *domain.Ticket) TicketView {
	messages := make([]MessageView, 0, len(ticket.Messages))
	for _, msg := range ticket.Messages {
		messages = append(messages, MessageView{
			Direction: msg.Direction,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}
	return TicketView{
		ID:        ticket.ID,
		ShortCode: ticket.ShortCode(),
		Number:    ticket.Number,
		Open:      ticket.Open,
		Messages:  messages,
		CreatedAt: ticket.CreatedAt,
		UpdatedAt: ticket.UpdatedAt,
	}
}
