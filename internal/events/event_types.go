package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated   EventType = "ticket_created"
	EventInboundReceived EventType = "inbound_received"
	EventReplySent       EventType = "reply_sent"
)

// Event represents a domain event emitted by the ticket service.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload carries what the confirmation SMS needs.
type TicketCreatedPayload struct {
	Number    string `json:"number"`
	ShortCode string `json:"short_code"`
}

// InboundReceivedPayload describes an inbound message appended to an
// existing ticket. No notification is sent for these.
type InboundReceivedPayload struct {
	Number      string `json:"number"`
	BodyPreview string `json:"body_preview"`
}

// ReplySentPayload carries what the reply SMS needs.
type ReplySentPayload struct {
	Number string `json:"number"`
	Body   string `json:"body"`
}
