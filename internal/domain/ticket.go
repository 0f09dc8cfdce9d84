package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// MessageDirection indicates which side of the conversation sent a message.
type MessageDirection string

const (
	DirectionInbound  MessageDirection = "in"
	DirectionOutbound MessageDirection = "out"
)

// Sentinel errors surfaced by the ticket store.
var (
	ErrTicketNotFound = errors.New("ticket not found")
	ErrNumberTaken    = errors.New("ticket already exists for number")
)

// Message is a single conversation turn in a ticket thread.
type Message struct {
	ID        string
	TicketID  string
	Direction MessageDirection
	Content   string
	CreatedAt time.Time
}

// Ticket is the aggregate for one customer's support conversation, keyed by
// phone number. Messages are append-only and kept in insertion order.
type Ticket struct {
	ID        string
	Number    string
	Open      bool
	Messages  []Message
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ShortCode returns the customer-facing reference for the ticket.
func (t *Ticket) ShortCode() string {
	return ShortCode(t.ID)
}

// shortCodeLen is fixed; customers quote the code back over SMS.
const shortCodeLen = 6

// ShortCode derives a stable 6-character reference from a ticket identifier.
// It depends on nothing but the identifier string, so it never needs to be
// stored and survives any change of identifier representation.
func ShortCode(id string) string {
	sum := sha256.Sum256([]byte(id))
	return strings.ToUpper(hex.EncodeToString(sum[:shortCodeLen/2]))
}
