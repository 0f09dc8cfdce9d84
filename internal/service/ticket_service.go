package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/sms-support-bridge/internal/domain"
	"github.com/spec-kit/sms-support-bridge/internal/events"
	"github.com/spec-kit/sms-support-bridge/internal/repository"
)

// TicketService coordinates ticket threading: it correlates inbound messages
// to tickets by phone number, appends conversation turns, and manages the
// open flag. It holds no state of its own and is safe for concurrent use.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
}

// InboundOutcome reports how an inbound message was applied.
type InboundOutcome struct {
	TicketID  string
	ShortCode string
	Number    string
	Created   bool
}

// ReplyOutcome reports a successfully appended outbound reply. Number is the
// recipient for the notification that follows.
type ReplyOutcome struct {
	TicketID  string
	ShortCode string
	Number    string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
	}
}

// HandleInbound applies an inbound message from a customer. The lookup by
// number is unconditional: a closed ticket for the number is matched and
// reopened rather than a second ticket being created. Only the very first
// message from a number creates a ticket.
func (s *TicketService) HandleInbound(ctx context.Context, number, text string) (*InboundOutcome, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, fmt.Errorf("number is required")
	}

	ticket, err := s.tickets.GetByNumber(ctx, number)
	if errors.Is(err, domain.ErrTicketNotFound) {
		outcome, createErr := s.createTicket(ctx, number, text)
		if !errors.Is(createErr, domain.ErrNumberTaken) {
			return outcome, createErr
		}
		// Lost the creation race to a concurrent inbound; the winner's
		// ticket exists now, so fall through to the append path.
		ticket, err = s.tickets.GetByNumber(ctx, number)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup ticket by number: %w", err)
	}

	msg := &domain.Message{Direction: domain.DirectionInbound, Content: text}
	if err := s.tickets.AppendMessage(ctx, ticket.ID, msg); err != nil {
		return nil, fmt.Errorf("append inbound message: %w", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventInboundReceived,
		TicketID: ticket.ID,
		Payload: events.InboundReceivedPayload{
			Number:      number,
			BodyPreview: stringPreview(text, 120),
		},
	})

	return &InboundOutcome{
		TicketID:  ticket.ID,
		ShortCode: ticket.ShortCode(),
		Number:    number,
	}, nil
}

func (s *TicketService) createTicket(ctx context.Context, number, text string) (*InboundOutcome, error) {
	ticket := &domain.Ticket{
		Number: number,
		Open:   true,
		Messages: []domain.Message{
			{Direction: domain.DirectionInbound, Content: text},
		},
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		if errors.Is(err, domain.ErrNumberTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	shortCode := ticket.ShortCode()
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			Number:    number,
			ShortCode: shortCode,
		},
	})

	return &InboundOutcome{
		TicketID:  ticket.ID,
		ShortCode: shortCode,
		Number:    number,
		Created:   true,
	}, nil
}

// HandleOutbound appends a staff reply to an existing ticket. A reply
// reopens the ticket the same way inbound traffic does: any activity means
// the thread still needs attention. An unknown id is a strict no-op and
// surfaces domain.ErrTicketNotFound.
func (s *TicketService) HandleOutbound(ctx context.Context, ticketID, content string) (*ReplyOutcome, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("lookup ticket: %w", err)
	}

	msg := &domain.Message{Direction: domain.DirectionOutbound, Content: content}
	if err := s.tickets.AppendMessage(ctx, ticket.ID, msg); err != nil {
		return nil, fmt.Errorf("append outbound message: %w", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventReplySent,
		TicketID: ticket.ID,
		Payload: events.ReplySentPayload{
			Number: ticket.Number,
			Body:   content,
		},
	})

	return &ReplyOutcome{
		TicketID:  ticket.ID,
		ShortCode: ticket.ShortCode(),
		Number:    ticket.Number,
	}, nil
}

// ListOpenTickets returns all open tickets for display. Read-only.
func (s *TicketService) ListOpenTickets(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("list open tickets: %w", err)
	}
	return tickets, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
