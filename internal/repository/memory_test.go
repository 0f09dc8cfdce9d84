package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/spec-kit/sms-support-bridge/internal/domain"
)

func newTicket(number string) *domain.Ticket {
	return &domain.Ticket{
		Number: number,
		Open:   true,
		Messages: []domain.Message{
			{Direction: domain.DirectionInbound, Content: "Hello"},
		},
	}
}

func TestMemoryCreateAndLookup(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()

	ticket := newTicket("+15551234567")
	if err := repo.Create(ctx, ticket); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if ticket.ID == "" {
		t.Fatal("Create did not assign an id")
	}
	if ticket.Messages[0].TicketID != ticket.ID {
		t.Error("initial message not linked to ticket")
	}

	byNumber, err := repo.GetByNumber(ctx, "+15551234567")
	if err != nil {
		t.Fatalf("GetByNumber failed: %v", err)
	}
	if byNumber.ID != ticket.ID {
		t.Errorf("GetByNumber returned ticket %s, want %s", byNumber.ID, ticket.ID)
	}

	byID, err := repo.GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(byID.Messages) != 1 {
		t.Errorf("expected 1 message, got %d", len(byID.Messages))
	}
}

func TestMemoryCreateDuplicateNumber(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, newTicket("+15551234567")); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	err := repo.Create(ctx, newTicket("+15551234567"))
	if !errors.Is(err, domain.ErrNumberTaken) {
		t.Errorf("expected ErrNumberTaken, got %v", err)
	}
}

func TestMemoryLookupMissing(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()

	if _, err := repo.GetByNumber(ctx, "+10000000000"); !errors.Is(err, domain.ErrTicketNotFound) {
		t.Errorf("GetByNumber: expected ErrTicketNotFound, got %v", err)
	}
	if _, err := repo.GetByID(ctx, "nope"); !errors.Is(err, domain.ErrTicketNotFound) {
		t.Errorf("GetByID: expected ErrTicketNotFound, got %v", err)
	}
	err := repo.AppendMessage(ctx, "nope", &domain.Message{Direction: domain.DirectionInbound, Content: "x"})
	if !errors.Is(err, domain.ErrTicketNotFound) {
		t.Errorf("AppendMessage: expected ErrTicketNotFound, got %v", err)
	}
}

func TestMemoryAppendReopensAndPreservesOrder(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()

	ticket := newTicket("+15551234567")
	if err := repo.Create(ctx, ticket); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.SetOpen(ctx, ticket.ID, false); err != nil {
		t.Fatalf("SetOpen failed: %v", err)
	}

	// Interleave inbound and outbound turns and verify the reload keeps
	// the exact application order.
	turns := []domain.MessageDirection{
		domain.DirectionInbound,
		domain.DirectionOutbound,
		domain.DirectionInbound,
		domain.DirectionInbound,
		domain.DirectionOutbound,
	}
	for i, dir := range turns {
		msg := &domain.Message{Direction: dir, Content: fmt.Sprintf("turn %d", i)}
		if err := repo.AppendMessage(ctx, ticket.ID, msg); err != nil {
			t.Fatalf("AppendMessage %d failed: %v", i, err)
		}
	}

	reloaded, err := repo.GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !reloaded.Open {
		t.Error("append did not reopen the ticket")
	}
	if got := len(reloaded.Messages); got != len(turns)+1 {
		t.Fatalf("expected %d messages, got %d", len(turns)+1, got)
	}
	for i, dir := range turns {
		msg := reloaded.Messages[i+1]
		if msg.Direction != dir || msg.Content != fmt.Sprintf("turn %d", i) {
			t.Errorf("message %d out of order: %+v", i+1, msg)
		}
	}
}

func TestMemoryListOpen(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()

	first := newTicket("+15551111111")
	second := newTicket("+15552222222")
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.SetOpen(ctx, second.ID, false); err != nil {
		t.Fatalf("SetOpen failed: %v", err)
	}

	open, err := repo.ListOpen(ctx)
	if err != nil {
		t.Fatalf("ListOpen failed: %v", err)
	}
	if len(open) != 1 || open[0].ID != first.ID {
		t.Errorf("ListOpen = %+v, want only ticket %s", open, first.ID)
	}
}

func TestMemorySetOpenLeavesMessagesAlone(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()

	ticket := newTicket("+15551234567")
	if err := repo.Create(ctx, ticket); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.SetOpen(ctx, ticket.ID, false); err != nil {
		t.Fatalf("SetOpen failed: %v", err)
	}

	reloaded, err := repo.GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if reloaded.Open {
		t.Error("ticket still open after SetOpen(false)")
	}
	if len(reloaded.Messages) != 1 {
		t.Errorf("SetOpen touched messages: %d", len(reloaded.Messages))
	}
}
