package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/sms-support-bridge/internal/domain"
)

// memoryTicketRepository keeps tickets in a mutex-guarded map. It backs tests
// and local development without postgres; the mutex gives AppendMessage the
// same per-ticket atomicity the SQL implementation gets from its transaction.
type memoryTicketRepository struct {
	mu       sync.Mutex
	tickets  map[string]*domain.Ticket
	byNumber map[string]string
}

// NewMemoryTicketRepository returns an in-memory TicketRepository.
func NewMemoryTicketRepository() TicketRepository {
	return &memoryTicketRepository{
		tickets:  make(map[string]*domain.Ticket),
		byNumber: make(map[string]string),
	}
}

func (r *memoryTicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byNumber[ticket.Number]; exists {
		return domain.ErrNumberTaken
	}

	now := time.Now()
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	for i := range ticket.Messages {
		ticket.Messages[i].ID = uuid.NewString()
		ticket.Messages[i].TicketID = ticket.ID
		ticket.Messages[i].CreatedAt = now
	}

	stored := cloneTicket(ticket)
	r.tickets[ticket.ID] = stored
	r.byNumber[ticket.Number] = ticket.ID
	return nil
}

func (r *memoryTicketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket, ok := r.tickets[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	return cloneTicket(ticket), nil
}

func (r *memoryTicketRepository) GetByNumber(_ context.Context, number string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byNumber[number]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	return cloneTicket(r.tickets[id]), nil
}

func (r *memoryTicketRepository) AppendMessage(_ context.Context, ticketID string, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket, ok := r.tickets[ticketID]
	if !ok {
		return domain.ErrTicketNotFound
	}

	now := time.Now()
	msg.ID = uuid.NewString()
	msg.TicketID = ticketID
	msg.CreatedAt = now
	ticket.Messages = append(ticket.Messages, *msg)
	ticket.Open = true
	ticket.UpdatedAt = now
	return nil
}

func (r *memoryTicketRepository) ListOpen(_ context.Context) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.Open {
			result = append(result, *cloneTicket(ticket))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *memoryTicketRepository) SetOpen(_ context.Context, id string, open bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket, ok := r.tickets[id]
	if !ok {
		return domain.ErrTicketNotFound
	}
	ticket.Open = open
	ticket.UpdatedAt = time.Now()
	return nil
}

func cloneTicket(ticket *domain.Ticket) *domain.Ticket {
	clone := *ticket
	clone.Messages = append([]domain.Message(nil), ticket.Messages...)
	return &clone
}
