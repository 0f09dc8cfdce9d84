package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sms-support-bridge/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
//
// AppendMessage is the only operation two writers can race on; implementations
// must make it atomic so that a concurrently appended message is never lost
// and a reader never observes a half-written thread.
type TicketRepository interface {
	// Create persists a new ticket together with its initial messages and
	// assigns its identifier. Returns domain.ErrNumberTaken when a ticket
	// for the same number already exists.
	Create(ctx context.Context, ticket *domain.Ticket) error
	// GetByID loads a ticket and its full message thread.
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// GetByNumber is the correlation lookup for inbound messages. It is
	// unconditional: open and closed tickets match alike.
	GetByNumber(ctx context.Context, number string) (*domain.Ticket, error)
	// AppendMessage atomically appends one message to the ticket's thread
	// and forces the ticket open. Returns domain.ErrTicketNotFound when the
	// ticket does not exist.
	AppendMessage(ctx context.Context, ticketID string, msg *domain.Message) error
	// ListOpen returns all open tickets with their threads, oldest first.
	ListOpen(ctx context.Context) ([]domain.Ticket, error)
	// SetOpen flips the lifecycle flag without touching messages.
	SetOpen(ctx context.Context, id string, open bool) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the postgres-backed repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create ticket: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// The unique index on number arbitrates concurrent creations: exactly
	// one insert wins, the loser sees no row and retries as an append.
	const insertTicket = `
        INSERT INTO tickets (number, open)
        VALUES ($1, $2)
        ON CONFLICT (number) DO NOTHING
        RETURNING id, created_at, updated_at`
	err = tx.QueryRow(ctx, insertTicket, ticket.Number, ticket.Open).
		Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNumberTaken
	}
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}

	for i := range ticket.Messages {
		msg := &ticket.Messages[i]
		msg.TicketID = ticket.ID
		if err := insertMessage(ctx, tx, msg); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *ticketRepository) AppendMessage(ctx context.Context, ticketID string, msg *domain.Message) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin append message: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// The update locks the ticket row, serializing concurrent appends; it
	// also forces the ticket open, which every inbound or outbound message
	// does regardless of prior state.
	const reopen = `UPDATE tickets SET open = TRUE, updated_at = NOW() WHERE id = $1`
	cmd, err := tx.Exec(ctx, reopen, ticketID)
	if err != nil {
		return fmt.Errorf("reopen ticket: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}

	msg.TicketID = ticketID
	if err := insertMessage(ctx, tx, msg); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func insertMessage(ctx context.Context, tx pgx.Tx, msg *domain.Message) error {
	const query = `
        INSERT INTO ticket_messages (ticket_id, direction, body)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`
	if err := tx.QueryRow(ctx, query, msg.TicketID, msg.Direction, msg.Content).
		Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, number, open, created_at, updated_at
        FROM tickets WHERE id = $1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	const query = `
        SELECT id, number, open, created_at, updated_at
        FROM tickets WHERE number = $1`
	return r.fetchSingle(ctx, query, number)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&ticket.ID,
		&ticket.Number,
		&ticket.Open,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select ticket: %w", err)
	}

	messages, err := r.listMessages(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	ticket.Messages = messages
	return &ticket, nil
}

func (r *ticketRepository) ListOpen(ctx context.Context) ([]domain.Ticket, error) {
	const query = `
        SELECT id, number, open, created_at, updated_at
        FROM tickets WHERE open = TRUE ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list open tickets: %w", err)
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Number,
			&ticket.Open,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		messages, err := r.listMessages(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Messages = messages
	}
	return result, nil
}

func (r *ticketRepository) SetOpen(ctx context.Context, id string, open bool) error {
	const query = `UPDATE tickets SET open = $1, updated_at = NOW() WHERE id = $2`
	cmd, err := r.pool.Exec(ctx, query, open, id)
	if err != nil {
		return fmt.Errorf("set ticket open flag: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

func (r *ticketRepository) listMessages(ctx context.Context, ticketID string) ([]domain.Message, error) {
	const query = `
        SELECT id, ticket_id, direction, body, created_at
        FROM ticket_messages WHERE ticket_id = $1 ORDER BY seq ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.TicketID,
			&msg.Direction,
			&msg.Content,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
