package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/titanbank/backend/internal/models"
)

// TicketService owns support-ticket threads. Tickets are created with one
// seed reply from the user; admin replies arrive out-of-band.
type TicketService struct {
	db        *sql.DB
	validator *ValidationHelper
}

func NewTicketService(db *sql.DB) *TicketService {
	return &TicketService{
		db:        db,
		validator: NewValidationHelper(),
	}
}

// CreateTicketRequest is the boundary schema for createTicket.
type CreateTicketRequest struct {
	Subject string `json:"subject" validate:"required,min=3"`
	Message string `json:"message" validate:"required"`
}

// Create opens a PENDING ticket with a generated human-readable id and the
// message as its first reply.
func (s *TicketService) Create(ctx context.Context, userID int, req CreateTicketRequest) (*models.Ticket, error) {
	if err := s.validator.ValidateStruct(&req); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ticket := &models.Ticket{
		TicketID: generateTicketID(),
		UserID:   userID,
		Subject:  req.Subject,
		Status:   models.TicketPending,
	}

	err = tx.QueryRowContext(ctx,
		"INSERT INTO tickets (ticket_id, user_id, subject, status) VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at",
		ticket.TicketID, userID, req.Subject, ticket.Status).
		Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	if err != nil {
		return nil, err
	}

	var reply models.TicketReply
	reply.Author = models.ReplyAuthorUser
	reply.Message = req.Message
	err = tx.QueryRowContext(ctx,
		"INSERT INTO ticket_replies (ticket_id, author, message) VALUES ($1, $2, $3) RETURNING created_at",
		ticket.ID, reply.Author, reply.Message).Scan(&reply.CreatedAt)
	if err != nil {
		return nil, err
	}
	ticket.Replies = []models.TicketReply{reply}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Printf("[TICKET] %s opened by user %d", ticket.TicketID, userID)
	return ticket, nil
}

// List returns the caller's tickets, most recently updated first, with their
// reply threads. An empty status means no filter.
func (s *TicketService) List(ctx context.Context, userID int, status string) ([]models.Ticket, error) {
	query := "SELECT id, ticket_id, subject, status, created_at, updated_at FROM tickets WHERE user_id = $1"
	args := []any{userID}
	if status != "" {
		query += " AND status = $2"
		args = append(args, status)
	}
	query += " ORDER BY updated_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		t := models.Ticket{UserID: userID}
		if err := rows.Scan(&t.ID, &t.TicketID, &t.Subject, &t.Status,
			&t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range tickets {
		replies, err := s.replies(ctx, tickets[i].ID)
		if err != nil {
			return nil, err
		}
		tickets[i].Replies = replies
	}

	return tickets, nil
}

func (s *TicketService) replies(ctx context.Context, ticketID int) ([]models.TicketReply, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT author, message, created_at FROM ticket_replies WHERE ticket_id = $1 ORDER BY created_at",
		ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var replies []models.TicketReply
	for rows.Next() {
		var r models.TicketReply
		if err := rows.Scan(&r.Author, &r.Message, &r.CreatedAt); err != nil {
			return nil, err
		}
		replies = append(replies, r)
	}
	return replies, rows.Err()
}

func generateTicketID() string {
	return fmt.Sprintf("TICKET-%d-%d", time.Now().UnixMilli(), rand.Intn(1000))
}
