package models

import "time"

const (
	TicketPending = "PENDING"
	TicketActive  = "ACTIVE"
	TicketClosed  = "CLOSED"

	ReplyAuthorUser  = "user"
	ReplyAuthorAdmin = "admin"
)

type Ticket struct {
	ID        int           `json:"id"`
	TicketID  string        `json:"ticketId"`
	UserID    int           `json:"-"`
	Subject   string        `json:"subject"`
	Status    string        `json:"status"`
	Replies   []TicketReply `json:"replies"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

type TicketReply struct {
	Author    string    `json:"author"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
