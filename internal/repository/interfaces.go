package repository

import (
	"context"
	"io"

	"buzzi-console/internal/models"
)

type TicketRepository interface {
	FetchTickets(ctx context.Context) ([]models.Ticket, error)
	CreateTicket(ctx context.Context, t models.Ticket) (models.Ticket, error)
	DeleteTicket(ctx context.Context, id string) error
	// AssignTechnician clears the binding when technician is empty.
	AssignTechnician(ctx context.Context, id, technician string) error
	UpdateTicketStatus(ctx context.Context, id string, status models.Status) error
}

type QuoteRepository interface {
	FetchQuotes(ctx context.Context) ([]models.Quote, error)
	SubmitQuote(ctx context.Context, q models.Quote) (models.Quote, error)
}

type UserRepository interface {
	FetchUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, f models.UserFields) (models.User, error)
}

type KnowledgeRepository interface {
	FetchKnowledgeEntries(ctx context.Context) ([]models.KnowledgeEntry, error)
	IngestKnowledgeFile(ctx context.Context, name string, r io.Reader) (int, error)
	DeleteKnowledgeEntry(ctx context.Context, id string) error
}

type Messenger interface {
	DispatchBulkMessage(ctx context.Context, m models.BulkMessage) error
}

// Backend is everything the console core needs from the system of record.
// Implementations return apperr.ErrUnauthorized for rejected credentials,
// apperr.ErrNotFound for unknown ids and apperr.RemoteOperationError for any
// other failure.
type Backend interface {
	TicketRepository
	QuoteRepository
	UserRepository
	KnowledgeRepository
	Messenger
}
