package postgres

import (
	"context"
	"errors"
	"fmt"

	"buzzi-console/internal/apperr"
	"buzzi-console/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepo struct{ db *pgxpool.Pool }

func NewTicketRepo(db *pgxpool.Pool) *TicketRepo { return &TicketRepo{db: db} }

const ticketColumns = `
	id, status, task_status, COALESCE(technician, ''), completion_code,
	name, phone, email, service_type, description, date, time, created_at, updated_at`

func scanTicket(row pgx.Row) (models.Ticket, error) {
	var t models.Ticket
	err := row.Scan(
		&t.ID, &t.Status, &t.TaskStatus, &t.Technician, &t.CompletionCode,
		&t.Name, &t.Phone, &t.Email, &t.ServiceType, &t.Description, &t.Date, &t.Time,
		&t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

// FetchTickets returns every ticket, most recent first.
func (r *TicketRepo) FetchTickets(ctx context.Context) ([]models.Ticket, error) {
	rows, err := r.db.Query(ctx, `SELECT `+ticketColumns+` FROM tickets ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, wrap("fetch tickets", err)
	}
	defer rows.Close()

	out := []models.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, wrap("fetch tickets", err)
		}
		out = append(out, t)
	}
	return out, wrap("fetch tickets", rows.Err())
}

func (r *TicketRepo) CreateTicket(ctx context.Context, t models.Ticket) (models.Ticket, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO tickets (status, task_status, technician, name, phone, email,
			service_type, description, date, time, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING `+ticketColumns,
		t.Status, t.TaskStatus, t.Technician, t.Name, t.Phone, t.Email,
		t.ServiceType, t.Description, t.Date, t.Time, t.CreatedAt,
	)
	created, err := scanTicket(row)
	if err != nil {
		return models.Ticket{}, wrap("create ticket", err)
	}
	return created, nil
}

func (r *TicketRepo) DeleteTicket(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return wrap("delete ticket", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// AssignTechnician stores the binding with the same promotion rule the core
// applies, so both views agree after the call.
func (r *TicketRepo) AssignTechnician(ctx context.Context, id, technician string) error {
	var (
		tag pgconn.CommandTag
		err error
	)
	if technician == "" {
		tag, err = r.db.Exec(ctx, `
			UPDATE tickets
			SET technician = NULL, task_status = 'Unassigned', updated_at = now()
			WHERE id = $1`, id)
	} else {
		tag, err = r.db.Exec(ctx, `
			UPDATE tickets
			SET technician = $2,
			    task_status = 'Assigned',
			    status = CASE WHEN status = 'Pending' THEN 'In Progress' ELSE status END,
			    updated_at = now()
			WHERE id = $1`, id, technician)
	}
	if err != nil {
		return wrap("assign technician", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *TicketRepo) UpdateTicketStatus(ctx context.Context, id string, status models.Status) error {
	tag, err := r.db.Exec(ctx, `UPDATE tickets SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return wrap("update ticket status", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// wrap maps storage errors into the boundary taxonomy.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.ErrNotFound
	}
	// 22P02: the id is not a valid uuid, so no row can match it.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "22P02" {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return apperr.Remote(op, 0, err)
}
