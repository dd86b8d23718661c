// Package events emits ticket lifecycle events for other services. Payloads
// never carry completion codes.
package events

import (
	"context"
	"encoding/json"
	"time"

	"buzzi-console/internal/models"
)

const (
	TicketCreated       = "ticket.created"
	TicketStatusChanged = "ticket.status_changed"
	TicketAssigned      = "ticket.assigned"
	TicketUnassigned    = "ticket.unassigned"
	TicketDeleted       = "ticket.deleted"
	QuoteSubmitted      = "quote.submitted"
)

type Event struct {
	Type       string            `json:"type"`
	TicketID   string            `json:"ticketId,omitempty"`
	QuoteID    string            `json:"quoteId,omitempty"`
	Status     models.Status     `json:"status,omitempty"`
	TaskStatus models.TaskStatus `json:"taskStatus,omitempty"`
	Technician string            `json:"technician,omitempty"`
	At         time.Time         `json:"at"`
}

// ForTicket builds an event from the ticket's public state.
func ForTicket(kind string, t models.Ticket, at time.Time) Event {
	return Event{
		Type:       kind,
		TicketID:   t.ID,
		Status:     t.Status,
		TaskStatus: t.TaskStatus,
		Technician: t.Technician,
		At:         at,
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

func encode(e Event) ([]byte, error) { return json.Marshal(e) }

// Subject is the topic an event goes to: "<prefix>.<type>".
func Subject(prefix string, e Event) string {
	if prefix == "" {
		return e.Type
	}
	return prefix + "." + e.Type
}
