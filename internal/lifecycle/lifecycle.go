// Package lifecycle holds the ticket state machine. Functions here never do
// I/O; side effects are returned to the caller as intents.
package lifecycle

import (
	"strings"
	"time"

	"buzzi-console/internal/apperr"
	"buzzi-console/internal/models"
)

// Unassigned is the technician reference that clears an assignment.
const Unassigned = "Unassigned"

// NotificationIntent asks the caller to tell the customer and the technician
// about an assignment.
type NotificationIntent struct {
	TicketID    string
	Technician  string
	Customer    string
	Email       string
	Phone       string
	ServiceType string
	Date        string
	Time        string
}

func NewTicket(f models.TicketFields, now time.Time) (models.Ticket, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.ServiceType = strings.TrimSpace(f.ServiceType)
	if f.Name == "" {
		return models.Ticket{}, apperr.Invalid("name", "required")
	}
	if f.ServiceType == "" {
		return models.Ticket{}, apperr.Invalid("serviceType", "required")
	}
	return models.Ticket{
		Status:      models.StatusPending,
		TaskStatus:  models.TaskUnassigned,
		Name:        f.Name,
		Phone:       strings.TrimSpace(f.Phone),
		Email:       strings.TrimSpace(f.Email),
		ServiceType: f.ServiceType,
		Description: strings.TrimSpace(f.Description),
		Date:        strings.TrimSpace(f.Date),
		Time:        strings.TrimSpace(f.Time),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// UpdateStatus moves t to the named status. Any canonical status is reachable;
// anything else fails with apperr.ErrInvalidStatus and t is returned unchanged.
func UpdateStatus(t models.Ticket, raw string, now time.Time) (models.Ticket, error) {
	st, err := models.ParseStatus(raw)
	if err != nil {
		return t, err
	}
	t.Status = st
	t.UpdatedAt = now
	return t, nil
}

// IsUnassign reports whether ref denotes clearing the technician.
func IsUnassign(ref string) bool {
	ref = strings.TrimSpace(ref)
	return ref == "" || strings.EqualFold(ref, Unassigned)
}

// AssignTechnician binds or clears the technician. Binding promotes a Pending
// ticket to In Progress and returns an intent; clearing returns nil.
func AssignTechnician(t models.Ticket, ref string, now time.Time) (models.Ticket, *NotificationIntent) {
	t.UpdatedAt = now
	if IsUnassign(ref) {
		t.Technician = ""
		t.TaskStatus = models.TaskUnassigned
		return t, nil
	}
	t.Technician = strings.TrimSpace(ref)
	t.TaskStatus = models.TaskAssigned
	if t.Status == models.StatusPending {
		t.Status = models.StatusInProgress
	}
	return t, &NotificationIntent{
		TicketID:    t.ID,
		Technician:  t.Technician,
		Customer:    t.Name,
		Email:       t.Email,
		Phone:       t.Phone,
		ServiceType: t.ServiceType,
		Date:        t.Date,
		Time:        t.Time,
	}
}
