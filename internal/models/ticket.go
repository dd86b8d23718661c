package models

import (
	"strings"
	"time"

	"buzzi-console/internal/apperr"
)

type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	StatusCancelled  Status = "Cancelled"
)

var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}

// ParseStatus accepts only the canonical status names (surrounding space ignored).
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", apperr.ErrInvalidStatus
}

// Terminal reports whether the ticket's work is over.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type TaskStatus string

const (
	TaskUnassigned TaskStatus = "Unassigned"
	TaskAssigned   TaskStatus = "Assigned"
)

type Ticket struct {
	ID             string     `json:"id"`
	Status         Status     `json:"status"`
	TaskStatus     TaskStatus `json:"taskStatus"`
	Technician     string     `json:"technician,omitempty"`
	CompletionCode *string    `json:"completionCode,omitempty"`
	Name           string     `json:"name"`
	Phone          string     `json:"phone"`
	Email          string     `json:"email"`
	ServiceType    string     `json:"serviceType"`
	Description    string     `json:"description,omitempty"`
	Date           string     `json:"date,omitempty"`
	Time           string     `json:"time,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type TicketFields struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	ServiceType string `json:"serviceType"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}
