package events

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"buzzi-console/internal/models"
)

func TestForTicketOmitsCompletionCode(t *testing.T) {
	code := "998877"
	tk := models.Ticket{
		ID: "t1", Status: models.StatusInProgress, TaskStatus: models.TaskAssigned,
		Technician: "kwame", CompletionCode: &code,
	}
	e := ForTicket(TicketAssigned, tk, time.Unix(0, 0).UTC())
	b, err := encode(e)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.Contains(string(b), code) {
		t.Fatalf("payload leaked completion code: %s", b)
	}
	var back map[string]any
	_ = json.Unmarshal(b, &back)
	if back["type"] != TicketAssigned || back["technician"] != "kwame" || back["status"] != "In Progress" {
		t.Fatalf("unexpected payload %s", b)
	}
}

func TestSubject(t *testing.T) {
	e := Event{Type: TicketCreated}
	if got := Subject("console", e); got != "console.ticket.created" {
		t.Fatalf("subject=%q", got)
	}
	if got := Subject("", e); got != "ticket.created" {
		t.Fatalf("subject=%q", got)
	}
}
