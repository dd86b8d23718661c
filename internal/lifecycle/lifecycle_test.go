package lifecycle

import (
	"errors"
	"sync"
	"testing"
	"time"

	"buzzi-console/internal/apperr"
	"buzzi-console/internal/models"
)

var now = time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)

func TestNewTicket(t *testing.T) {
	if _, err := NewTicket(models.TicketFields{Name: "", ServiceType: "X"}, now); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for empty name, got %v", err)
	}
	if _, err := NewTicket(models.TicketFields{Name: "Jane", ServiceType: "  "}, now); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for blank service type, got %v", err)
	}
	tk, err := NewTicket(models.TicketFields{Name: " Jane ", ServiceType: "Router Setup"}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tk.Name != "Jane" || tk.Status != models.StatusPending || tk.TaskStatus != models.TaskUnassigned {
		t.Fatalf("unexpected ticket %#v", tk)
	}
}

func TestAssignTechnicianPromotesPending(t *testing.T) {
	cases := []struct {
		from models.Status
		want models.Status
	}{
		{models.StatusPending, models.StatusInProgress},
		{models.StatusInProgress, models.StatusInProgress},
		{models.StatusCompleted, models.StatusCompleted},
		{models.StatusCancelled, models.StatusCancelled},
	}
	for _, tt := range cases {
		in := models.Ticket{ID: "t1", Status: tt.from, TaskStatus: models.TaskUnassigned, Name: "Jane"}
		got, intent := AssignTechnician(in, "kwame", now)
		if got.Status != tt.want {
			t.Fatalf("from %q: status=%q, want %q", tt.from, got.Status, tt.want)
		}
		if got.TaskStatus != models.TaskAssigned || got.Technician != "kwame" {
			t.Fatalf("from %q: unexpected assignment %#v", tt.from, got)
		}
		if intent == nil || intent.Technician != "kwame" || intent.Customer != "Jane" || intent.TicketID != "t1" {
			t.Fatalf("from %q: unexpected intent %#v", tt.from, intent)
		}
	}
}

func TestAssignTechnicianUnassign(t *testing.T) {
	for _, ref := range []string{"Unassigned", "unassigned", "", "  "} {
		for _, st := range models.Statuses {
			in := models.Ticket{ID: "t1", Status: st, TaskStatus: models.TaskAssigned, Technician: "kwame"}
			got, intent := AssignTechnician(in, ref, now)
			if got.Technician != "" || got.TaskStatus != models.TaskUnassigned {
				t.Fatalf("ref %q from %q: got %#v", ref, st, got)
			}
			if got.Status != st {
				t.Fatalf("ref %q: status changed %q -> %q", ref, st, got.Status)
			}
			if intent != nil {
				t.Fatalf("ref %q: expected no intent", ref)
			}
		}
	}
}

func TestUpdateStatus(t *testing.T) {
	in := models.Ticket{ID: "t1", Status: models.StatusPending}
	got, err := UpdateStatus(in, "Completed", now)
	if err != nil || got.Status != models.StatusCompleted {
		t.Fatalf("got %q, %v", got.Status, err)
	}
	got, err = UpdateStatus(in, "Archived", now)
	if !errors.Is(err, apperr.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if got.Status != models.StatusPending {
		t.Fatalf("ticket mutated on invalid status: %q", got.Status)
	}
}

func TestTableOrdering(t *testing.T) {
	tb := NewTable()
	tb.Replace([]models.Ticket{{ID: "b"}, {ID: "a"}})
	tb.Prepend(models.Ticket{ID: "c"})
	list := tb.List()
	if len(list) != 3 || list[0].ID != "c" || list[2].ID != "a" {
		t.Fatalf("unexpected order %v", list)
	}
	if !tb.Patch(models.Ticket{ID: "b", Name: "patched"}) {
		t.Fatalf("patch failed")
	}
	if got, _ := tb.Get("b"); got.Name != "patched" {
		t.Fatalf("patch not applied")
	}
	if tb.Patch(models.Ticket{ID: "zz"}) {
		t.Fatalf("patch of unknown id should fail")
	}
	if !tb.Remove("c") || tb.Len() != 2 {
		t.Fatalf("remove failed")
	}
	list[0].Name = "mutated"
	if got, _ := tb.Get("b"); got.Name != "patched" {
		t.Fatalf("List must return a copy")
	}
}

func TestTableLockSerializes(t *testing.T) {
	tb := NewTable()
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := tb.Lock("t1")
			defer unlock()
			c := counter
			time.Sleep(time.Microsecond)
			counter = c + 1
		}()
	}
	wg.Wait()
	if counter != 50 {
		t.Fatalf("lost updates: counter=%d", counter)
	}
	if len(tb.locks) != 0 {
		t.Fatalf("locks leaked: %d", len(tb.locks))
	}
}
