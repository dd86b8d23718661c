package lifecycle

import (
	"sync"

	"buzzi-console/internal/models"
)

// Table is the cached ticket collection, most recent first.
type Table struct {
	mu      sync.RWMutex
	tickets []models.Ticket

	locksMu sync.Mutex
	locks   map[string]*ticketLock
}

type ticketLock struct {
	mu   sync.Mutex
	refs int
}

func NewTable() *Table {
	return &Table{locks: map[string]*ticketLock{}}
}

func (t *Table) Replace(all []models.Ticket) {
	cp := make([]models.Ticket, len(all))
	copy(cp, all)
	t.mu.Lock()
	t.tickets = cp
	t.mu.Unlock()
}

func (t *Table) Prepend(tk models.Ticket) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tickets = append([]models.Ticket{tk}, t.tickets...)
}

func (t *Table) Get(id string) (models.Ticket, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, tk := range t.tickets {
		if tk.ID == id {
			return tk, true
		}
	}
	return models.Ticket{}, false
}

// Patch replaces the ticket with the same id, keeping its position.
func (t *Table) Patch(tk models.Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.tickets {
		if t.tickets[i].ID == tk.ID {
			t.tickets[i] = tk
			return true
		}
	}
	return false
}

func (t *Table) Remove(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.tickets {
		if t.tickets[i].ID == id {
			t.tickets = append(t.tickets[:i], t.tickets[i+1:]...)
			return true
		}
	}
	return false
}

func (t *Table) List() []models.Ticket {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.Ticket, len(t.tickets))
	copy(out, t.tickets)
	return out
}

func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.tickets)
}

// Lock serializes mutations of one ticket. The returned func releases it.
func (t *Table) Lock(id string) func() {
	t.locksMu.Lock()
	l, ok := t.locks[id]
	if !ok {
		l = &ticketLock{}
		t.locks[id] = l
	}
	l.refs++
	t.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		t.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(t.locks, id)
		}
		t.locksMu.Unlock()
	}
}
