package service

import (
	"context"
	"io"
	"sync"

	"buzzi-console/internal/models"
)

// fakeBackend implements repository.Backend with optional per-method funcs and
// counts every call.
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	fetchTickets   func(ctx context.Context) ([]models.Ticket, error)
	createTicket   func(ctx context.Context, t models.Ticket) (models.Ticket, error)
	deleteTicket   func(ctx context.Context, id string) error
	assign         func(ctx context.Context, id, technician string) error
	updateStatus   func(ctx context.Context, id string, st models.Status) error
	fetchQuotes    func(ctx context.Context) ([]models.Quote, error)
	submitQuote    func(ctx context.Context, q models.Quote) (models.Quote, error)
	fetchUsers     func(ctx context.Context) ([]models.User, error)
	createUser     func(ctx context.Context, f models.UserFields) (models.User, error)
	fetchKnowledge func(ctx context.Context) ([]models.KnowledgeEntry, error)
	ingest         func(ctx context.Context, name string, r io.Reader) (int, error)
	deleteEntry    func(ctx context.Context, id string) error
	dispatch       func(ctx context.Context, m models.BulkMessage) error
}

func (f *fakeBackend) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeBackend) FetchTickets(ctx context.Context) ([]models.Ticket, error) {
	f.hit("FetchTickets")
	if f.fetchTickets != nil {
		return f.fetchTickets(ctx)
	}
	return []models.Ticket{}, nil
}

func (f *fakeBackend) CreateTicket(ctx context.Context, t models.Ticket) (models.Ticket, error) {
	f.hit("CreateTicket")
	if f.createTicket != nil {
		return f.createTicket(ctx, t)
	}
	t.ID = "new"
	return t, nil
}

func (f *fakeBackend) DeleteTicket(ctx context.Context, id string) error {
	f.hit("DeleteTicket")
	if f.deleteTicket != nil {
		return f.deleteTicket(ctx, id)
	}
	return nil
}

func (f *fakeBackend) AssignTechnician(ctx context.Context, id, technician string) error {
	f.hit("AssignTechnician")
	if f.assign != nil {
		return f.assign(ctx, id, technician)
	}
	return nil
}

func (f *fakeBackend) UpdateTicketStatus(ctx context.Context, id string, st models.Status) error {
	f.hit("UpdateTicketStatus")
	if f.updateStatus != nil {
		return f.updateStatus(ctx, id, st)
	}
	return nil
}

func (f *fakeBackend) FetchQuotes(ctx context.Context) ([]models.Quote, error) {
	f.hit("FetchQuotes")
	if f.fetchQuotes != nil {
		return f.fetchQuotes(ctx)
	}
	return []models.Quote{}, nil
}

func (f *fakeBackend) SubmitQuote(ctx context.Context, q models.Quote) (models.Quote, error) {
	f.hit("SubmitQuote")
	if f.submitQuote != nil {
		return f.submitQuote(ctx, q)
	}
	q.ID = "q-1"
	return q, nil
}

func (f *fakeBackend) FetchUsers(ctx context.Context) ([]models.User, error) {
	f.hit("FetchUsers")
	if f.fetchUsers != nil {
		return f.fetchUsers(ctx)
	}
	return []models.User{}, nil
}

func (f *fakeBackend) CreateUser(ctx context.Context, in models.UserFields) (models.User, error) {
	f.hit("CreateUser")
	if f.createUser != nil {
		return f.createUser(ctx, in)
	}
	return models.User{ID: "u-new", Name: in.Name, Email: in.Email, Role: in.Role, Phone: in.Phone}, nil
}

func (f *fakeBackend) FetchKnowledgeEntries(ctx context.Context) ([]models.KnowledgeEntry, error) {
	f.hit("FetchKnowledgeEntries")
	if f.fetchKnowledge != nil {
		return f.fetchKnowledge(ctx)
	}
	return []models.KnowledgeEntry{}, nil
}

func (f *fakeBackend) IngestKnowledgeFile(ctx context.Context, name string, r io.Reader) (int, error) {
	f.hit("IngestKnowledgeFile")
	if f.ingest != nil {
		return f.ingest(ctx, name, r)
	}
	return 0, nil
}

func (f *fakeBackend) DeleteKnowledgeEntry(ctx context.Context, id string) error {
	f.hit("DeleteKnowledgeEntry")
	if f.deleteEntry != nil {
		return f.deleteEntry(ctx, id)
	}
	return nil
}

func (f *fakeBackend) DispatchBulkMessage(ctx context.Context, m models.BulkMessage) error {
	f.hit("DispatchBulkMessage")
	if f.dispatch != nil {
		return f.dispatch(ctx, m)
	}
	return nil
}
