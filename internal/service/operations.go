// Package service coordinates the console's operations. It is the only
// package that calls the backend; caches in state.Store change only after a
// backend call succeeds.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"buzzi-console/internal/apperr"
	"buzzi-console/internal/events"
	"buzzi-console/internal/guard"
	"buzzi-console/internal/invoice"
	"buzzi-console/internal/lifecycle"
	"buzzi-console/internal/models"
	"buzzi-console/internal/quote"
	"buzzi-console/internal/recipients"
	"buzzi-console/internal/remotesession"
	"buzzi-console/internal/repository"
	"buzzi-console/internal/state"

	"github.com/rs/zerolog"
)

// KnowledgeFormats are the upload extensions accepted for ingestion.
var KnowledgeFormats = []string{"json", "pdf", "docx"}

type Deps struct {
	Backend  repository.Backend
	State    *state.Store
	Guard    guard.Guard
	Events   events.Publisher
	Invoices invoice.Renderer
	Sessions *remotesession.Launcher
	Log      zerolog.Logger

	// OnUnauthorized runs once for every backend call rejected with 401.
	OnUnauthorized func()
}

type Operations struct {
	backend  repository.Backend
	state    *state.Store
	guard    guard.Guard
	events   events.Publisher
	invoices invoice.Renderer
	sessions *remotesession.Launcher
	log      zerolog.Logger

	onUnauthorized func()
	now            func() time.Time
}

func NewOperations(d Deps) *Operations {
	s := &Operations{
		backend:        d.Backend,
		state:          d.State,
		guard:          d.Guard,
		events:         d.Events,
		invoices:       d.Invoices,
		sessions:       d.Sessions,
		log:            d.Log,
		onUnauthorized: d.OnUnauthorized,
		now:            func() time.Time { return time.Now().UTC() },
	}
	if s.state == nil {
		s.state = state.New()
	}
	if s.guard == nil {
		s.guard = guard.NewLocal()
	}
	if s.events == nil {
		s.events = events.Noop{}
	}
	if s.sessions == nil {
		s.sessions = remotesession.New(remotesession.ClientHandoff{}, remotesession.ClientHandoff{}, remotesession.ClientHandoff{}, 0)
	}
	return s
}

// AssignResult carries the updated ticket and, when notifying the customer or
// technician failed, a warning. The assignment itself stands either way.
type AssignResult struct {
	Ticket   models.Ticket `json:"ticket"`
	Notified int           `json:"notified"`
	Warning  string        `json:"warning,omitempty"`
}

type BulkRequest struct {
	Kind    string `json:"kind"`
	Scope   string `json:"scope"`
	Body    string `json:"body"`
	Subject string `json:"subject"`
}

type DispatchResult struct {
	Recipients int `json:"recipients"`
}

type IngestResult struct {
	Count   int    `json:"count"`
	Warning string `json:"warning,omitempty"`
}

type Summary struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
	Unassigned int `json:"unassigned"`
}

// remote fires the session-invalidation callback for 401s. Every backend
// error goes through here.
func (s *Operations) remote(err error) error {
	if err != nil && errors.Is(err, apperr.ErrUnauthorized) && s.onUnauthorized != nil {
		s.onUnauthorized()
	}
	return err
}

func (s *Operations) publish(ctx context.Context, e events.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		s.log.Warn().Err(err).Str("event", e.Type).Msg("publish event")
	}
}

// Refresh reloads every collection from the backend. Caches are replaced only
// when all four fetches succeed.
func (s *Operations) Refresh(ctx context.Context) error {
	tickets, err := s.backend.FetchTickets(ctx)
	if err != nil {
		return s.remote(err)
	}
	quotes, err := s.backend.FetchQuotes(ctx)
	if err != nil {
		return s.remote(err)
	}
	users, err := s.backend.FetchUsers(ctx)
	if err != nil {
		return s.remote(err)
	}
	entries, err := s.backend.FetchKnowledgeEntries(ctx)
	if err != nil {
		return s.remote(err)
	}
	s.state.Tickets.Replace(tickets)
	s.state.SetQuotes(quotes)
	s.state.SetUsers(users)
	s.state.SetKnowledge(entries)
	s.log.Debug().
		Int("tickets", len(tickets)).Int("quotes", len(quotes)).
		Int("users", len(users)).Int("knowledge", len(entries)).
		Msg("caches refreshed")
	return nil
}

// Tickets lists cached tickets, most recent first, with completion codes
// masked unless revealed.
func (s *Operations) Tickets() []models.Ticket {
	all := s.state.Tickets.List()
	for i := range all {
		all[i] = s.state.Vault.Redact(all[i])
	}
	return all
}

func (s *Operations) Quotes() []models.Quote { return s.state.Quotes() }

func (s *Operations) Users() []models.User { return s.state.Users() }

func (s *Operations) KnowledgeEntries() []models.KnowledgeEntry { return s.state.Knowledge() }

func (s *Operations) Summary() Summary {
	var sum Summary
	for _, t := range s.state.Tickets.List() {
		sum.Total++
		if !t.Status.Terminal() {
			sum.Open++
		}
		switch t.Status {
		case models.StatusPending:
			sum.Pending++
		case models.StatusInProgress:
			sum.InProgress++
		case models.StatusCompleted:
			sum.Completed++
		case models.StatusCancelled:
			sum.Cancelled++
		}
		if t.TaskStatus == models.TaskUnassigned {
			sum.Unassigned++
		}
	}
	return sum
}

func (s *Operations) CreateTicket(ctx context.Context, f models.TicketFields) (models.Ticket, error) {
	draft, err := lifecycle.NewTicket(f, s.now())
	if err != nil {
		return models.Ticket{}, err
	}
	release, err := s.guard.Acquire(ctx, submissionKey(ctx, "ticket:create",
		draft.Name, draft.Phone, draft.Email, draft.ServiceType, draft.Description, draft.Date, draft.Time))
	if err != nil {
		return models.Ticket{}, err
	}
	defer release()

	created, err := s.backend.CreateTicket(ctx, draft)
	if err != nil {
		return models.Ticket{}, s.remote(err)
	}
	s.state.Tickets.Prepend(created)
	s.publish(ctx, events.ForTicket(events.TicketCreated, created, s.now()))
	s.log.Info().Str("ticket", created.ID).Str("service", created.ServiceType).Msg("ticket created")
	return s.state.Vault.Redact(created), nil
}

func (s *Operations) UpdateStatus(ctx context.Context, id, raw string) (models.Ticket, error) {
	unlock := s.state.Tickets.Lock(id)
	defer unlock()

	cur, ok := s.state.Tickets.Get(id)
	if !ok {
		return models.Ticket{}, fmt.Errorf("ticket %s: %w", id, apperr.ErrNotFound)
	}
	next, err := lifecycle.UpdateStatus(cur, raw, s.now())
	if err != nil {
		return models.Ticket{}, err
	}
	if err := s.backend.UpdateTicketStatus(ctx, id, next.Status); err != nil {
		return models.Ticket{}, s.remote(err)
	}
	s.state.Tickets.Patch(next)
	s.publish(ctx, events.ForTicket(events.TicketStatusChanged, next, next.UpdatedAt))
	s.log.Info().Str("ticket", id).Str("from", string(cur.Status)).Str("to", string(next.Status)).Msg("ticket status updated")
	return s.state.Vault.Redact(next), nil
}

// AssignTechnician binds ref to the ticket, or clears the assignment when ref
// is empty or "Unassigned". A new binding notifies the customer and the
// technician; reassigning the same technician notifies again.
func (s *Operations) AssignTechnician(ctx context.Context, id, ref string) (AssignResult, error) {
	release, err := s.guard.Acquire(ctx, "ticket:assign:"+id)
	if err != nil {
		return AssignResult{}, err
	}
	defer release()
	unlock := s.state.Tickets.Lock(id)
	defer unlock()

	cur, ok := s.state.Tickets.Get(id)
	if !ok {
		return AssignResult{}, fmt.Errorf("ticket %s: %w", id, apperr.ErrNotFound)
	}
	next, intent := lifecycle.AssignTechnician(cur, ref, s.now())
	if err := s.backend.AssignTechnician(ctx, id, next.Technician); err != nil {
		return AssignResult{}, s.remote(err)
	}
	s.state.Tickets.Patch(next)

	kind := events.TicketUnassigned
	if intent != nil {
		kind = events.TicketAssigned
	}
	s.publish(ctx, events.ForTicket(kind, next, next.UpdatedAt))
	s.log.Info().Str("ticket", id).Str("technician", next.Technician).Str("status", string(next.Status)).Msg("ticket assignment changed")

	res := AssignResult{Ticket: s.state.Vault.Redact(next)}
	if intent != nil {
		res.Notified, res.Warning = s.notify(ctx, *intent)
	}
	return res, nil
}

// notify sends the assignment notices. Failures are reported, never returned.
func (s *Operations) notify(ctx context.Context, in lifecycle.NotificationIntent) (int, string) {
	when := strings.TrimSpace(in.Date + " " + in.Time)
	if when == "" {
		when = "a time to be confirmed"
	}
	subject := fmt.Sprintf("%s booking update", in.ServiceType)

	var warnings []string
	sent := 0
	send := func(who string, email, phone, body string) {
		msg, ok := directMessage(email, phone, subject, body)
		if !ok {
			warnings = append(warnings, who+" has no email or phone on file")
			return
		}
		if err := s.backend.DispatchBulkMessage(ctx, msg); err != nil {
			err = s.remote(err)
			s.log.Warn().Err(err).Str("ticket", in.TicketID).Str("recipient", who).Msg("assignment notice failed")
			warnings = append(warnings, "could not notify "+who)
			return
		}
		sent++
	}

	send("customer", in.Email, in.Phone, fmt.Sprintf(
		"Hello %s, technician %s has been assigned to your %s booking on %s.",
		in.Customer, in.Technician, in.ServiceType, when))

	techEmail, techPhone := s.technicianContact(in.Technician)
	send("technician "+in.Technician, techEmail, techPhone, fmt.Sprintf(
		"You have been assigned a %s job for %s on %s. Customer phone: %s.",
		in.ServiceType, in.Customer, when, orDash(in.Phone)))

	return sent, strings.Join(warnings, "; ")
}

// technicianContact looks the reference up by id, then by name.
func (s *Operations) technicianContact(ref string) (string, string) {
	users := s.state.Users()
	for _, u := range users {
		if u.ID == ref {
			return u.Email, u.Phone
		}
	}
	for _, u := range users {
		if u.Role == models.RoleTechnician && strings.EqualFold(u.Name, ref) {
			return u.Email, u.Phone
		}
	}
	return "", ""
}

func directMessage(email, phone, subject, body string) (models.BulkMessage, bool) {
	if e := strings.TrimSpace(email); e != "" {
		return models.BulkMessage{Kind: models.KindEmail, Recipients: []string{e}, Body: body, Subject: subject}, true
	}
	if p := strings.TrimSpace(phone); p != "" {
		return models.BulkMessage{Kind: models.KindSMS, Recipients: []string{p}, Body: body}, true
	}
	return models.BulkMessage{}, false
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// DeleteTicket removes the ticket permanently. There is no undo.
func (s *Operations) DeleteTicket(ctx context.Context, id string) error {
	unlock := s.state.Tickets.Lock(id)
	defer unlock()

	cur, _ := s.state.Tickets.Get(id)
	if err := s.backend.DeleteTicket(ctx, id); err != nil {
		return s.remote(err)
	}
	s.state.Tickets.Remove(id)
	cur.ID = id
	s.publish(ctx, events.ForTicket(events.TicketDeleted, cur, s.now()))
	s.log.Info().Str("ticket", id).Msg("ticket deleted")
	return nil
}

// RevealCode toggles whether the ticket's completion code is shown and returns
// the new state with what may now be displayed.
func (s *Operations) RevealCode(id string) (bool, string, error) {
	t, ok := s.state.Tickets.Get(id)
	if !ok {
		return false, "", fmt.Errorf("ticket %s: %w", id, apperr.ErrNotFound)
	}
	revealed := s.state.Vault.Toggle(id)
	return revealed, s.state.Vault.Display(t), nil
}

func (s *Operations) SubmitQuote(ctx context.Context, d *quote.Draft) (models.Quote, error) {
	snap, err := d.Finalize(s.now())
	if err != nil {
		return models.Quote{}, err
	}
	release, err := s.guard.Acquire(ctx, quoteKey(ctx, snap))
	if err != nil {
		return models.Quote{}, err
	}
	defer release()

	saved, err := s.backend.SubmitQuote(ctx, snap)
	if err != nil {
		return models.Quote{}, s.remote(err)
	}
	s.state.PrependQuote(saved)
	s.publish(ctx, events.Event{Type: events.QuoteSubmitted, QuoteID: saved.ID, At: s.now()})
	s.log.Info().Str("quote", saved.ID).Int("items", len(saved.Items)).Str("total", saved.GrandTotal.StringFixed(2)).Msg("quote submitted")
	return saved, nil
}

// RenderInvoice produces the invoice artifact for a cached quote and returns
// its location.
func (s *Operations) RenderInvoice(ctx context.Context, quoteID string) (string, error) {
	q, ok := s.state.Quote(quoteID)
	if !ok {
		return "", fmt.Errorf("quote %s: %w", quoteID, apperr.ErrNotFound)
	}
	if s.invoices == nil {
		return "", apperr.Remote("render invoice", 0, errors.New("no invoice renderer configured"))
	}
	path, err := s.invoices.Render(ctx, q)
	if err != nil {
		return "", apperr.Remote("render invoice", 0, err)
	}
	return path, nil
}

func (s *Operations) CreateUser(ctx context.Context, f models.UserFields) (models.User, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Role = models.Role(strings.ToLower(strings.TrimSpace(string(f.Role))))
	switch {
	case f.Name == "":
		return models.User{}, apperr.Invalid("name", "required")
	case f.Email == "" || !strings.Contains(f.Email, "@"):
		return models.User{}, apperr.Invalid("email", "a valid address is required")
	case !f.Role.Valid():
		return models.User{}, apperr.Invalid("role", "must be customer, technician or admin")
	case f.Password != "" && (len(f.Password) < 6 || len(f.Password) > 72):
		return models.User{}, apperr.Invalid("password", "must be 6 to 72 characters")
	}
	release, err := s.guard.Acquire(ctx, "user:create:"+strings.ToLower(f.Email))
	if err != nil {
		return models.User{}, err
	}
	defer release()

	u, err := s.backend.CreateUser(ctx, f)
	if err != nil {
		return models.User{}, s.remote(err)
	}
	s.state.AppendUser(u)
	s.log.Info().Str("user", u.ID).Str("role", string(u.Role)).Msg("user created")
	return u, nil
}

// SendBulk sends one message to every user in scope with a single backend
// call. No recipients is a successful no-op. Delivery is not tracked.
func (s *Operations) SendBulk(ctx context.Context, req BulkRequest) (DispatchResult, error) {
	kind, err := models.ParseMessageKind(req.Kind)
	if err != nil {
		return DispatchResult{}, err
	}
	scope, err := models.ParseScope(req.Scope)
	if err != nil {
		return DispatchResult{}, err
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return DispatchResult{}, apperr.Invalid("body", "required")
	}
	subject := strings.TrimSpace(req.Subject)
	if kind == models.KindEmail && subject == "" {
		return DispatchResult{}, apperr.Invalid("subject", "required for email")
	}
	if kind == models.KindSMS {
		subject = ""
	}

	addrs := recipients.Addresses(recipients.Resolve(s.state.Users(), scope), kind)
	if len(addrs) == 0 {
		s.log.Info().Str("scope", string(scope)).Msg("bulk message has no recipients")
		return DispatchResult{}, nil
	}
	msg := models.BulkMessage{Kind: kind, Recipients: addrs, Body: body, Subject: subject}
	if err := s.backend.DispatchBulkMessage(ctx, msg); err != nil {
		return DispatchResult{}, s.remote(err)
	}
	s.log.Info().Str("kind", string(kind)).Str("scope", string(scope)).Int("recipients", len(addrs)).Msg("bulk message dispatched")
	return DispatchResult{Recipients: len(addrs)}, nil
}

// CheckKnowledgeFormat rejects uploads whose extension is not ingestible.
func CheckKnowledgeFormat(name string) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	for _, ok := range KnowledgeFormats {
		if ext == ok {
			return nil
		}
	}
	return &apperr.UnsupportedFormatError{Ext: filepath.Ext(name), Allowed: KnowledgeFormats}
}

// IngestKnowledge uploads a knowledge file and reloads the whole collection.
// The count is whatever the backend reports.
func (s *Operations) IngestKnowledge(ctx context.Context, name string, r io.Reader) (IngestResult, error) {
	if err := CheckKnowledgeFormat(name); err != nil {
		return IngestResult{}, err
	}
	n, err := s.backend.IngestKnowledgeFile(ctx, filepath.Base(name), r)
	if err != nil {
		return IngestResult{}, s.remote(err)
	}
	res := IngestResult{Count: n}
	entries, err := s.backend.FetchKnowledgeEntries(ctx)
	if err != nil {
		err = s.remote(err)
		s.log.Warn().Err(err).Msg("reload knowledge entries")
		res.Warning = "entries were ingested but the list could not be reloaded"
		return res, nil
	}
	s.state.SetKnowledge(entries)
	s.log.Info().Str("file", filepath.Base(name)).Int("count", n).Msg("knowledge ingested")
	return res, nil
}

func (s *Operations) DeleteKnowledgeEntry(ctx context.Context, id string) error {
	if err := s.backend.DeleteKnowledgeEntry(ctx, id); err != nil {
		return s.remote(err)
	}
	s.state.RemoveKnowledge(id)
	return nil
}

func (s *Operations) LaunchRemoteSession(ctx context.Context, tool, sessionID string) (remotesession.Launch, error) {
	res, err := s.sessions.Launch(ctx, tool, sessionID)
	if err != nil {
		return remotesession.Launch{}, err
	}
	s.log.Info().Str("tool", res.Tool).Bool("fallback_offered", res.FallbackOffered).Msg("remote session launched")
	return res, nil
}
