// Package state is the process-local application state: cached collections
// refreshed wholesale from the backend and patched by id after writes.
package state

import (
	"fmt"
	"sync"

	"buzzi-console/internal/apperr"
	"buzzi-console/internal/lifecycle"
	"buzzi-console/internal/models"
	"buzzi-console/internal/otp"
	"buzzi-console/internal/quote"
)

type Store struct {
	Tickets *lifecycle.Table
	Vault   *otp.Vault

	mu        sync.RWMutex
	quotes    []models.Quote
	users     []models.User
	knowledge []models.KnowledgeEntry

	// quote drafts being built across requests
	draftMu sync.Mutex
	drafts  map[string]*quote.Draft
}

func New() *Store {
	return &Store{
		Tickets: lifecycle.NewTable(),
		Vault:   otp.NewVault(),
		drafts:  map[string]*quote.Draft{},
	}
}

func (s *Store) PutDraft(id string, d *quote.Draft) {
	s.draftMu.Lock()
	s.drafts[id] = d
	s.draftMu.Unlock()
}

// EditDraft runs fn on the stored draft while holding the draft lock. fn may
// change the draft; the returned copy reflects those changes.
func (s *Store) EditDraft(id string, fn func(*quote.Draft) error) (*quote.Draft, error) {
	s.draftMu.Lock()
	defer s.draftMu.Unlock()
	d, ok := s.drafts[id]
	if !ok {
		return nil, fmt.Errorf("draft %s: %w", id, apperr.ErrNotFound)
	}
	if fn != nil {
		if err := fn(d); err != nil {
			return nil, err
		}
	}
	return d.Clone(), nil
}

// DropDraft reports whether a draft was removed.
func (s *Store) DropDraft(id string) bool {
	s.draftMu.Lock()
	defer s.draftMu.Unlock()
	_, ok := s.drafts[id]
	delete(s.drafts, id)
	return ok
}

func (s *Store) SetQuotes(q []models.Quote) {
	s.mu.Lock()
	s.quotes = clone(q)
	s.mu.Unlock()
}

// PrependQuote keeps the newest quote first.
func (s *Store) PrependQuote(q models.Quote) {
	s.mu.Lock()
	s.quotes = append([]models.Quote{q}, s.quotes...)
	s.mu.Unlock()
}

func (s *Store) Quotes() []models.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.quotes)
}

func (s *Store) Quote(id string) (models.Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, q := range s.quotes {
		if q.ID == id {
			return q, true
		}
	}
	return models.Quote{}, false
}

func (s *Store) SetUsers(u []models.User) {
	s.mu.Lock()
	s.users = clone(u)
	s.mu.Unlock()
}

func (s *Store) AppendUser(u models.User) {
	s.mu.Lock()
	s.users = append(s.users, u)
	s.mu.Unlock()
}

func (s *Store) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.users)
}

func (s *Store) SetKnowledge(e []models.KnowledgeEntry) {
	s.mu.Lock()
	s.knowledge = clone(e)
	s.mu.Unlock()
}

func (s *Store) RemoveKnowledge(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.knowledge {
		if s.knowledge[i].ID == id {
			s.knowledge = append(s.knowledge[:i], s.knowledge[i+1:]...)
			return
		}
	}
}

func (s *Store) Knowledge() []models.KnowledgeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.knowledge)
}

func clone[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
