// Package otp gates completion codes behind an explicit per-ticket reveal.
// It holds session state only and never logs or sends a code.
package otp

import (
	"sync"

	"buzzi-console/internal/models"
)

const Mask = "••••••"

type Vault struct {
	mu    sync.Mutex
	shown map[string]bool
}

func NewVault() *Vault {
	return &Vault{shown: map[string]bool{}}
}

// Toggle flips the reveal state for ticketID and returns the new state.
func (v *Vault) Toggle(ticketID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.shown[ticketID] {
		delete(v.shown, ticketID)
		return false
	}
	v.shown[ticketID] = true
	return true
}

func (v *Vault) Revealed(ticketID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.shown[ticketID]
}

// Display is what may be shown for t's completion code right now.
func (v *Vault) Display(t models.Ticket) string {
	if t.CompletionCode == nil || *t.CompletionCode == "" {
		return ""
	}
	if !v.Revealed(t.ID) {
		return Mask
	}
	return *t.CompletionCode
}

// Redact returns t with its code replaced by Display(t).
func (v *Vault) Redact(t models.Ticket) models.Ticket {
	if t.CompletionCode == nil {
		return t
	}
	shown := v.Display(t)
	t.CompletionCode = &shown
	return t
}

func (v *Vault) Reset() {
	v.mu.Lock()
	v.shown = map[string]bool{}
	v.mu.Unlock()
}
