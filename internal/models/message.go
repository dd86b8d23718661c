package models

import (
	"strings"

	"buzzi-console/internal/apperr"
)

type MessageKind string

const (
	KindSMS   MessageKind = "sms"
	KindEmail MessageKind = "email"
)

func ParseMessageKind(s string) (MessageKind, error) {
	switch k := MessageKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindSMS, KindEmail:
		return k, nil
	}
	return "", apperr.Invalid("kind", "must be sms or email")
}

// Scope selects recipients by role; ScopeAll selects every user.
type Scope string

const ScopeAll Scope = "all"

func ParseScope(s string) (Scope, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == string(ScopeAll) {
		return ScopeAll, nil
	}
	if !Role(s).Valid() {
		return "", apperr.Invalid("scope", "unknown recipient scope "+s)
	}
	return Scope(s), nil
}

type BulkMessage struct {
	Kind       MessageKind `json:"kind"`
	Recipients []string    `json:"recipients"`
	Body       string      `json:"body"`
	Subject    string      `json:"subject,omitempty"`
}
