// Package guard rejects a second submission of an operation while the first
// is still running. Backend creates carry no idempotency key, so this is the
// only protection against duplicates.
package guard

import (
	"context"
	"sync"

	"buzzi-console/internal/apperr"
)

type Guard interface {
	// Acquire claims key or fails with apperr.ErrOperationInProgress.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type Local struct {
	mu      sync.Mutex
	running map[string]struct{}
}

func NewLocal() *Local {
	return &Local{running: map[string]struct{}{}}
}

func (l *Local) Acquire(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.running[key]; busy {
		return nil, apperr.ErrOperationInProgress
	}
	l.running[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.running, key)
			l.mu.Unlock()
		})
	}, nil
}
