package guard

import (
	"context"
	"errors"
	"testing"

	"buzzi-console/internal/apperr"
)

func TestLocalRejectsConcurrentSubmission(t *testing.T) {
	g := NewLocal()
	ctx := context.Background()

	release, err := g.Acquire(ctx, "ticket:create")
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if _, err := g.Acquire(ctx, "ticket:create"); !errors.Is(err, apperr.ErrOperationInProgress) {
		t.Fatalf("second acquire err=%v, want ErrOperationInProgress", err)
	}
	other, err := g.Acquire(ctx, "ticket:assign:t1")
	if err != nil {
		t.Fatalf("independent key blocked: %v", err)
	}
	other()

	release()
	release()
	again, err := g.Acquire(ctx, "ticket:create")
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	again()
}
