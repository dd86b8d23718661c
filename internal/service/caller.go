package service

import (
	"context"
	"strconv"
	"strings"

	"buzzi-console/internal/models"

	"github.com/google/uuid"
)

type callerKey struct{}

// WithCaller records which console user is acting. Double-submission guards
// are scoped to this id.
func WithCaller(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, callerKey{}, strings.TrimSpace(id))
}

func callerFrom(ctx context.Context) string {
	if id, _ := ctx.Value(callerKey{}).(string); id != "" {
		return id
	}
	return "anonymous"
}

// submissionKey is shared only by submissions of the same content from the
// same caller. Parts are compared case-insensitively and trimmed.
func submissionKey(ctx context.Context, op string, parts ...string) string {
	norm := make([]string, len(parts))
	for i, p := range parts {
		norm[i] = strings.ToLower(strings.TrimSpace(p))
	}
	fp := uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.Join(norm, "\x1f")))
	return op + ":" + callerFrom(ctx) + ":" + fp.String()
}

func quoteKey(ctx context.Context, q models.Quote) string {
	parts := []string{q.Name, q.Email, q.Phone, q.GrandTotal.String()}
	for _, it := range q.Items {
		parts = append(parts, it.Name+"*"+strconv.Itoa(it.Quantity)+"@"+it.Price.String())
	}
	return submissionKey(ctx, "quote:submit", parts...)
}
