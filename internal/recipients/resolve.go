package recipients

import (
	"strings"

	"buzzi-console/internal/models"
)

// Resolve returns the users matching scope in input order. ScopeAll keeps
// every user, duplicates included. An empty result is not an error.
func Resolve(users []models.User, scope models.Scope) []models.User {
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if scope == models.ScopeAll || string(u.Role) == string(scope) {
			out = append(out, u)
		}
	}
	return out
}

// Addresses picks the email or phone of each user for kind, skipping users
// without one.
func Addresses(users []models.User, kind models.MessageKind) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		addr := u.Email
		if kind == models.KindSMS {
			addr = u.Phone
		}
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
