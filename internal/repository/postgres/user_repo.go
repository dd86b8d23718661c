package postgres

import (
	"context"
	"strings"

	"buzzi-console/internal/models"
	"buzzi-console/internal/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepo struct{ db *pgxpool.Pool }

func NewUserRepo(db *pgxpool.Pool) *UserRepo { return &UserRepo{db: db} }

// FetchUsers lists the directory in creation order so role filtering stays
// stable between refreshes.
func (r *UserRepo) FetchUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, email, role, COALESCE(phone, ''), created_at
		FROM users
		ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, wrap("fetch users", err)
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Phone, &u.CreatedAt); err != nil {
			return nil, wrap("fetch users", err)
		}
		out = append(out, u)
	}
	return out, wrap("fetch users", rows.Err())
}

// CreateUser stores a bcrypt hash in password_h when a password is given.
func (r *UserRepo) CreateUser(ctx context.Context, f models.UserFields) (models.User, error) {
	var hash *string
	if f.Password != "" {
		h, err := utils.HashPassword(f.Password)
		if err != nil {
			return models.User{}, wrap("create user", err)
		}
		hash = &h
	}

	var u models.User
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (name, email, role, phone, password_h)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		RETURNING id, name, email, role, COALESCE(phone, ''), created_at`,
		strings.TrimSpace(f.Name), strings.ToLower(strings.TrimSpace(f.Email)), f.Role, strings.TrimSpace(f.Phone), hash).
		Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Phone, &u.CreatedAt)
	if err != nil {
		return models.User{}, wrap("create user", err)
	}
	return u, nil
}
