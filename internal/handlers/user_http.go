package handlers

import (
	"context"
	"net/http"
	"strings"

	"buzzi-console/internal/models"
	"buzzi-console/internal/utils"
)

type UserService interface {
	Users() []models.User
	CreateUser(ctx context.Context, f models.UserFields) (models.User, error)
}

type UserHTTP struct {
	svc UserService
}

func NewUserHTTP(svc UserService) *UserHTTP {
	return &UserHTTP{svc: svc}
}

// GET /api/users?role=&limit=&offset=
func (h *UserHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qv := r.URL.Query()
		role := models.Role(strings.ToLower(strings.TrimSpace(qv.Get("role"))))
		limit := utils.QueryInt(qv, "limit", 0)
		offset := utils.QueryInt(qv, "offset", 0)

		all := h.svc.Users()
		items := make([]models.User, 0, len(all))
		for _, u := range all {
			if role == "" || u.Role == role {
				items = append(items, u)
			}
		}
		from, to := utils.Page(len(items), offset, limit)
		utils.JSON(w, http.StatusOK, map[string]any{"items": items[from:to], "total": len(items)})
	}
}

// POST /api/users
func (h *UserHTTP) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in models.UserFields
		if !decodeOr400(w, r, &in) {
			return
		}
		u, err := h.svc.CreateUser(r.Context(), in)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		utils.JSON(w, http.StatusCreated, u)
	}
}
