package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"buzzi-console/internal/models"
	"buzzi-console/internal/service"
	"buzzi-console/internal/utils"
)

type TicketService interface {
	Tickets() []models.Ticket
	CreateTicket(ctx context.Context, f models.TicketFields) (models.Ticket, error)
	UpdateStatus(ctx context.Context, id, status string) (models.Ticket, error)
	AssignTechnician(ctx context.Context, id, ref string) (service.AssignResult, error)
	DeleteTicket(ctx context.Context, id string) error
	RevealCode(id string) (bool, string, error)
}

// TicketHTTP wires ticket endpoints to the operations service.
type TicketHTTP struct {
	svc TicketService
}

func NewTicketHTTP(svc TicketService) *TicketHTTP {
	return &TicketHTTP{svc: svc}
}

// GET /api/tickets?status=&technician=&q=&limit=&offset=
func (h *TicketHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qv := r.URL.Query()
		status := strings.TrimSpace(qv.Get("status"))
		tech := strings.TrimSpace(qv.Get("technician"))
		q := strings.ToLower(strings.TrimSpace(qv.Get("q")))
		limit := utils.QueryInt(qv, "limit", 0)
		offset := utils.QueryInt(qv, "offset", 0)

		all := h.svc.Tickets()
		items := make([]models.Ticket, 0, len(all))
		for _, t := range all {
			if status != "" && string(t.Status) != status {
				continue
			}
			if tech != "" && !strings.EqualFold(t.Technician, tech) {
				continue
			}
			if q != "" && !matches(t, q) {
				continue
			}
			items = append(items, t)
		}
		from, to := utils.Page(len(items), offset, limit)
		utils.JSON(w, http.StatusOK, map[string]any{"items": items[from:to], "total": len(items)})
	}
}

func matches(t models.Ticket, q string) bool {
	for _, f := range []string{t.Name, t.Email, t.Phone, t.ServiceType} {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// POST /api/tickets
func (h *TicketHTTP) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in models.TicketFields
		if !decodeOr400(w, r, &in) {
			return
		}
		t, err := h.svc.CreateTicket(callerCtx(r), in)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		utils.JSON(w, http.StatusCreated, t)
	}
}

// PATCH /api/tickets/{id}/status
func (h *TicketHTTP) UpdateStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Status string `json:"status"`
		}
		if !decodeOr400(w, r, &in) {
			return
		}
		t, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), in.Status)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		utils.JSON(w, http.StatusOK, t)
	}
}

// PATCH /api/tickets/{id}/technician
// A 200 may carry a warning when the assignment notices could not be sent.
func (h *TicketHTTP) Assign() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Technician string `json:"technician"`
		}
		if !decodeOr400(w, r, &in) {
			return
		}
		res, err := h.svc.AssignTechnician(r.Context(), chi.URLParam(r, "id"), in.Technician)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		utils.JSON(w, http.StatusOK, res)
	}
}

// DELETE /api/tickets/{id}
// Permanent. Callers confirm before sending.
func (h *TicketHTTP) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.svc.DeleteTicket(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeErr(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /api/tickets/{id}/code
func (h *TicketHTTP) ToggleCode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		revealed, code, err := h.svc.RevealCode(chi.URLParam(r, "id"))
		if err != nil {
			writeErr(w, r, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"revealed": revealed, "code": code})
	}
}
