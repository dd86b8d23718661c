package handlers

import (
	"context"
	"net/http"

	"buzzi-console/internal/service"
	"buzzi-console/internal/utils"
)

type ReportService interface {
	Summary() service.Summary
	Refresh(ctx context.Context) error
}

type ReportsHTTP struct {
	svc ReportService
}

func NewReportsHTTP(svc ReportService) *ReportsHTTP { return &ReportsHTTP{svc: svc} }

// GET /api/reports/summary
// Counts come from the cached ticket table.
func (h *ReportsHTTP) Summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.JSON(w, http.StatusOK, h.svc.Summary())
	}
}

// POST /api/refresh
func (h *ReportsHTTP) Refresh() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.svc.Refresh(r.Context()); err != nil {
			writeErr(w, r, err)
			return
		}
		utils.JSON(w, http.StatusOK, h.svc.Summary())
	}
}
