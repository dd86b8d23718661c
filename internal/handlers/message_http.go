package handlers

import (
	"context"
	"net/http"

	"buzzi-console/internal/service"
	"buzzi-console/internal/utils"
)

type MessageService interface {
	SendBulk(ctx context.Context, req service.BulkRequest) (service.DispatchResult, error)
}

type MessageHTTP struct {
	svc MessageService
}

func NewMessageHTTP(svc MessageService) *MessageHTTP { return &MessageHTTP{svc: svc} }

// POST /api/messages/bulk
// The response reports how many recipients the request carried, not how many
// messages were delivered.
func (h *MessageHTTP) Bulk() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.BulkRequest
		if !decodeOr400(w, r, &in) {
			return
		}
		res, err := h.svc.SendBulk(r.Context(), in)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		status := http.StatusAccepted
		if res.Recipients == 0 {
			status = http.StatusOK
		}
		utils.JSON(w, status, res)
	}
}
