package handlers

import (
	"context"
	"net/http"

	"buzzi-console/internal/remotesession"
	"buzzi-console/internal/utils"
)

type RemoteSessionService interface {
	LaunchRemoteSession(ctx context.Context, tool, sessionID string) (remotesession.Launch, error)
}

type RemoteSessionHTTP struct {
	svc RemoteSessionService
}

func NewRemoteSessionHTTP(svc RemoteSessionService) *RemoteSessionHTTP {
	return &RemoteSessionHTTP{svc: svc}
}

// POST /api/remote-sessions
// Returns the deep link for the client to follow and the download page to
// offer if the desktop tool does not open.
func (h *RemoteSessionHTTP) Launch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Tool      string `json:"tool"`
			SessionID string `json:"sessionId"`
		}
		if !decodeOr400(w, r, &in) {
			return
		}
		res, err := h.svc.LaunchRemoteSession(r.Context(), in.Tool, in.SessionID)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		utils.JSON(w, http.StatusOK, res)
	}
}
