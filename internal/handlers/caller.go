package handlers

import (
	"context"
	"net/http"

	"buzzi-console/internal/middleware"
	"buzzi-console/internal/service"
	"buzzi-console/internal/utils"
)

// callerCtx hands the signed-in user id to the service so repeated
// submissions are recognised per user.
func callerCtx(r *http.Request) context.Context {
	uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
	return service.WithCaller(r.Context(), uid)
}
