package handlers

import (
	"errors"
	"net/http"

	"buzzi-console/internal/apperr"
	"buzzi-console/internal/utils"

	"github.com/rs/zerolog"
)

// writeErr maps the apperr taxonomy onto HTTP status codes.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var uf *apperr.UnsupportedFormatError
	var re *apperr.RemoteOperationError
	switch {
	case apperr.IsValidation(err):
		utils.Error(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &uf):
		utils.Error(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, apperr.ErrUnauthorized):
		utils.Error(w, http.StatusUnauthorized, "backend rejected the console session")
	case errors.Is(err, apperr.ErrNotFound):
		utils.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrOperationInProgress):
		utils.Error(w, http.StatusConflict, err.Error())
	case errors.As(err, &re):
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("op", re.Op).Int("remote_status", re.Status).Msg("backend call failed")
		utils.Error(w, http.StatusBadGateway, err.Error())
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		utils.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeOr400(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := utils.Decode(r, v); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}
