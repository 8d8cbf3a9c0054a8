package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/accounts/internal/common"
)

// statusFor maps an error to its HTTP status and fixed client message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge, "Request Entity Too Large"
	case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrorEmptyUpdate):
		return http.StatusBadRequest, "Bad Request"
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusBadRequest, "User already exists"
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, "Token expired"
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusBadRequest, "Invalid token"
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "Not Found"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := statusFor(err)
	if code == http.StatusInternalServerError {
		a.log.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err, "request_id", requestID(r.Context()))
	} else {
		a.log.Debug(r.Context(), "request rejected", "path", r.URL.Path, "status", code, "error", err)
	}
	writeJSON(w, code, errorResponse{Detail: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
