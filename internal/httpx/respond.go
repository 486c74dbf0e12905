package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/anonb2b/orders-backend/internal/apperr"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps error kinds to HTTP statuses. The two 422 kinds stay
// distinguishable through the code string.
func statusFor(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindInvalidState, apperr.KindInvalidTransition:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeErr(w http.ResponseWriter, err error) {
	k := apperr.KindOf(err)
	msg := err.Error()
	if k == apperr.KindUnknown || k == apperr.KindInternal {
		// never leak storage-layer details to clients
		msg = "internal error"
		k = apperr.KindInternal
	}
	writeJSON(w, statusFor(k), errBody{Error: msg, Code: k.Code()})
}

// parsePage reads skip/limit query params; the stores clamp the limit.
func parsePage(r *http.Request) (skip, limit int) {
	skip, _ = strconv.Atoi(r.URL.Query().Get("skip"))
	if skip < 0 {
		skip = 0
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	return skip, limit
}
