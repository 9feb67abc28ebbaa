package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/service"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error   string               `json:"error"`
	Details []service.FieldError `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// decode reads a JSON request body into dst.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &service.ValidationError{Message: "Invalid request body"}
	}
	return nil
}

// fail maps a service error to its status code. Anything unrecognized is logged
// under op and reported as a 500 with msg.
func (h *Handler) fail(w http.ResponseWriter, op string, err error, msg string) {
	var (
		ve *service.ValidationError
		nf *service.NotFoundError
		ce *service.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ve.Message, Details: ve.Details})
	case errors.As(err, &nf):
		writeError(w, http.StatusNotFound, nf.Message)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.As(err, &ce):
		writeError(w, http.StatusConflict, ce.Message)
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, "Already exists")
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, service.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, unavailableReason(err))
	default:
		h.log.Error("Request failed", zap.String("op", op), zap.Error(err))
		writeError(w, http.StatusInternalServerError, msg)
	}
}

func unavailableReason(err error) string {
	prefix := service.ErrUnavailable.Error() + ": "
	if s := err.Error(); strings.HasPrefix(s, prefix) {
		return strings.TrimPrefix(s, prefix)
	}
	return "Service unavailable"
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func queryBool(r *http.Request, key string) *bool {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}

// page reads limit and offset, capping limit at max.
func page(r *http.Request, def, max int) repository.Page {
	limit := queryInt(r, "limit", def)
	if limit == 0 || limit > max {
		limit = def
	}
	return repository.Page{Limit: limit, Offset: queryInt(r, "offset", 0)}
}

func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
