package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/nullable"

	"github.com/Overland-East-Bay/roadbook-api/internal/app/auth"
	"github.com/Overland-East-Bay/roadbook-api/internal/app/notifications"
	"github.com/Overland-East-Bay/roadbook-api/internal/app/trips"
)

type errorBody struct {
	Code      string                            `json:"code"`
	Message   string                            `json:"message"`
	Details   nullable.Nullable[map[string]any] `json:"details,omitempty"`
	RequestId nullable.Nullable[string]         `json:"requestId,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func newErrorResponse(r *http.Request, code string, message string, details map[string]any) errorResponse {
	var er errorResponse
	er.Error.Code = code
	er.Error.Message = message
	if details != nil {
		er.Error.Details = nullable.NewNullableWithValue(details)
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		er.Error.RequestId = nullable.NewNullableWithValue(rid)
	}
	return er
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, message string, details map[string]any) {
	writeJSON(w, status, newErrorResponse(r, code, message, details))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeAppError maps application errors to their HTTP status and code.
// Anything else is logged and reported as a generic 500.
func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		authErr  *auth.Error
		tripErr  *trips.Error
		notifErr *notifications.Error
	)
	switch {
	case errors.As(err, &authErr):
		if authErr.Status >= http.StatusInternalServerError {
			s.logf(r, "auth: %s: %v", authErr.Code, errors.Unwrap(authErr))
		}
		writeError(w, r, authErr.Status, authErr.Code, authErr.Message, authErr.Details)
	case errors.As(err, &tripErr):
		writeError(w, r, tripErr.Status, tripErr.Code, tripErr.Message, tripErr.Details)
	case errors.As(err, &notifErr):
		writeError(w, r, notifErr.Status, notifErr.Code, notifErr.Message, notifErr.Details)
	default:
		s.logf(r, "unhandled error: %v", err)
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
	}
}

func (s *Server) logf(r *http.Request, format string, args ...any) {
	if s.Logger == nil {
		return
	}
	prefix := ""
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		prefix = "[" + rid + "] "
	}
	s.Logger.Printf(prefix+format, args...)
}
