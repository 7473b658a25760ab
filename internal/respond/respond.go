// Package respond writes JSON responses and is the single place where
// errors are translated into HTTP status codes.
package respond

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/recipebox/recipebox-go/internal/apperr"
)

type requestIDKey struct{}

// WithRequestID returns a copy of ctx carrying the request id used in logs.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Responder writes uniform JSON bodies. In development mode internal
// errors include their detail in the response.
type Responder struct {
	logger      *slog.Logger
	development bool
}

func New(logger *slog.Logger, development bool) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{logger: logger, development: development}
}

func (rs *Responder) JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		rs.logger.Warn("encoding response failed", "error", err)
	}
}

// Error maps err onto a status code. Operational errors keep their message;
// everything else is logged and reported as a generic 500.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	if appErr, ok := apperr.As(err); ok {
		if appErr.Err != nil {
			rs.logger.Warn("request failed",
				"request_id", RequestID(r.Context()), "path", r.URL.Path, "status", appErr.Kind.Status(), "error", err)
		}
		rs.JSON(w, appErr.Kind.Status(), errorBody{Error: appErr.Message})
		return
	}

	rs.logger.Error("unexpected error",
		"request_id", RequestID(r.Context()), "method", r.Method, "path", r.URL.Path, "error", err)

	body := errorBody{Error: "internal server error"}
	if rs.development {
		body.Detail = err.Error()
	}
	rs.JSON(w, http.StatusInternalServerError, body)
}

// Message writes a plain error body with the given status.
func (rs *Responder) Message(w http.ResponseWriter, status int, msg string) {
	rs.JSON(w, status, errorBody{Error: msg})
}

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}
