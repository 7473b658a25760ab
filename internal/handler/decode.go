package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/recipebox/recipebox-go/internal/apperr"
	"github.com/recipebox/recipebox-go/internal/middleware"
	"github.com/recipebox/recipebox-go/internal/model"
	"github.com/recipebox/recipebox-go/internal/respond"
)

const maxBodyBytes = 1 << 20 // 1MB

// decodeJSON reads a JSON request body into dst. On failure it writes the
// error response and returns false.
func decodeJSON(rs *respond.Responder, w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			rs.Message(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		rs.Message(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// currentUser returns the authenticated user. Routes using it sit behind
// middleware.Authenticate, so a miss is a wiring error.
func currentUser(rs *respond.Responder, w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		rs.Message(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return user, true
}

// queryInt parses an optional integer query parameter; absent means 0.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation(name + " must be an integer")
	}
	return n, nil
}
