package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/recipebox/recipebox-go/internal/apperr"
	"github.com/recipebox/recipebox-go/internal/authz"
	"github.com/recipebox/recipebox-go/internal/model"
	"github.com/recipebox/recipebox-go/internal/respond"
)

type contextKey string

const userKey contextKey = "user"

var (
	errMissingHeader    = apperr.New(apperr.KindUnauthenticated, "you are not logged in, please log in to get access")
	errMalformedHeader  = apperr.New(apperr.KindUnauthenticated, "invalid authorization format")
	errInsufficientRole = apperr.Forbidden("you do not have permission to perform this action")
)

// Authenticator resolves a bearer token to the user it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// Authenticate returns middleware that requires a valid Bearer token and
// attaches the token's user to the request context.
func Authenticate(auth Authenticator, rs *respond.Responder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				rs.Error(w, r, errMissingHeader)
				return
			}

			token, found := strings.CutPrefix(authHeader, "Bearer ")
			token = strings.TrimSpace(token)
			if !found || token == "" {
				rs.Error(w, r, errMalformedHeader)
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				rs.Error(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireRole rejects authenticated users whose role is not one of roles.
// It must run after Authenticate.
func RequireRole(rs *respond.Responder, roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				rs.Error(w, r, errMissingHeader)
				return
			}
			if !authz.HasRole(user, roles...) {
				rs.Error(w, r, errInsufficientRole)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext extracts the authenticated user from the request context.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}
