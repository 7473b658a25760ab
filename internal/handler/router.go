package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/recipebox/recipebox-go/internal/middleware"
	"github.com/recipebox/recipebox-go/internal/model"
	"github.com/recipebox/recipebox-go/internal/respond"
	"github.com/recipebox/recipebox-go/internal/service"
)

const (
	apiRateLimit  = 100
	apiRateWindow = 15 * time.Minute

	authRPS   = 5
	authBurst = 10
)

// RouterConfig holds everything NewRouter wires together. Background work
// started by the router, such as rate limiter cleanup, stops when Context is
// done; a nil Context keeps it running for the life of the process.
type RouterConfig struct {
	Context        context.Context
	Auth           *service.AuthService
	Recipes        *service.RecipeService
	Responder      *respond.Responder
	Logger         *slog.Logger
	RequestTimeout time.Duration
}

// NewRouter builds the HTTP routing tree.
func NewRouter(cfg RouterConfig) http.Handler {
	rs := cfg.Responder
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	authHandler := NewAuthHandler(cfg.Auth, rs)
	userHandler := NewUserHandler(cfg.Auth, cfg.Recipes, rs)
	recipeHandler := NewRecipeHandler(cfg.Recipes, rs)

	authenticate := middleware.Authenticate(cfg.Auth, rs)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(chimw.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rs.Message(w, http.StatusNotFound, "can't find "+r.URL.Path+" on this server")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rs.Message(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimitWindow(ctx, apiRateLimit, apiRateWindow, rs))

		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.RateLimit(ctx, authRPS, authBurst, rs))
			r.Post("/signup", authHandler.HandleSignup)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/refresh-token", authHandler.HandleRefresh)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", userHandler.HandleMe)
			r.Get("/me/recipes", userHandler.HandleMyRecipes)
			r.Get("/me/stats", userHandler.HandleMyStats)

			r.With(middleware.RequireRole(rs, model.RoleAdmin)).
				Patch("/{id}/role", userHandler.HandleSetRole)
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", recipeHandler.HandleList)
			r.Get("/stats", recipeHandler.HandleStats)
			r.Get("/popular-ingredients", recipeHandler.HandlePopularIngredients)
			r.Get("/{id}", recipeHandler.HandleGet)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/", recipeHandler.HandleCreate)
				r.Put("/{id}", recipeHandler.HandleUpdate)
				r.Delete("/{id}", recipeHandler.HandleDelete)
				r.Post("/{id}/image-upload", recipeHandler.HandleImageUpload)
			})
		})
	})

	return r
}
