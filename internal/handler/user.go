package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/recipebox/recipebox-go/internal/model"
	"github.com/recipebox/recipebox-go/internal/respond"
	"github.com/recipebox/recipebox-go/internal/service"
)

// UserHandler serves the /api/users routes.
type UserHandler struct {
	auth    *service.AuthService
	recipes *service.RecipeService
	rs      *respond.Responder
}

func NewUserHandler(auth *service.AuthService, recipes *service.RecipeService, rs *respond.Responder) *UserHandler {
	return &UserHandler{auth: auth, recipes: recipes, rs: rs}
}

// HandleMe handles GET /api/users/me requests.
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.rs, w, r)
	if !ok {
		return
	}

	h.rs.JSON(w, http.StatusOK, user.Public())
}

// HandleMyRecipes handles GET /api/users/me/recipes requests.
func (h *UserHandler) HandleMyRecipes(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.rs, w, r)
	if !ok {
		return
	}

	recipes, err := h.recipes.ListByOwner(r.Context(), user.ID)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	h.rs.JSON(w, http.StatusOK, recipes)
}

// HandleMyStats handles GET /api/users/me/stats requests.
func (h *UserHandler) HandleMyStats(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.rs, w, r)
	if !ok {
		return
	}

	stats, err := h.recipes.OwnerStats(r.Context(), user.ID)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	h.rs.JSON(w, http.StatusOK, stats)
}

// HandleSetRole handles PATCH /api/users/{id}/role requests.
func (h *UserHandler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	var req model.RoleRequest
	if !decodeJSON(h.rs, w, r, &req) {
		return
	}

	resp, err := h.auth.SetRole(r.Context(), chi.URLParam(r, "id"), req.Role)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	h.rs.JSON(w, http.StatusOK, resp)
}
