package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/recipebox/recipebox-go/internal/model"
	"github.com/recipebox/recipebox-go/internal/respond"
	"github.com/recipebox/recipebox-go/internal/service"
)

// RecipeHandler handles HTTP requests for recipe operations.
type RecipeHandler struct {
	service *service.RecipeService
	rs      *respond.Responder
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(svc *service.RecipeService, rs *respond.Responder) *RecipeHandler {
	return &RecipeHandler{service: svc, rs: rs}
}

// HandleList handles GET /api/recipes requests.
func (h *RecipeHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	page, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	h.rs.JSON(w, http.StatusOK, page)
}

func parseFilter(r *http.Request) (model.RecipeFilter, error) {
	q := r.URL.Query()
	filter := model.RecipeFilter{
		Search:   q.Get("search"),
		Category: model.Category(q.Get("category")),
	}

	var err error
	if filter.MinTime, err = queryInt(r, "minTime"); err != nil {
		return filter, err
	}
	if filter.MaxTime, err = queryInt(r, "maxTime"); err != nil {
		return filter, err
	}
	if filter.Page, err = queryInt(r, "page"); err != nil {
		return filter, err
	}
	if filter.Limit, err = queryInt(r, "limit"); err != nil {
		return filter, err
	}
	return filter, nil
}

// HandleStats handles GET /api/recipes/stats requests.
func (h *RecipeHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.CategoryStats(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	h.rs.JSON(w, http.StatusOK, stats)
}

// HandlePopularIngredients handles GET /api/recipes/popular-ingredients requests.
func (h *RecipeHandler) HandlePopularIngredients(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	counts, err := h.service.PopularIngredients(r.Context(), limit)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	h.rs.JSON(w, http.StatusOK, counts)
}

// HandleGet handles GET /api/recipes/{id} requests.
func (h *RecipeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	recipe, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	h.rs.JSON(w, http.StatusOK, recipe)
}

// HandleCreate handles POST /api/recipes requests.
func (h *RecipeHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.rs, w, r)
	if !ok {
		return
	}

	var req model.RecipeRequest
	if !decodeJSON(h.rs, w, r, &req) {
		return
	}

	recipe, err := h.service.Create(r.Context(), user, req)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	h.rs.JSON(w, http.StatusCreated, recipe)
}

// HandleUpdate handles PUT /api/recipes/{id} requests.
func (h *RecipeHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.rs, w, r)
	if !ok {
		return
	}

	var req model.RecipeRequest
	if !decodeJSON(h.rs, w, r, &req) {
		return
	}

	recipe, err := h.service.Update(r.Context(), user, chi.URLParam(r, "id"), req)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	h.rs.JSON(w, http.StatusOK, recipe)
}

// HandleDelete handles DELETE /api/recipes/{id} requests.
func (h *RecipeHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.rs, w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		h.rs.Error(w, r, err)
		return
	}

	h.rs.JSON(w, http.StatusOK, model.MessageResponse{Message: "recipe deleted"})
}

// HandleImageUpload handles POST /api/recipes/{id}/image-upload requests.
func (h *RecipeHandler) HandleImageUpload(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.rs, w, r)
	if !ok {
		return
	}

	resp, err := h.service.ImageUpload(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	h.rs.JSON(w, http.StatusOK, resp)
}
