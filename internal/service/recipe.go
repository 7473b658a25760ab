package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/recipebox/recipebox-go/internal/apperr"
	"github.com/recipebox/recipebox-go/internal/authz"
	"github.com/recipebox/recipebox-go/internal/cache"
	"github.com/recipebox/recipebox-go/internal/model"
	"github.com/recipebox/recipebox-go/internal/repository"
	"github.com/recipebox/recipebox-go/internal/storage"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	DefaultIngredientLimit = 10
	MaxIngredientLimit     = 100

	minTitleLength = 3
	maxTitleLength = 100

	// Column sizes of the recipes table.
	maxImageURLLength       = 1024
	maxTagsLength           = 1024
	maxIngredientNameLength = 255
)

const (
	categoryStatsKey      = "recipes:stats:categories"
	popularIngredientsKey = "recipes:stats:ingredients"
)

var (
	ErrRecipeNotFound     = apperr.NotFound("recipe not found")
	ErrUploadsUnavailable = apperr.New(apperr.KindUnavailable, "image uploads are not configured")
)

// RecipeService handles recipe business logic.
type RecipeService struct {
	recipes   RecipeStore
	cache     cache.Cache
	cacheTTL  time.Duration
	presigner storage.Presigner
	logger    *slog.Logger
	now       func() time.Time
}

// NewRecipeService creates a new RecipeService. A nil presigner disables
// image uploads.
func NewRecipeService(recipes RecipeStore, c cache.Cache, cacheTTL time.Duration, presigner storage.Presigner, logger *slog.Logger) *RecipeService {
	if c == nil {
		c = cache.Nop{}
	}
	return &RecipeService{
		recipes:   recipes,
		cache:     c,
		cacheTTL:  cacheTTL,
		presigner: presigner,
		logger:    logger,
		now:       time.Now,
	}
}

// Create stores a new recipe owned by user.
func (s *RecipeService) Create(ctx context.Context, user *model.User, req model.RecipeRequest) (model.RecipeResponse, error) {
	req = normalizeRecipe(req)
	if err := validateRecipe(req); err != nil {
		return model.RecipeResponse{}, err
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	recipe := &model.Recipe{
		ID:            uuid.NewString(),
		OwnerID:       user.ID,
		OwnerUsername: user.Username,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	applyRecipe(recipe, req)

	if err := s.recipes.Create(ctx, recipe); err != nil {
		return model.RecipeResponse{}, err
	}
	s.invalidateStats(ctx)

	return toRecipeResponse(recipe), nil
}

// Get returns one recipe.
func (s *RecipeService) Get(ctx context.Context, id string) (model.RecipeResponse, error) {
	recipe, err := s.load(ctx, id)
	if err != nil {
		return model.RecipeResponse{}, err
	}
	return toRecipeResponse(recipe), nil
}

// List returns one page of recipes matching filter, newest first.
func (s *RecipeService) List(ctx context.Context, filter model.RecipeFilter) (model.RecipePage, error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		return model.RecipePage{}, err
	}

	recipes, total, err := s.recipes.List(ctx, filter)
	if err != nil {
		return model.RecipePage{}, err
	}

	results := make([]model.RecipeResponse, 0, len(recipes))
	for i := range recipes {
		results = append(results, toRecipeResponse(&recipes[i]))
	}

	return model.RecipePage{
		Results:    results,
		Pagination: paginate(filter.Page, filter.Limit, total),
	}, nil
}

func normalizeFilter(f model.RecipeFilter) (model.RecipeFilter, error) {
	f.Search = strings.TrimSpace(f.Search)
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit == 0 {
		f.Limit = DefaultPageSize
	}

	switch {
	case f.Page < 1:
		return f, apperr.Validation("page must be at least 1")
	case f.Limit < 1 || f.Limit > MaxPageSize:
		return f, apperr.Validation(fmt.Sprintf("limit must be between 1 and %d", MaxPageSize))
	case f.Category != "" && !f.Category.Valid():
		return f, apperr.Validation("category must be one of Breakfast, Lunch, Dinner, Dessert, Snack")
	case f.MinTime < 0 || f.MaxTime < 0:
		return f, apperr.Validation("cooking time bounds must not be negative")
	case f.MaxTime > 0 && f.MinTime > f.MaxTime:
		return f, apperr.Validation("minTime must not exceed maxTime")
	}
	return f, nil
}

func paginate(page, limit, total int) model.Pagination {
	totalPages := (total + limit - 1) / limit
	return model.Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

// Update replaces the content of a recipe. The owner never changes.
func (s *RecipeService) Update(ctx context.Context, user *model.User, id string, req model.RecipeRequest) (model.RecipeResponse, error) {
	recipe, err := s.load(ctx, id)
	if err != nil {
		return model.RecipeResponse{}, err
	}
	if err := authz.Authorize(user, recipe.OwnerID, authz.ActionUpdate); err != nil {
		return model.RecipeResponse{}, err
	}

	req = normalizeRecipe(req)
	if req.ImageURL == "" {
		req.ImageURL = recipe.ImageURL
	}
	if err := validateRecipe(req); err != nil {
		return model.RecipeResponse{}, err
	}

	applyRecipe(recipe, req)
	recipe.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)

	if err := s.recipes.Update(ctx, recipe); err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return model.RecipeResponse{}, ErrRecipeNotFound
		}
		return model.RecipeResponse{}, err
	}
	s.invalidateStats(ctx)

	s.logger.Info("recipe updated", "recipe_id", recipe.ID, "by", user.ID)
	return toRecipeResponse(recipe), nil
}

// Delete removes a recipe.
func (s *RecipeService) Delete(ctx context.Context, user *model.User, id string) error {
	recipe, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Authorize(user, recipe.OwnerID, authz.ActionDelete); err != nil {
		return err
	}

	if err := s.recipes.Delete(ctx, recipe.ID); err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}
	s.invalidateStats(ctx)

	s.logger.Info("recipe deleted", "recipe_id", recipe.ID, "by", user.ID)
	return nil
}

// ListByOwner returns every recipe created by ownerID, newest first.
func (s *RecipeService) ListByOwner(ctx context.Context, ownerID string) ([]model.RecipeResponse, error) {
	recipes, err := s.recipes.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	out := make([]model.RecipeResponse, 0, len(recipes))
	for i := range recipes {
		out = append(out, toRecipeResponse(&recipes[i]))
	}
	return out, nil
}

func (s *RecipeService) OwnerStats(ctx context.Context, ownerID string) (model.UserRecipeStats, error) {
	return s.recipes.OwnerStats(ctx, ownerID)
}

// CategoryStats returns per-category counts, served from cache when possible.
func (s *RecipeService) CategoryStats(ctx context.Context) ([]model.CategoryStats, error) {
	var stats []model.CategoryStats
	if s.cached(ctx, categoryStatsKey, &stats) {
		return stats, nil
	}

	stats, err := s.recipes.CategoryStats(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, categoryStatsKey, stats)
	return stats, nil
}

// PopularIngredients returns the limit most used ingredients. The cache holds
// the longest list so every limit is served from one key.
func (s *RecipeService) PopularIngredients(ctx context.Context, limit int) ([]model.IngredientCount, error) {
	if limit == 0 {
		limit = DefaultIngredientLimit
	}
	if limit < 1 || limit > MaxIngredientLimit {
		return nil, apperr.Validation(fmt.Sprintf("limit must be between 1 and %d", MaxIngredientLimit))
	}

	var counts []model.IngredientCount
	if !s.cached(ctx, popularIngredientsKey, &counts) {
		var err error
		counts, err = s.recipes.PopularIngredients(ctx, MaxIngredientLimit)
		if err != nil {
			return nil, err
		}
		s.store(ctx, popularIngredientsKey, counts)
	}

	if len(counts) > limit {
		counts = counts[:limit]
	}
	return counts, nil
}

// ImageUpload issues a presigned URL for uploading the recipe's image.
func (s *RecipeService) ImageUpload(ctx context.Context, user *model.User, id string) (model.ImageUploadResponse, error) {
	recipe, err := s.load(ctx, id)
	if err != nil {
		return model.ImageUploadResponse{}, err
	}
	if err := authz.Authorize(user, recipe.OwnerID, authz.ActionUpdate); err != nil {
		return model.ImageUploadResponse{}, err
	}
	if s.presigner == nil {
		return model.ImageUploadResponse{}, ErrUploadsUnavailable
	}

	key := fmt.Sprintf("recipes/%s/%s", recipe.ID, uuid.NewString())
	signed, err := s.presigner.PresignPut(ctx, key)
	if err != nil {
		return model.ImageUploadResponse{}, err
	}

	return model.ImageUploadResponse{
		UploadURL: signed.URL,
		Key:       key,
		ExpiresAt: signed.ExpiresAt,
	}, nil
}

func (s *RecipeService) load(ctx context.Context, id string) (*model.Recipe, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrRecipeNotFound
	}

	recipe, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return recipe, nil
}

func (s *RecipeService) cached(ctx context.Context, key string, dst any) bool {
	ok, err := cache.GetJSON(ctx, s.cache, key, dst)
	if err != nil {
		s.logger.Warn("cache read failed", "key", key, "error", err)
		return false
	}
	return ok
}

func (s *RecipeService) store(ctx context.Context, key string, v any) {
	if err := cache.SetJSON(ctx, s.cache, key, v, s.cacheTTL); err != nil {
		s.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

func (s *RecipeService) invalidateStats(ctx context.Context) {
	if err := s.cache.Delete(ctx, categoryStatsKey, popularIngredientsKey); err != nil {
		s.logger.Warn("cache invalidation failed", "error", err)
	}
}

func normalizeRecipe(req model.RecipeRequest) model.RecipeRequest {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.ImageURL = strings.TrimSpace(req.ImageURL)

	ingredients := make([]model.Ingredient, len(req.Ingredients))
	for i, ing := range req.Ingredients {
		ingredients[i] = model.Ingredient{
			Name:   strings.TrimSpace(ing.Name),
			Amount: ing.Amount,
			Unit:   strings.TrimSpace(ing.Unit),
		}
	}
	req.Ingredients = ingredients

	steps := make([]string, len(req.Steps))
	for i, step := range req.Steps {
		steps[i] = strings.TrimSpace(step)
	}
	req.Steps = steps

	tags := make([]string, 0, len(req.Tags))
	for _, tag := range req.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	req.Tags = tags

	if req.Servings == 0 {
		req.Servings = 1
	}
	if req.Difficulty == "" {
		req.Difficulty = model.DifficultyMedium
	}
	return req
}

func validateRecipe(req model.RecipeRequest) error {
	titleLen := utf8.RuneCountInString(req.Title)
	switch {
	case req.Title == "":
		return apperr.Validation("recipe title is required")
	case titleLen < minTitleLength:
		return apperr.Validation(fmt.Sprintf("title must be at least %d characters long", minTitleLength))
	case titleLen > maxTitleLength:
		return apperr.Validation(fmt.Sprintf("title cannot exceed %d characters", maxTitleLength))
	case req.Description == "":
		return apperr.Validation("description is required")
	case len(req.Ingredients) == 0:
		return apperr.Validation("at least one ingredient is required")
	case len(req.Steps) == 0:
		return apperr.Validation("at least one step is required")
	case req.CookingTime < 1:
		return apperr.Validation("cooking time must be at least 1 minute")
	case req.Servings < 1:
		return apperr.Validation("recipe must serve at least 1 person")
	case !req.Difficulty.Valid():
		return apperr.Validation("difficulty must be one of Easy, Medium, Hard")
	case !req.Category.Valid():
		return apperr.Validation("category must be one of Breakfast, Lunch, Dinner, Dessert, Snack")
	case utf8.RuneCountInString(req.ImageURL) > maxImageURLLength:
		return apperr.Validation(fmt.Sprintf("image URL cannot exceed %d characters", maxImageURLLength))
	case utf8.RuneCountInString(strings.Join(req.Tags, " ")) > maxTagsLength:
		return apperr.Validation(fmt.Sprintf("tags cannot exceed %d characters in total", maxTagsLength))
	}

	for i, ing := range req.Ingredients {
		switch {
		case ing.Name == "":
			return apperr.Validation(fmt.Sprintf("ingredient %d: name is required", i+1))
		case utf8.RuneCountInString(ing.Name) > maxIngredientNameLength:
			return apperr.Validation(fmt.Sprintf("ingredient %d: name cannot exceed %d characters", i+1, maxIngredientNameLength))
		case ing.Amount < 0:
			return apperr.Validation(fmt.Sprintf("ingredient %d: amount must not be negative", i+1))
		case ing.Unit == "":
			return apperr.Validation(fmt.Sprintf("ingredient %d: unit is required", i+1))
		}
	}
	for i, step := range req.Steps {
		if step == "" {
			return apperr.Validation(fmt.Sprintf("step %d must not be empty", i+1))
		}
	}
	return nil
}

func applyRecipe(r *model.Recipe, req model.RecipeRequest) {
	r.Title = req.Title
	r.Description = req.Description
	r.Ingredients = req.Ingredients
	r.Steps = req.Steps
	r.CookingTime = req.CookingTime
	r.Servings = req.Servings
	r.Difficulty = req.Difficulty
	r.Category = req.Category
	r.Tags = req.Tags
	r.ImageURL = req.ImageURL
}

func toRecipeResponse(r *model.Recipe) model.RecipeResponse {
	return model.RecipeResponse{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Ingredients: r.Ingredients,
		Steps:       r.Steps,
		CookingTime: r.CookingTime,
		Servings:    r.Servings,
		Difficulty:  r.Difficulty,
		Category:    r.Category,
		Tags:        r.Tags,
		ImageURL:    r.ImageURL,
		CreatedBy:   model.RecipeOwner{ID: r.OwnerID, Username: r.OwnerUsername},
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
